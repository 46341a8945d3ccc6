// Package cmd provides CLI commands for the brokerage back office.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "brokerage",
	Short: "Real estate brokerage commission ledger",
	Long: `brokerage records property sales and rentals, splits each commission
between the company and its agents, and tracks every agent's annual salary cap.

It supports:
- Single-agent sales, dual-agent sales and rentals
- Per-agent salary caps with automatic calendar-year rollover
- SQLite or bbolt ledgers, with optional Redis locking across processes
- Beancount journal export of every recorded commission

Example:
  brokerage agent add --code AG-001 --name "Jane Doe"
  brokerage record --kind sale --amount 500000 --agent AG-001 --listing-agent AG-002
  brokerage caps --near 80`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(debug)
	},
}

// setupLogging installs the stderr text logger. DEBUG=true in the
// configuration enables debug output too, once it has been loaded.
func setupLogging(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupts cancel the command context so lock waits are abandoned cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(rolloverCmd)
	rootCmd.AddCommand(capsCmd)
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(journalCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	return cfgFile
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
