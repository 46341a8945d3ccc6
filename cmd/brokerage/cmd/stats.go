package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display ledger statistics",
	Long: `Display statistics about the ledger.

Shows:
- Total and active agents
- Total recorded transactions
- Last recording timestamp

Example:
  brokerage stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	stats, err := a.service.Stats(cmd.Context())
	a.exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Ledger Statistics ===")
	fmt.Printf("Total agents:       %d\n", stats.TotalAgents)
	fmt.Printf("Active agents:      %d\n", stats.ActiveAgents)
	fmt.Printf("Total transactions: %d\n", stats.TotalTransactions)

	if stats.LastRecorded != "" {
		fmt.Printf("Last recorded:      %s\n", since(stats.LastRecorded))
	} else {
		fmt.Printf("Last recorded:      (never)\n")
	}

	fmt.Println()

	slog.Debug("Statistics displayed successfully")
}
