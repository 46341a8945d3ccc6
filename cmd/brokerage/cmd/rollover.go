package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rolloverYear int

// rolloverCmd represents the rollover command.
var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Reset agent ledgers for a new calendar year",
	Long: `Reset the year-to-date commission of every agent still tracking an
earlier year. Recording a transaction rolls an agent over on its own, so
this is only needed to bring idle ledgers forward.

Example:
  brokerage rollover --year 2025`,
	Run: runRollover,
}

func init() {
	rolloverCmd.Flags().IntVar(&rolloverYear, "year", 0, "Year to roll ledgers forward to (required)")
	rolloverCmd.MarkFlagRequired("year")
}

func runRollover(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	n, err := a.service.RolloverAll(cmd.Context(), rolloverYear)
	a.exitOnError(err, "failed to roll over ledgers")

	fmt.Printf("Rolled over %d agent ledger(s) to %d\n", n, rolloverYear)
}
