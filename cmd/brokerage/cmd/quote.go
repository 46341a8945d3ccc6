package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

var quoteFlags txnFlags

// quoteCmd represents the quote command.
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Preview the commission split without recording it",
	Long: `Compute the commission split for a prospective sale or rental against
the agents' current ledgers. Nothing is written.

Example:
  brokerage quote --kind sale --amount 750000 --agent AG-001`,
	Run: runQuote,
}

func init() {
	quoteFlags.register(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	req, err := quoteFlags.request()
	exitOnError(err, "invalid transaction")

	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	q, err := a.service.Quote(cmd.Context(), req)
	a.exitOnError(err, "failed to quote transaction")

	fmt.Println("\n=== Quote ===")
	fmt.Printf("Variant:          %s\n", q.Result.Variant)
	fmt.Printf("Amount:           %s\n", money(req.Amount))
	printBreakdown(q.Result.Breakdown, q.Seller.Code, listerCode(q.Lister))
	if q.WillReachCap {
		fmt.Printf("Agent %s would reach the salary cap with this transaction\n", q.Seller.Code)
	}
	fmt.Println()
}

func listerCode(lister *models.Agent) string {
	if lister == nil {
		return ""
	}
	return lister.Code
}
