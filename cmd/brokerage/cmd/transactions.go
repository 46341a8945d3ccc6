package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/brokerage/pkg/brokerage"
	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
)

var (
	txnAgent string
	txnKind  string
)

// transactionsCmd represents the transactions command.
var transactionsCmd = &cobra.Command{
	Use:   "transactions [CODE]",
	Short: "List recorded transactions or show one",
	Long: `List recorded transactions in recording order, optionally narrowed to
one agent (selling or listing) or one kind. With a CODE argument, show that
transaction.

Example:
  brokerage transactions --agent AG-001
  brokerage transactions --kind rent
  brokerage transactions 3f1c9a52-8d1e-4c8e-b6f4-2f0b8c6e1d7a`,
	Args: cobra.MaximumNArgs(1),
	Run:  runTransactions,
}

func init() {
	transactionsCmd.Flags().StringVar(&txnAgent, "agent", "", "Only transactions involving this agent code")
	transactionsCmd.Flags().StringVar(&txnKind, "kind", "", "Only transactions of this kind: sale or rent")
}

func runTransactions(cmd *cobra.Command, args []string) {
	q := brokerage.TransactionQuery{AgentCode: txnAgent}
	if txnKind != "" {
		kind, err := commission.ParseKind(txnKind)
		exitOnError(err, "invalid kind")
		q.Kind = kind
	}

	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	if len(args) == 1 {
		txn, err := a.service.GetTransaction(cmd.Context(), args[0])
		a.exitOnError(err, "failed to get transaction")

		fmt.Printf("\n=== Transaction %s ===\n", txn.Code)
		fmt.Printf("Kind:             %s (%s)\n", txn.Kind, txn.Variant)
		fmt.Printf("Date:             %s\n", txn.Date)
		fmt.Printf("Amount:           %s\n", money(txn.Amount))
		fmt.Printf("Total commission: %s\n", money(txn.TotalCommission))
		fmt.Printf("Company:          %s\n", money(txn.CompanyCommission))
		fmt.Printf("Selling agent:    %d %s%s\n", txn.AgentID, money(txn.SellingAgentCommission), capNote(txn.SellingAgentAtCap))
		if txn.ListingAgentID != nil {
			fmt.Printf("Listing agent:    %d %s%s\n", *txn.ListingAgentID, money(txn.ListingAgentCommission), capNote(txn.ListingAgentAtCap))
		}
		if txn.ClientRef != "" {
			fmt.Printf("Client:           %s\n", txn.ClientRef)
		}
		if txn.PropertyRef != "" {
			fmt.Printf("Property:         %s\n", txn.PropertyRef)
		}
		fmt.Println()
		return
	}

	txns, err := a.service.ListTransactions(cmd.Context(), q)
	a.exitOnError(err, "failed to list transactions")

	if len(txns) == 0 {
		fmt.Println("No transactions recorded")
		return
	}

	fmt.Printf("%-36s %-10s %-17s %14s %14s %14s %14s\n", "CODE", "DATE", "VARIANT", "AMOUNT", "COMPANY", "SELLING", "LISTING")
	for _, t := range txns {
		fmt.Printf("%-36s %-10s %-17s %14s %14s %14s %14s\n",
			t.Code, t.Date, t.Variant, money(t.Amount), money(t.CompanyCommission),
			money(t.SellingAgentCommission), money(t.ListingAgentCommission))
	}
}
