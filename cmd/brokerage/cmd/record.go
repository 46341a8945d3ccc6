package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/brokerage/pkg/brokerage"
	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
)

// txnFlags are the transaction flags shared by record and quote.
type txnFlags struct {
	code         string
	kind         string
	amount       float64
	date         string
	agent        string
	listingAgent string
	client       string
	property     string
}

func (f *txnFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", "", "Transaction kind: sale or rent (required)")
	cmd.Flags().Float64Var(&f.amount, "amount", 0, "Sale price or rental commission base (required)")
	cmd.Flags().StringVar(&f.date, "date", "", "Transaction date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.agent, "agent", "", "Selling agent code, or the rental agent (required)")
	cmd.Flags().StringVar(&f.listingAgent, "listing-agent", "", "Listing agent code for dual-agent sales")
	cmd.Flags().StringVar(&f.client, "client", "", "Client reference")
	cmd.Flags().StringVar(&f.property, "property", "", "Property reference")
	cmd.MarkFlagRequired("kind")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("agent")
}

func (f *txnFlags) request() (brokerage.RecordRequest, error) {
	kind, err := commission.ParseKind(f.kind)
	if err != nil {
		return brokerage.RecordRequest{}, err
	}
	return brokerage.RecordRequest{
		Code:             f.code,
		Kind:             kind,
		Amount:           f.amount,
		Date:             f.date,
		AgentCode:        f.agent,
		ListingAgentCode: f.listingAgent,
		ClientRef:        f.client,
		PropertyRef:      f.property,
	}, nil
}

var recordFlags txnFlags

// recordCmd represents the record command.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a sale or rental and credit the agents",
	Long: `Record a sale or rental, split its commission between the company and
the agents, and credit the agents' salary-cap ledgers.

A sale with --listing-agent is a dual-agent sale. The listing agent is
ignored for rentals. The commission year is taken from --date.

Example:
  brokerage record --kind sale --amount 200000 --agent AG-001
  brokerage record --kind sale --amount 500000 --agent AG-001 --listing-agent AG-002
  brokerage record --kind rent --amount 10000 --agent AG-003 --date 2024-03-15`,
	Run: runRecord,
}

func init() {
	recordFlags.register(recordCmd)
	recordCmd.Flags().StringVar(&recordFlags.code, "code", "", "Transaction code (default generated)")
}

func runRecord(cmd *cobra.Command, args []string) {
	req, err := recordFlags.request()
	exitOnError(err, "invalid transaction")

	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	rec, err := a.service.RecordTransaction(cmd.Context(), req)
	a.exitOnError(err, "failed to record transaction")

	txn := rec.Transaction
	fmt.Printf("\n=== Transaction %s ===\n", txn.Code)
	fmt.Printf("Variant:          %s\n", txn.Variant)
	fmt.Printf("Date:             %s\n", txn.Date)
	fmt.Printf("Amount:           %s\n", money(txn.Amount))
	printBreakdown(rec.Result.Breakdown, rec.Seller.Code, listerCode(rec.Lister))
	printLedger(rec.Seller.Code, rec.Result.Primary, rec.Result.PrimaryRolled)
	if rec.Result.Secondary != nil && rec.Lister != nil {
		printLedger(rec.Lister.Code, *rec.Result.Secondary, rec.Result.SecondaryRolled)
	}
	fmt.Println()
}

func printBreakdown(b commission.Breakdown, seller, lister string) {
	fmt.Printf("Total commission: %s\n", money(b.TotalCommission))
	fmt.Printf("Company:          %s\n", money(b.CompanyCommission))
	fmt.Printf("Agent %-10s  %s%s\n", seller+":", money(b.PrimaryAgentCommission), capNote(b.PrimaryAtCap))
	if lister != "" {
		fmt.Printf("Agent %-10s  %s%s\n", lister+":", money(b.SecondaryAgentCommission), capNote(b.SecondaryAtCap))
	}
}

func printLedger(code string, state commission.AgentCapState, rolled bool) {
	note := ""
	if rolled {
		note = ", rolled over"
	}
	fmt.Printf("Ledger %-10s %s of %s in %d (%s%s)\n", code+":",
		money(state.YearToDateCommission), money(state.CapThreshold), state.TrackingYear,
		percent(commission.CapUtilization(state)), note)
}

func capNote(atCap bool) string {
	if atCap {
		return " (at cap)"
	}
	return ""
}
