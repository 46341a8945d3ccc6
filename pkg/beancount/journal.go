package beancount

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
	"github.com/shunichi-ikebuchi/brokerage/pkg/policy"
)

// Journal appends recorded commissions to monthly Beancount files.
type Journal struct {
	repo     Repository
	accounts policy.Accounts
	currency string
	scale    int32
}

// NewJournal creates a Journal that writes through repo.
func NewJournal(repo Repository, p *policy.Policy, currency string) *Journal {
	if currency == "" {
		currency = "USD"
	}
	return &Journal{
		repo:     repo,
		accounts: p.Accounts,
		currency: currency,
		scale:    p.MoneyScale,
	}
}

// Append writes the commission split of a recorded transaction to its month file.
// lister may be nil for single-agent sales and rentals.
func (j *Journal) Append(rec *models.Transaction, seller, lister *models.Agent) error {
	if len(rec.Date) < len("2006-01") {
		return fmt.Errorf("invalid transaction date: %q", rec.Date)
	}

	entry := j.Entry(rec, seller, lister)
	comment := fmt.Sprintf("transaction %s", rec.Code)
	if err := j.repo.Append(rec.Date[:7], Format(entry, j.scale), comment); err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

// Month returns the journal for one YYYY-MM month and whether anything was recorded in it.
func (j *Journal) Month(yearMonth string) (string, bool, error) {
	return j.repo.Month(yearMonth)
}

// Months lists the months of year that have journal entries.
func (j *Journal) Months(year int) ([]string, error) {
	return j.repo.Months(strconv.Itoa(year))
}

// Entry builds the balanced Beancount transaction for a commission record.
// The receivable carries the total commission and is offset by the company
// income and one payable posting per credited agent.
func (j *Journal) Entry(rec *models.Transaction, seller, lister *models.Agent) Transaction {
	postings := []Posting{
		{Account: j.accounts.Receivable, Amount: rec.TotalCommission, Currency: j.currency},
		{Account: j.accounts.CompanyIncome, Amount: -rec.CompanyCommission, Currency: j.currency},
	}

	postings = append(postings, Posting{
		Account:  j.payable(seller),
		Amount:   -rec.SellingAgentCommission,
		Currency: j.currency,
		Comment:  capComment("selling", rec.SellingAgentAtCap),
	})

	if lister != nil && rec.ListingAgentID != nil {
		postings = append(postings, Posting{
			Account:  j.payable(lister),
			Amount:   -rec.ListingAgentCommission,
			Currency: j.currency,
			Comment:  capComment("listing", rec.ListingAgentAtCap),
		})
	}

	narration := "Sale commission"
	if rec.Kind == commission.KindRent {
		narration = "Rental commission"
	}
	if rec.PropertyRef != "" {
		narration += " " + rec.PropertyRef
	}

	return Transaction{
		Date:      rec.Date,
		Narration: narration,
		Payee:     rec.ClientRef,
		Tags:      []string{strings.ToLower(strings.ReplaceAll(rec.Variant, "_", "-"))},
		Links:     []string{AccountComponent(rec.Code)},
		Metadata: map[string]string{
			"transaction-code": rec.Code,
			"amount":           strconv.FormatFloat(rec.Amount, 'f', -1, 64),
		},
		Postings: postings,
	}
}

func (j *Journal) payable(agent *models.Agent) string {
	if agent == nil {
		return j.accounts.AgentPayable + ":Unknown"
	}
	return j.accounts.AgentPayable + ":" + AccountComponent(agent.Code)
}

func capComment(role string, atCap bool) string {
	if atCap {
		return role + " agent at cap"
	}
	return role + " agent"
}
