package beancount

import (
	"os"
	"strings"
	"testing"

	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
	"github.com/shunichi-ikebuchi/brokerage/pkg/pathutil"
	"github.com/shunichi-ikebuchi/brokerage/pkg/policy"
)

func TestAccountComponent(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"AG-001", "AG-001"},
		{"jdoe", "Jdoe"},
		{"j.doe smith", "J-doe-smith"},
		{"--x", "X"},
		{"", "Unknown"},
		{"東京", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := AccountComponent(tt.code); got != tt.expected {
				t.Errorf("AccountComponent(%q) = %q, expected %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	txn := Transaction{
		Date:      "2024-05-01",
		Narration: "Sale commission",
		Payee:     "Client A",
		Tags:      []string{"single-agent-sale"},
		Links:     []string{"T1"},
		Metadata:  map[string]string{"b": "2", "a": "1"},
		Postings: []Posting{
			{Account: "Assets:Receivable:Commissions", Amount: 12.5, Currency: "USD"},
			{Account: "Income:Brokerage:Commissions", Amount: -12.5, Currency: "USD", Comment: "all"},
		},
	}

	out := Format(txn, 2)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if lines[0] != `2024-05-01 * "Client A" "Sale commission" #single-agent-sale ^T1` {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != `  a: "1"` || lines[2] != `  b: "2"` {
		t.Errorf("metadata lines = %q, %q", lines[1], lines[2])
	}
	if !strings.HasSuffix(lines[3], " 12.50 USD") {
		t.Errorf("debit posting = %q", lines[3])
	}
	if !strings.HasSuffix(lines[4], " -12.50 USD ; all") {
		t.Errorf("credit posting = %q", lines[4])
	}
}

func TestJournalEntryBalances(t *testing.T) {
	j := NewJournal(nil, policy.Default(), "")

	listingID := int64(2)
	rec := &models.Transaction{
		Code:                   "T1",
		Kind:                   commission.KindSale,
		Amount:                 500_000,
		Date:                   "2024-05-01",
		AgentID:                1,
		ListingAgentID:         &listingID,
		Variant:                "DUAL_AGENT_SALE",
		TotalCommission:        30_000,
		CompanyCommission:      6_000,
		SellingAgentCommission: 14_400,
		ListingAgentCommission: 9_600,
	}
	seller := &models.Agent{ID: 1, Code: "S-1"}
	lister := &models.Agent{ID: 2, Code: "L-2"}

	entry := j.Entry(rec, seller, lister)

	if len(entry.Postings) != 4 {
		t.Fatalf("len(Postings) = %d, expected 4", len(entry.Postings))
	}
	var sum float64
	for _, p := range entry.Postings {
		sum += p.Amount
		if p.Currency != "USD" {
			t.Errorf("Currency = %q, expected USD", p.Currency)
		}
	}
	if sum != 0 {
		t.Errorf("postings sum = %v, expected 0", sum)
	}
	if entry.Postings[3].Account != "Liabilities:Payable:AgentCommissions:L-2" {
		t.Errorf("listing payable = %q", entry.Postings[3].Account)
	}
	if entry.Tags[0] != "dual-agent-sale" {
		t.Errorf("Tags = %v", entry.Tags)
	}
}

func TestJournalAppend(t *testing.T) {
	resolver := pathutil.New(pathutil.Config{Root: t.TempDir()})
	j := NewJournal(NewFileSystemRepository(resolver), policy.Default(), "USD")

	rental := &models.Transaction{
		Code:                   "T9",
		Kind:                   commission.KindRent,
		Amount:                 2_000,
		Date:                   "2024-07-15",
		AgentID:                1,
		Variant:                "RENTAL",
		TotalCommission:        400,
		CompanyCommission:      40,
		SellingAgentCommission: 360,
	}
	agent := &models.Agent{ID: 1, Code: "AG-1"}

	if err := j.Append(rental, agent, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	second := *rental
	second.Code = "T10"
	if err := j.Append(&second, agent, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	march := *rental
	march.Code = "T11"
	march.Date = "2024-03-02"
	if err := j.Append(&march, agent, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	content, found, err := j.Month("2024-07")
	if err != nil || !found {
		t.Fatalf("Month(2024-07) = found %v, error %v", found, err)
	}
	for _, want := range []string{"; transaction T9", "; transaction T10", `"Rental commission"`, "#rental", "Liabilities:Payable:AgentCommissions:AG-1", "-360.00 USD"} {
		if !strings.Contains(content, want) {
			t.Errorf("month file missing %q:\n%s", want, content)
		}
	}

	if _, found, err := j.Month("2024-08"); err != nil || found {
		t.Errorf("Month(2024-08) = found %v, error %v; expected missing", found, err)
	}
	if _, _, err := j.Month("2024-8"); err == nil {
		t.Error("Month(2024-8) should reject the malformed month")
	}

	months, err := j.Months(2024)
	if err != nil {
		t.Fatalf("Months() error = %v", err)
	}
	if len(months) != 2 || months[0] != "2024-03" || months[1] != "2024-07" {
		t.Errorf("Months(2024) = %v, expected [2024-03 2024-07]", months)
	}
	if months, err := j.Months(2023); err != nil || len(months) != 0 {
		t.Errorf("Months(2023) = %v, %v; expected none", months, err)
	}

	mainFile, err := os.ReadFile(resolver.MainFilePath())
	if err != nil {
		t.Fatalf("reading main file: %v", err)
	}
	if got := strings.Count(string(mainFile), "include "); got != 2 {
		t.Errorf("main file has %d includes, expected 2:\n%s", got, mainFile)
	}
	if !strings.Contains(string(mainFile), `include "2024/2024-07.beancount"`) {
		t.Errorf("main file missing July include:\n%s", mainFile)
	}

	if err := j.Append(&models.Transaction{Code: "bad", Date: "x"}, nil, nil); err == nil {
		t.Error("Append() with invalid date should fail")
	}
}
