package beancount

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Format renders a transaction in Beancount syntax with amounts fixed to scale decimal places.
func Format(txn Transaction, scale int32) string {
	var sb strings.Builder

	// Transaction header
	sb.WriteString(txn.Date)
	sb.WriteString(" *")
	if txn.Payee != "" {
		sb.WriteString(fmt.Sprintf(" %q", txn.Payee))
	}
	sb.WriteString(fmt.Sprintf(" %q", txn.Narration))
	for _, tag := range txn.Tags {
		sb.WriteString(" #" + tag)
	}
	for _, link := range txn.Links {
		sb.WriteString(" ^" + link)
	}
	sb.WriteString("\n")

	// Metadata, sorted for stable output
	keys := make([]string, 0, len(txn.Metadata))
	for k := range txn.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %s: %q\n", k, txn.Metadata[k]))
	}

	// Postings
	for _, posting := range txn.Postings {
		sb.WriteString("  ")
		sb.WriteString(posting.Account)

		// Right-align amount (typical Beancount style)
		amount := decimal.NewFromFloat(posting.Amount).StringFixed(scale)
		spaces := 60 - len(posting.Account) - len(amount)
		if spaces < 2 {
			spaces = 2
		}
		sb.WriteString(strings.Repeat(" ", spaces))
		sb.WriteString(amount + " " + posting.Currency)

		if posting.Comment != "" {
			sb.WriteString(" ; " + posting.Comment)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// AccountComponent turns an arbitrary code into a valid Beancount account component.
func AccountComponent(code string) string {
	component := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-') {
			return r
		}
		return '-'
	}, strings.TrimSpace(code))

	component = strings.TrimLeft(component, "-")
	if component == "" {
		return "Unknown"
	}

	runes := []rune(component)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
