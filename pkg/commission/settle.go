package commission

import (
	"github.com/shopspring/decimal"
)

// DefaultMoneyScale is the number of decimal digits money is stored with.
const DefaultMoneyScale int32 = 2

// Settle rounds a breakdown to scale decimal digits for persistence.
//
// Total and agent shares are rounded half away from zero. The company share is
// then derived as total - agents, so it absorbs the rounding remainder and the
// three parts sum exactly to the rounded total. When the exact company share is
// below one minimal unit the agents' rounding can exceed the total; the deficit
// is then taken back from the agent share that was rounded up the most, so no
// settled part is ever negative.
func Settle(b Breakdown, scale int32) Breakdown {
	total := decimal.NewFromFloat(b.TotalCommission).Round(scale)
	primary := settledShare{exact: decimal.NewFromFloat(b.PrimaryAgentCommission)}
	secondary := settledShare{exact: decimal.NewFromFloat(b.SecondaryAgentCommission)}
	primary.rounded = primary.exact.Round(scale)
	secondary.rounded = secondary.exact.Round(scale)

	company := total.Sub(primary.rounded).Sub(secondary.rounded)
	if company.IsNegative() {
		deficit := company.Neg()
		first, second := &primary, &secondary
		if secondary.gain().GreaterThan(primary.gain()) {
			first, second = second, first
		}
		deficit = first.give(deficit)
		second.give(deficit)
		company = decimal.Zero
	}

	return Breakdown{
		TotalCommission:          total.InexactFloat64(),
		CompanyCommission:        company.InexactFloat64(),
		PrimaryAgentCommission:   primary.rounded.InexactFloat64(),
		SecondaryAgentCommission: secondary.rounded.InexactFloat64(),
		PrimaryAtCap:             b.PrimaryAtCap,
		SecondaryAtCap:           b.SecondaryAtCap,
	}
}

type settledShare struct {
	exact   decimal.Decimal
	rounded decimal.Decimal
}

// gain is how much rounding added to the share.
func (s *settledShare) gain() decimal.Decimal {
	return s.rounded.Sub(s.exact)
}

// give reduces the share by up to amount and returns what is still owed.
func (s *settledShare) give(amount decimal.Decimal) decimal.Decimal {
	taken := decimal.Min(amount, s.rounded)
	s.rounded = s.rounded.Sub(taken)
	return amount.Sub(taken)
}
