package commission

import (
	"fmt"
)

// Rates are the business parameters of the commission engine.
type Rates struct {
	SaleRate          float64 // share of the sale price taken as commission
	RentalFeeRate     float64 // management fee as a share of monthly rent
	SaleAgentSplit    float64 // agent share of a sale before cap
	RentalAgentSplit  float64 // agent share of a rental before cap
	CappedAgentSplit  float64 // agent share once at cap, either kind
	SellingAgentShare float64 // selling agent's share of the dual-sale agent portion
	CapBonusShare     float64 // share of the company portion moved to a capped agent in a dual sale
}

// DefaultRates returns the brokerage's standard rates.
func DefaultRates() Rates {
	return Rates{
		SaleRate:          0.06,
		RentalFeeRate:     0.20,
		SaleAgentSplit:    0.80,
		RentalAgentSplit:  0.90,
		CappedAgentSplit:  0.95,
		SellingAgentShare: 0.60,
		CapBonusShare:     0.50,
	}
}

// Validate checks that every rate is a ratio in (0, 1].
func (r Rates) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"sale_rate", r.SaleRate},
		{"rental_fee_rate", r.RentalFeeRate},
		{"sale_agent_split", r.SaleAgentSplit},
		{"rental_agent_split", r.RentalAgentSplit},
		{"capped_agent_split", r.CappedAgentSplit},
		{"selling_agent_share", r.SellingAgentShare},
		{"cap_bonus_share", r.CapBonusShare},
	}
	for _, f := range fields {
		if !(f.value > 0 && f.value <= 1) {
			return fmt.Errorf("rate %s must be in (0, 1], got %v", f.name, f.value)
		}
	}
	return nil
}

// Engine computes commission breakdowns. It holds only immutable rates and is
// safe for concurrent use.
type Engine struct {
	rates Rates
}

// NewEngine creates an Engine with the given rates.
func NewEngine(rates Rates) (*Engine, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return &Engine{rates: rates}, nil
}

// Rates returns the engine's rates.
func (e *Engine) Rates() Rates {
	return e.rates
}

// Calculate computes the breakdown for a classified transaction. The agent
// states must already be rolled over to the evaluation year. secondary is only
// read for VariantDualAgentSale, where it is required.
func (e *Engine) Calculate(variant Variant, amount float64, primary AgentCapState, secondary *AgentCapState) (Breakdown, error) {
	switch variant {
	case VariantSingleAgentSale:
		return e.singleAgent(amount*e.rates.SaleRate, e.rates.SaleAgentSplit, primary), nil
	case VariantRental:
		return e.singleAgent(amount*e.rates.RentalFeeRate, e.rates.RentalAgentSplit, primary), nil
	case VariantDualAgentSale:
		if secondary == nil {
			return Breakdown{}, fmt.Errorf("%w: dual-agent sale requires a listing agent", ErrMissingAgent)
		}
		return e.dualAgent(amount, primary, *secondary), nil
	}
	return Breakdown{}, fmt.Errorf("%w: unknown variant %v", ErrInvalidTransactionKind, variant)
}

func (e *Engine) singleAgent(total, preCapSplit float64, agent AgentCapState) Breakdown {
	atCap := agent.AtCap()
	split := preCapSplit
	if atCap {
		split = e.rates.CappedAgentSplit
	}

	return Breakdown{
		TotalCommission:        total,
		CompanyCommission:      total * (1 - split),
		PrimaryAgentCommission: total * split,
		PrimaryAtCap:           atCap,
	}
}

// dualAgent always starts from the pre-cap sale split. A capped agent then takes
// a bonus out of the remaining company portion, selling agent first.
func (e *Engine) dualAgent(amount float64, selling, listing AgentCapState) Breakdown {
	total := amount * e.rates.SaleRate
	agentPortion := total * e.rates.SaleAgentSplit
	company := total * (1 - e.rates.SaleAgentSplit)

	sellingCommission := agentPortion * e.rates.SellingAgentShare
	listingCommission := agentPortion * (1 - e.rates.SellingAgentShare)

	sellingAtCap := selling.AtCap()
	listingAtCap := listing.AtCap()

	if sellingAtCap {
		bonus := company * e.rates.CapBonusShare
		sellingCommission += bonus
		company -= bonus
	}
	if listingAtCap {
		bonus := company * e.rates.CapBonusShare
		listingCommission += bonus
		company -= bonus
	}

	return Breakdown{
		TotalCommission:          total,
		CompanyCommission:        company,
		PrimaryAgentCommission:   sellingCommission,
		SecondaryAgentCommission: listingCommission,
		PrimaryAtCap:             sellingAtCap,
		SecondaryAtCap:           listingAtCap,
	}
}
