package commission

// RemainingBeforeCap returns how much commission the agent can still earn before
// reaching its cap. Never negative.
func RemainingBeforeCap(state AgentCapState) float64 {
	remaining := state.CapThreshold - state.YearToDateCommission
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CapUtilization returns the year-to-date commission as a percentage of the cap.
func CapUtilization(state AgentCapState) float64 {
	if state.CapThreshold <= 0 {
		return 0
	}
	return state.YearToDateCommission / state.CapThreshold * 100
}

// WillReachCap reports whether a single-agent transaction of the given kind and
// amount would bring the agent to its cap, assuming the pre-cap split applies.
// state must already be rolled over to the evaluation year.
func (e *Engine) WillReachCap(state AgentCapState, kind TransactionKind, amount float64) bool {
	var agentCommission float64
	switch kind {
	case KindSale:
		agentCommission = amount * e.rates.SaleRate * e.rates.SaleAgentSplit
	case KindRent:
		agentCommission = amount * e.rates.RentalFeeRate * e.rates.RentalAgentSplit
	default:
		return false
	}
	return state.YearToDateCommission+agentCommission >= state.CapThreshold
}
