package commission

// RollIfNeeded resets the ledger when it still tracks a year before currentYear.
// A state already tracking currentYear (or a later year) is returned unchanged.
func RollIfNeeded(state AgentCapState, currentYear int) AgentCapState {
	if state.TrackingYear >= currentYear {
		return state
	}
	state.TrackingYear = currentYear
	state.YearToDateCommission = 0
	return state
}

// NeedsRollover reports whether RollIfNeeded would reset the state.
func NeedsRollover(state AgentCapState, currentYear int) bool {
	return state.TrackingYear < currentYear
}
