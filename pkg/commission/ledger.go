package commission

// ApplyBreakdown credits the breakdown to the agents' year-to-date totals and
// returns the new states. The secondary is only credited when it is non-nil;
// callers pass it for dual-agent sales only.
func ApplyBreakdown(b Breakdown, primary AgentCapState, secondary *AgentCapState) (AgentCapState, *AgentCapState) {
	primary.YearToDateCommission += b.PrimaryAgentCommission

	if secondary == nil {
		return primary, nil
	}
	updated := *secondary
	updated.YearToDateCommission += b.SecondaryAgentCommission
	return primary, &updated
}
