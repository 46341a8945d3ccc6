package brokerage

import (
	"context"
	"fmt"

	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
)

// RolloverAll resets every agent ledger that still tracks a year before year.
// It returns the number of agents reset. Ledgers already on year or later are untouched.
func (s *Service) RolloverAll(ctx context.Context, year int) (int, error) {
	if year <= 0 {
		return 0, fmt.Errorf("invalid rollover year: %d", year)
	}

	agents, err := s.ListAgents(ctx)
	if err != nil {
		return 0, err
	}
	if len(agents) == 0 {
		return 0, nil
	}

	ids := make([]int64, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}
	release, err := s.lockAgents(ctx, ids...)
	if err != nil {
		return 0, err
	}
	defer release()

	rolled := 0
	err = s.store.Update(ctx, func(tx Tx) error {
		now := s.now()
		for _, id := range ids {
			agent, err := tx.GetAgent(id)
			if err != nil {
				return err
			}

			state := agent.CapState()
			if !commission.NeedsRollover(state, year) {
				continue
			}

			s.logger.Debug("rolling over agent ledger",
				"agent_id", agent.ID, "from_year", state.TrackingYear, "to_year", year,
				"ytd", state.YearToDateCommission)

			agent.ApplyCapState(commission.RollIfNeeded(state, year))
			agent.UpdatedAt = now
			if err := tx.UpdateAgent(agent); err != nil {
				return err
			}
			rolled++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to roll over agents: %w", err)
	}

	s.metrics.RolledOver(rolled)
	s.logger.Info("agent ledgers rolled over", "year", year, "agents", rolled)
	return rolled, nil
}
