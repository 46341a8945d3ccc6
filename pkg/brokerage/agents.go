package brokerage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

// RegisterAgentRequest describes a new agent.
type RegisterAgentRequest struct {
	Code      string
	Name      string
	Email     string
	Phone     string
	SalaryCap float64 // zero uses the service default
	Year      int     // commission year to start tracking; zero uses the current year
}

// RegisterAgent creates an active agent with an empty ledger.
func (s *Service) RegisterAgent(ctx context.Context, req RegisterAgentRequest) (*models.Agent, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code and name are required", ErrInvalidAgent)
	}

	salaryCap := req.SalaryCap
	if salaryCap == 0 {
		salaryCap = s.defaultCap
	}
	if salaryCap <= 0 || math.IsInf(salaryCap, 0) || math.IsNaN(salaryCap) {
		return nil, fmt.Errorf("%w: salary cap must be positive, got %v", ErrInvalidAgent, salaryCap)
	}

	year := req.Year
	if year == 0 {
		year = s.currentYear()
	}

	now := s.now()
	agent := &models.Agent{
		Code:           code,
		Name:           name,
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Status:         models.AgentActive,
		CommissionYear: year,
		SalaryCap:      salaryCap,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.store.Update(ctx, func(tx Tx) error {
		return tx.CreateAgent(agent)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register agent %s: %w", code, err)
	}

	s.logger.Info("agent registered", "agent_id", agent.ID, "code", agent.Code, "salary_cap", agent.SalaryCap)
	return agent, nil
}

// GetAgent returns an agent by code.
func (s *Service) GetAgent(ctx context.Context, code string) (*models.Agent, error) {
	var agent *models.Agent
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		agent, err = tx.GetAgentByCode(code)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get agent %s: %w", code, err)
	}
	return agent, nil
}

// ListAgents returns every agent ordered by ID.
func (s *Service) ListAgents(ctx context.Context) ([]*models.Agent, error) {
	var agents []*models.Agent
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		agents, err = tx.ListAgents()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// SetAgentStatus activates or deactivates an agent. The ledger is left untouched.
func (s *Service) SetAgentStatus(ctx context.Context, code string, status models.AgentStatus) (*models.Agent, error) {
	if status != models.AgentActive && status != models.AgentInactive {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidAgent, status)
	}

	agent, err := s.GetAgent(ctx, code)
	if err != nil {
		return nil, err
	}

	release, err := s.lockAgents(ctx, agent.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.store.Update(ctx, func(tx Tx) error {
		current, err := tx.GetAgent(agent.ID)
		if err != nil {
			return err
		}
		current.Status = status
		current.UpdatedAt = s.now()
		agent = current
		return tx.UpdateAgent(current)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update agent %s: %w", code, err)
	}

	s.logger.Info("agent status changed", "agent_id", agent.ID, "code", agent.Code, "status", agent.Status)
	return agent, nil
}

// AgentCap is an agent's cap position as of a reference year.
// State is rolled over to that year without being persisted.
type AgentCap struct {
	Agent       *models.Agent
	State       commission.AgentCapState
	Status      commission.CapStatus
	Remaining   float64
	Utilization float64 // percent of the cap already earned
}

func capPosition(agent *models.Agent, year int) AgentCap {
	state := commission.RollIfNeeded(agent.CapState(), year)
	return AgentCap{
		Agent:       agent,
		State:       state,
		Status:      state.Status(),
		Remaining:   commission.RemainingBeforeCap(state),
		Utilization: commission.CapUtilization(state),
	}
}

// CapStatus returns one agent's cap position for year. Zero uses the current year.
func (s *Service) CapStatus(ctx context.Context, code string, year int) (*AgentCap, error) {
	if year == 0 {
		year = s.currentYear()
	}

	agent, err := s.GetAgent(ctx, code)
	if err != nil {
		return nil, err
	}

	pos := capPosition(agent, year)
	return &pos, nil
}

// AgentsAtCap returns active agents whose ledger for year is at or above the cap.
func (s *Service) AgentsAtCap(ctx context.Context, year int) ([]AgentCap, error) {
	return s.capQuery(ctx, year, func(p AgentCap) bool {
		return p.Status == commission.AtOrAboveCap
	})
}

// AgentsNearCap returns active agents that have used at least pct percent of
// their cap for year, including those already at cap, most utilized first.
func (s *Service) AgentsNearCap(ctx context.Context, pct float64, year int) ([]AgentCap, error) {
	if pct <= 0 || math.IsNaN(pct) || math.IsInf(pct, 0) {
		return nil, fmt.Errorf("threshold must be a positive percentage, got %v", pct)
	}
	return s.capQuery(ctx, year, func(p AgentCap) bool {
		return p.Utilization >= pct
	})
}

func (s *Service) capQuery(ctx context.Context, year int, keep func(AgentCap) bool) ([]AgentCap, error) {
	if year == 0 {
		year = s.currentYear()
	}

	agents, err := s.ListAgents(ctx)
	if err != nil {
		return nil, err
	}

	var result []AgentCap
	for _, agent := range agents {
		if agent.Status != models.AgentActive {
			continue
		}
		if pos := capPosition(agent, year); keep(pos) {
			result = append(result, pos)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Utilization > result[j].Utilization
	})
	return result, nil
}
