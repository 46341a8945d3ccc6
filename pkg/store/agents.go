package store

import (
	"fmt"

	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

// CreateAgent assigns an ID and stores a new agent.
func (t *boltTx) CreateAgent(a *models.Agent) error {
	id, err := t.nextID(BucketAgents)
	if err != nil {
		return fmt.Errorf("failed to generate ID: %w", err)
	}

	if err := t.claimCode(BucketAgentCodes, a.Code, id); err != nil {
		return err
	}

	a.ID = id
	if err := t.put(BucketAgents, id, a); err != nil {
		return fmt.Errorf("failed to save agent: %w", err)
	}
	return nil
}

// GetAgent retrieves an agent by ID.
func (t *boltTx) GetAgent(id int64) (*models.Agent, error) {
	var agent models.Agent
	if err := t.get(BucketAgents, id, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// GetAgentByCode retrieves an agent by its code.
func (t *boltTx) GetAgentByCode(code string) (*models.Agent, error) {
	id, err := t.lookupCode(BucketAgentCodes, code)
	if err != nil {
		return nil, err
	}
	return t.GetAgent(id)
}

// ListAgents retrieves all agents ordered by ID.
func (t *boltTx) ListAgents() ([]*models.Agent, error) {
	var agents []*models.Agent
	err := forEach(t, BucketAgents, func(a *models.Agent) error {
		agents = append(agents, a)
		return nil
	})
	return agents, err
}

// UpdateAgent overwrites an existing agent. The code is immutable.
func (t *boltTx) UpdateAgent(a *models.Agent) error {
	existing, err := t.GetAgent(a.ID)
	if err != nil {
		return err
	}
	if existing.Code != a.Code {
		return fmt.Errorf("agent %d: code cannot change from %s to %s", a.ID, existing.Code, a.Code)
	}

	if err := t.put(BucketAgents, a.ID, a); err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}
	return nil
}
