package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

const agentColumns = `id, code, name, email, phone, status, year_to_date_commission,
	commission_year, salary_cap, created_at, updated_at`

// CreateAgent inserts a new agent and sets its ID.
func (t *sqlTx) CreateAgent(a *models.Agent) error {
	query := `
		INSERT INTO agents (code, name, email, phone, status, year_to_date_commission,
			commission_year, salary_cap, created_at, updated_at)
		VALUES (:code, :name, :email, :phone, :status, :year_to_date_commission,
			:commission_year, :salary_cap, :created_at, :updated_at)
	`

	result, err := t.tx.NamedExec(query, a)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get agent ID: %w", err)
	}
	a.ID = id
	return nil
}

// GetAgent retrieves an agent by ID.
func (t *sqlTx) GetAgent(id int64) (*models.Agent, error) {
	return t.getAgent(`SELECT `+agentColumns+` FROM agents WHERE id = ?`, id)
}

// GetAgentByCode retrieves an agent by its code.
func (t *sqlTx) GetAgentByCode(code string) (*models.Agent, error) {
	return t.getAgent(`SELECT `+agentColumns+` FROM agents WHERE code = ?`, code)
}

func (t *sqlTx) getAgent(query string, arg interface{}) (*models.Agent, error) {
	var agent models.Agent
	err := t.tx.Get(&agent, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return &agent, nil
}

// ListAgents retrieves all agents ordered by ID.
func (t *sqlTx) ListAgents() ([]*models.Agent, error) {
	var agents []*models.Agent
	if err := t.tx.Select(&agents, `SELECT `+agentColumns+` FROM agents ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// UpdateAgent writes the mutable fields of an existing agent.
func (t *sqlTx) UpdateAgent(a *models.Agent) error {
	query := `
		UPDATE agents SET
			name = :name,
			email = :email,
			phone = :phone,
			status = :status,
			year_to_date_commission = :year_to_date_commission,
			commission_year = :commission_year,
			salary_cap = :salary_cap,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := t.tx.NamedExec(query, a)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}
