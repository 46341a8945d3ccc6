package brokerage

import (
	"context"

	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

// Store is a transactional ledger of agents and commission records.
// Update runs fn in a read-write transaction that commits only when fn returns nil.
// View runs fn in a read-only transaction.
type Store interface {
	Update(ctx context.Context, fn func(Tx) error) error
	View(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// Tx is the set of ledger operations available inside a store transaction.
// Lookups return models.ErrNotFound for missing records; creates return
// models.ErrDuplicateCode when the code is taken.
type Tx interface {
	CreateAgent(a *models.Agent) error
	GetAgent(id int64) (*models.Agent, error)
	GetAgentByCode(code string) (*models.Agent, error)
	ListAgents() ([]*models.Agent, error)
	UpdateAgent(a *models.Agent) error

	CreateTransaction(t *models.Transaction) error
	GetTransaction(code string) (*models.Transaction, error)
	ListTransactions(filter models.TransactionFilter) ([]*models.Transaction, error)

	Stats() (*models.Stats, error)
}
