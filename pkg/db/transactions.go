package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

const transactionColumns = `id, code, kind, amount, date, agent_id, listing_agent_id,
	client_ref, property_ref, variant, total_commission, company_commission,
	selling_agent_commission, listing_agent_commission, selling_agent_at_cap,
	listing_agent_at_cap, created_at`

const metaLastRecorded = "last_recorded"

// CreateTransaction inserts a commission record and sets its ID.
func (t *sqlTx) CreateTransaction(txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (code, kind, amount, date, agent_id, listing_agent_id,
			client_ref, property_ref, variant, total_commission, company_commission,
			selling_agent_commission, listing_agent_commission, selling_agent_at_cap,
			listing_agent_at_cap, created_at)
		VALUES (:code, :kind, :amount, :date, :agent_id, :listing_agent_id,
			:client_ref, :property_ref, :variant, :total_commission, :company_commission,
			:selling_agent_commission, :listing_agent_commission, :selling_agent_at_cap,
			:listing_agent_at_cap, :created_at)
	`

	result, err := t.tx.NamedExec(query, txn)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction ID: %w", err)
	}
	txn.ID = id

	recordedAt := txn.CreatedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	return t.setMetadata(metaLastRecorded, recordedAt.UTC().Format(time.RFC3339))
}

// GetTransaction retrieves a transaction by its code.
func (t *sqlTx) GetTransaction(code string) (*models.Transaction, error) {
	var txn models.Transaction
	err := t.tx.Get(&txn, `SELECT `+transactionColumns+` FROM transactions WHERE code = ?`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

// ListTransactions retrieves transactions matching the filter ordered by ID.
func (t *sqlTx) ListTransactions(filter models.TransactionFilter) ([]*models.Transaction, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if filter.AgentID != 0 {
		clauses = append(clauses, "(agent_id = ? OR listing_agent_id = ?)")
		args = append(args, filter.AgentID, filter.AgentID)
	}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	var txns []*models.Transaction
	if err := t.tx.Select(&txns, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// Stats retrieves record counts.
func (t *sqlTx) Stats() (*models.Stats, error) {
	var stats models.Stats

	if err := t.tx.Get(&stats.TotalAgents, `SELECT COUNT(*) FROM agents`); err != nil {
		return nil, fmt.Errorf("failed to get agent count: %w", err)
	}

	err := t.tx.Get(&stats.ActiveAgents, `SELECT COUNT(*) FROM agents WHERE status = ?`, string(models.AgentActive))
	if err != nil {
		return nil, fmt.Errorf("failed to get active agent count: %w", err)
	}

	if err := t.tx.Get(&stats.TotalTransactions, `SELECT COUNT(*) FROM transactions`); err != nil {
		return nil, fmt.Errorf("failed to get transaction count: %w", err)
	}

	last, err := t.getMetadata(metaLastRecorded)
	if err != nil {
		return nil, err
	}
	stats.LastRecorded = last

	return &stats, nil
}

// getMetadata retrieves a metadata value.
func (t *sqlTx) getMetadata(key string) (string, error) {
	var value string
	err := t.tx.Get(&value, `SELECT value FROM ledger_metadata WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}
	return value, nil
}

// setMetadata sets a metadata value.
func (t *sqlTx) setMetadata(key, value string) error {
	query := `
		INSERT INTO ledger_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := t.tx.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}
	return nil
}
