package store

import (
	"fmt"
	"time"

	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

// CreateTransaction assigns an ID and stores a commission record.
func (t *boltTx) CreateTransaction(txn *models.Transaction) error {
	id, err := t.nextID(BucketTransactions)
	if err != nil {
		return fmt.Errorf("failed to generate ID: %w", err)
	}

	if err := t.claimCode(BucketTransactionCodes, txn.Code, id); err != nil {
		return err
	}

	txn.ID = id
	if err := t.put(BucketTransactions, id, txn); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	meta, err := t.bucket(BucketMeta)
	if err != nil {
		return err
	}
	recordedAt := txn.CreatedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	return meta.Put([]byte(metaLastRecorded), []byte(recordedAt.UTC().Format(time.RFC3339)))
}

// GetTransaction retrieves a transaction by its code.
func (t *boltTx) GetTransaction(code string) (*models.Transaction, error) {
	id, err := t.lookupCode(BucketTransactionCodes, code)
	if err != nil {
		return nil, err
	}

	var txn models.Transaction
	if err := t.get(BucketTransactions, id, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListTransactions retrieves transactions matching the filter ordered by ID.
func (t *boltTx) ListTransactions(filter models.TransactionFilter) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	err := forEach(t, BucketTransactions, func(txn *models.Transaction) error {
		if filter.Matches(txn) {
			txns = append(txns, txn)
		}
		return nil
	})
	return txns, err
}

// Stats returns record counts.
func (t *boltTx) Stats() (*models.Stats, error) {
	stats := &models.Stats{}

	err := forEach(t, BucketAgents, func(a *models.Agent) error {
		stats.TotalAgents++
		if a.Status == models.AgentActive {
			stats.ActiveAgents++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	txns, err := t.bucket(BucketTransactions)
	if err != nil {
		return nil, err
	}
	if err := txns.ForEach(func(_, _ []byte) error {
		stats.TotalTransactions++
		return nil
	}); err != nil {
		return nil, err
	}

	meta, err := t.bucket(BucketMeta)
	if err != nil {
		return nil, err
	}
	if v := meta.Get([]byte(metaLastRecorded)); v != nil {
		stats.LastRecorded = string(v)
	}

	return stats, nil
}
