// Package store implements the brokerage ledger on top of bbolt.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/shunichi-ikebuchi/brokerage/pkg/brokerage"
	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

// Bucket names.
const (
	BucketAgents           = "agents"
	BucketAgentCodes       = "agent_codes"
	BucketTransactions     = "transactions"
	BucketTransactionCodes = "transaction_codes"
	BucketMeta             = "meta"
)

const metaLastRecorded = "last_recorded"

// Store represents the bbolt database wrapper.
type Store struct {
	db *bolt.DB
}

var _ brokerage.Store = (*Store)(nil)

// New creates a new Store instance and initializes buckets.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Initialize buckets.
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := []string{BucketAgents, BucketAgentCodes, BucketTransactions, BucketTransactionCodes, BucketMeta}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Update runs fn in a read-write bbolt transaction.
// bbolt allows a single writer, so concurrent Update calls are serialized.
func (s *Store) Update(ctx context.Context, fn func(brokerage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// View runs fn in a read-only bbolt transaction.
func (s *Store) View(ctx context.Context, fn func(brokerage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// boltTx adapts a bolt transaction to brokerage.Tx.
type boltTx struct {
	tx *bolt.Tx
}

func (t *boltTx) bucket(name string) (*bolt.Bucket, error) {
	b := t.tx.Bucket([]byte(name))
	if b == nil {
		return nil, fmt.Errorf("bucket %s not found", name)
	}
	return b, nil
}

// nextID generates the next ID for a bucket.
func (t *boltTx) nextID(bucketName string) (int64, error) {
	b, err := t.bucket(bucketName)
	if err != nil {
		return 0, err
	}
	seq, err := b.NextSequence()
	if err != nil {
		return 0, err
	}
	return int64(seq), nil
}

// put stores a JSON value in the specified bucket with the given key.
func (t *boltTx) put(bucketName string, key int64, value interface{}) error {
	b, err := t.bucket(bucketName)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return b.Put(itob(key), data)
}

// get retrieves a JSON value from the specified bucket with the given key.
func (t *boltTx) get(bucketName string, key int64, value interface{}) error {
	b, err := t.bucket(bucketName)
	if err != nil {
		return err
	}

	data := b.Get(itob(key))
	if data == nil {
		return models.ErrNotFound
	}

	return json.Unmarshal(data, value)
}

// lookupCode resolves a code index entry to an ID.
func (t *boltTx) lookupCode(bucketName, code string) (int64, error) {
	b, err := t.bucket(bucketName)
	if err != nil {
		return 0, err
	}

	data := b.Get([]byte(code))
	if data == nil {
		return 0, models.ErrNotFound
	}
	return btoi(data), nil
}

// claimCode indexes code to id, failing if the code is taken.
func (t *boltTx) claimCode(bucketName, code string, id int64) error {
	b, err := t.bucket(bucketName)
	if err != nil {
		return err
	}

	if b.Get([]byte(code)) != nil {
		return models.ErrDuplicateCode
	}
	return b.Put([]byte(code), itob(id))
}

// forEach decodes every value in the bucket in key order.
func forEach[T any](t *boltTx, bucketName string, fn func(*T) error) error {
	b, err := t.bucket(bucketName)
	if err != nil {
		return err
	}

	return b.ForEach(func(k, v []byte) error {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return fmt.Errorf("failed to unmarshal %s record: %w", bucketName, err)
		}
		return fn(&item)
	})
}

// itob converts an int64 to a byte slice for use as a bbolt key.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
