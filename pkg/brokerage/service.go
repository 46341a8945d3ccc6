// Package brokerage is the back-office service: it records sales and rentals,
// keeps every agent's salary-cap ledger current and answers cap queries.
//
// Each recording locks the involved agents, then loads them, runs the
// commission calculator and persists the updated ledgers together with the
// transaction record in a single store transaction.
package brokerage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
	"github.com/shunichi-ikebuchi/brokerage/pkg/lock"
	"github.com/shunichi-ikebuchi/brokerage/pkg/metrics"
	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

// DefaultLockTTL bounds how long a crashed process can hold an agent lock.
const DefaultLockTTL = 30 * time.Second

// Journal receives every committed transaction for bookkeeping.
// lister is nil unless the transaction is a dual-agent sale.
type Journal interface {
	Append(rec *models.Transaction, seller, lister *models.Agent) error
}

// Config wires a Service. Store and Calculator are required.
type Config struct {
	Store            Store
	Calculator       *commission.Calculator
	Locker           lock.Locker       // defaults to lock.NewLocal()
	LockTTL          time.Duration     // defaults to DefaultLockTTL
	Journal          Journal           // optional
	Metrics          *metrics.Recorder // optional
	Logger           *slog.Logger      // defaults to slog.Default()
	DefaultSalaryCap float64           // defaults to models.DefaultSalaryCap
	Now              func() time.Time  // defaults to time.Now
}

// Service implements the brokerage operations.
type Service struct {
	store      Store
	calculator *commission.Calculator
	locker     lock.Locker
	lockTTL    time.Duration
	journal    Journal
	metrics    *metrics.Recorder
	logger     *slog.Logger
	defaultCap float64
	now        func() time.Time
}

// New creates a Service from cfg.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Calculator == nil {
		return nil, errors.New("calculator is required")
	}

	s := &Service{
		store:      cfg.Store,
		calculator: cfg.Calculator,
		locker:     cfg.Locker,
		lockTTL:    cfg.LockTTL,
		journal:    cfg.Journal,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		defaultCap: cfg.DefaultSalaryCap,
		now:        cfg.Now,
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	if s.lockTTL <= 0 {
		s.lockTTL = DefaultLockTTL
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.defaultCap == 0 {
		s.defaultCap = models.DefaultSalaryCap
	}
	if s.defaultCap < 0 || math.IsInf(s.defaultCap, 0) || math.IsNaN(s.defaultCap) {
		return nil, fmt.Errorf("invalid default salary cap: %v", s.defaultCap)
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s, nil
}

// Stats returns record counts.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	var stats *models.Stats
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		stats, err = tx.Stats()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

// lockAgents locks the given agent ledgers and returns a release function that
// logs instead of failing: by the time it runs the work is already committed.
func (s *Service) lockAgents(ctx context.Context, ids ...int64) (func(), error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = lock.AgentKey(id)
	}

	unlock, err := lock.Acquire(ctx, s.locker, s.lockTTL, keys...)
	if err != nil {
		return nil, err
	}

	return func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release agent locks", "agents", ids, "error", err)
		}
	}, nil
}

// currentYear returns the calendar year of the service clock.
func (s *Service) currentYear() int {
	return s.now().Year()
}
