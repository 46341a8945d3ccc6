package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"

	"github.com/shunichi-ikebuchi/brokerage/pkg/beancount"
	"github.com/shunichi-ikebuchi/brokerage/pkg/brokerage"
	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
	"github.com/shunichi-ikebuchi/brokerage/pkg/config"
	"github.com/shunichi-ikebuchi/brokerage/pkg/db"
	"github.com/shunichi-ikebuchi/brokerage/pkg/lock"
	"github.com/shunichi-ikebuchi/brokerage/pkg/metrics"
	"github.com/shunichi-ikebuchi/brokerage/pkg/pathutil"
	"github.com/shunichi-ikebuchi/brokerage/pkg/policy"
	"github.com/shunichi-ikebuchi/brokerage/pkg/store"
)

// app holds everything a command needs, opened from configuration.
type app struct {
	cfg     *config.Config
	service *brokerage.Service
	journal *beancount.Journal
	metrics *metrics.Recorder
	closers []func() error
}

// openApp loads configuration and wires the store, locker, policy, journal and metrics.
func openApp(ctx context.Context) *app {
	slog.Debug("Loading configuration")

	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if cfg.Debug && !debug {
		setupLogging(true)
	}

	if err := cfg.Validate([]string{"ledger", "root"}); err != nil {
		exitOnError(err, "invalid configuration")
	}

	a := &app{cfg: cfg}

	pathResolver := pathutil.New(pathutil.Config{
		Root:         cfg.Ledger.Root,
		DatabasePath: cfg.Ledger.DBPath,
		JournalDir:   cfg.Ledger.JournalDir,
	})

	ledger, err := openStore(cfg, pathResolver)
	exitOnError(err, "failed to open ledger")
	a.closers = append(a.closers, ledger.Close)

	p, err := policy.Load(cfg.Ledger.PolicyFile)
	a.exitOnError(err, "failed to load commission policy")

	engine, err := commission.NewEngine(p.Rates)
	a.exitOnError(err, "invalid commission rates")

	locker, err := a.openLocker(ctx)
	a.exitOnError(err, "failed to connect to Redis")

	if cfg.Ledger.MetricsFile != "" {
		a.metrics = metrics.New()
	}

	a.journal = beancount.NewJournal(beancount.NewFileSystemRepository(pathResolver), p, cfg.Ledger.Currency)

	a.service, err = brokerage.New(brokerage.Config{
		Store:            ledger,
		Calculator:       commission.NewCalculator(engine, p.MoneyScale),
		Locker:           locker,
		LockTTL:          cfg.Redis.LockTTL,
		Journal:          a.journal,
		Metrics:          a.metrics,
		Logger:           slog.Default(),
		DefaultSalaryCap: cfg.Ledger.DefaultSalaryCap,
	})
	a.exitOnError(err, "failed to create service")

	return a
}

func openStore(cfg *config.Config, pathResolver *pathutil.PathResolver) (brokerage.Store, error) {
	switch cfg.Ledger.Store {
	case config.StoreBolt:
		slog.Debug("Opening bbolt ledger", "path", pathResolver.BoltPath())
		return store.New(pathResolver.BoltPath())
	default:
		slog.Debug("Opening SQLite ledger", "path", pathResolver.DatabasePath())
		return db.Open(pathResolver.DatabasePath())
	}
}

// openLocker returns a Redis locker when REDIS_ADDR is set and an in-process one otherwise.
func (a *app) openLocker(ctx context.Context) (lock.Locker, error) {
	if a.cfg.Redis.Addr == "" {
		return lock.NewLocal(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	a.closers = append(a.closers, client.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", a.cfg.Redis.Addr, err)
	}

	slog.Debug("Using Redis agent locks", "addr", a.cfg.Redis.Addr, "prefix", a.cfg.Redis.LockPrefix)
	return lock.NewRedis(client, a.cfg.Redis.LockPrefix), nil
}

// Close writes the metrics textfile, if configured, and releases resources.
func (a *app) Close() error {
	var errs []error
	if a.metrics != nil {
		if err := a.metrics.WriteTextfile(a.cfg.Ledger.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// exitOnError closes the app before exiting so rejections still reach the metrics file.
func (a *app) exitOnError(err error, msg string) {
	if err != nil {
		if closeErr := a.Close(); closeErr != nil {
			slog.Warn("failed to close", "error", closeErr)
		}
		exitOnError(err, msg)
	}
}

func (a *app) closeOrWarn() {
	if err := a.Close(); err != nil {
		slog.Warn("failed to close", "error", err)
	}
}

// money formats an amount with thousands separators and two decimals.
func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// percent formats a utilization percentage.
func percent(v float64) string {
	return humanize.FtoaWithDigits(v, 1) + "%"
}

// since renders an RFC 3339 timestamp relative to now.
func since(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return fmt.Sprintf("%s (%s)", ts, humanize.Time(t))
}
