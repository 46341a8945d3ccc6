package brokerage_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shunichi-ikebuchi/brokerage/pkg/brokerage"
	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
	"github.com/shunichi-ikebuchi/brokerage/pkg/db"
	"github.com/shunichi-ikebuchi/brokerage/pkg/lock"
	"github.com/shunichi-ikebuchi/brokerage/pkg/metrics"
	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
	"github.com/shunichi-ikebuchi/brokerage/pkg/store"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type openFunc func(t *testing.T) brokerage.Store

func openBolt(t *testing.T) brokerage.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "ledger.bolt"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func openSQLite(t *testing.T) brokerage.Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// eachStore runs fn against every ledger backend.
func eachStore(t *testing.T, fn func(t *testing.T, open openFunc)) {
	backends := []struct {
		name string
		open openFunc
	}{
		{"bolt", openBolt},
		{"sqlite", openSQLite},
	}
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b.open)
		})
	}
}

func newService(t *testing.T, open openFunc, cfg brokerage.Config) *brokerage.Service {
	t.Helper()
	if cfg.Store == nil {
		cfg.Store = open(t)
	}
	if cfg.Calculator == nil {
		engine, err := commission.NewEngine(commission.DefaultRates())
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		cfg.Calculator = commission.NewCalculator(engine, commission.DefaultMoneyScale)
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return testNow }
	}

	svc, err := brokerage.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func register(t *testing.T, svc *brokerage.Service, code string, salaryCap float64, year int) *models.Agent {
	t.Helper()
	agent, err := svc.RegisterAgent(context.Background(), brokerage.RegisterAgentRequest{
		Code: code, Name: "Agent " + code, SalaryCap: salaryCap, Year: year,
	})
	if err != nil {
		t.Fatalf("RegisterAgent(%s) error = %v", code, err)
	}
	return agent
}

func mustAgent(t *testing.T, svc *brokerage.Service, code string) *models.Agent {
	t.Helper()
	agent, err := svc.GetAgent(context.Background(), code)
	if err != nil {
		t.Fatalf("GetAgent(%s) error = %v", code, err)
	}
	return agent
}

func sale(agent, listing string, amount float64) brokerage.RecordRequest {
	return brokerage.RecordRequest{
		Kind: commission.KindSale, Amount: amount, Date: "2024-05-01",
		AgentCode: agent, ListingAgentCode: listing,
	}
}

func TestRegisterAgent(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		svc := newService(t, open, brokerage.Config{DefaultSalaryCap: 150_000})
		ctx := context.Background()

		agent := register(t, svc, "AG-1", 0, 0)
		if agent.SalaryCap != 150_000 {
			t.Errorf("SalaryCap = %v, expected configured default 150000", agent.SalaryCap)
		}
		if agent.CommissionYear != 2024 || agent.Status != models.AgentActive || agent.YearToDateCommission != 0 {
			t.Errorf("RegisterAgent() = %+v", agent)
		}

		tests := []struct {
			name string
			req  brokerage.RegisterAgentRequest
			want error
		}{
			{"missing code", brokerage.RegisterAgentRequest{Name: "X"}, brokerage.ErrInvalidAgent},
			{"missing name", brokerage.RegisterAgentRequest{Code: "X"}, brokerage.ErrInvalidAgent},
			{"negative cap", brokerage.RegisterAgentRequest{Code: "X", Name: "X", SalaryCap: -1}, brokerage.ErrInvalidAgent},
			{"duplicate code", brokerage.RegisterAgentRequest{Code: "AG-1", Name: "Again"}, models.ErrDuplicateCode},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := svc.RegisterAgent(ctx, tt.req); !errors.Is(err, tt.want) {
					t.Errorf("RegisterAgent() error = %v, expected %v", err, tt.want)
				}
			})
		}
	})
}

func TestRecordSingleAgentSale(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		svc := newService(t, open, brokerage.Config{})
		register(t, svc, "S", 2_000_000, 2024)

		rec, err := svc.RecordTransaction(context.Background(), sale("S", "", 100_000))
		if err != nil {
			t.Fatalf("RecordTransaction() error = %v", err)
		}

		txn := rec.Transaction
		if txn.Variant != "SINGLE_AGENT_SALE" || txn.TotalCommission != 6_000 ||
			txn.SellingAgentCommission != 4_800 || txn.CompanyCommission != 1_200 {
			t.Errorf("Transaction = %+v", txn)
		}
		if txn.Code == "" || txn.ID == 0 {
			t.Errorf("Transaction not persisted: code=%q id=%d", txn.Code, txn.ID)
		}
		if rec.Lister != nil || txn.ListingAgentID != nil {
			t.Errorf("single-agent sale has a listing agent: %+v", rec.Lister)
		}

		if got := mustAgent(t, svc, "S").YearToDateCommission; got != 4_800 {
			t.Errorf("YearToDateCommission = %v, expected 4800", got)
		}
	})
}

func TestRecordDualAgentSale(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		svc := newService(t, open, brokerage.Config{})
		register(t, svc, "S", 2_000_000, 2024)
		lister := register(t, svc, "L", 2_000_000, 2024)

		rec, err := svc.RecordTransaction(context.Background(), sale("S", "L", 500_000))
		if err != nil {
			t.Fatalf("RecordTransaction() error = %v", err)
		}

		txn := rec.Transaction
		if txn.Variant != "DUAL_AGENT_SALE" || txn.TotalCommission != 30_000 || txn.CompanyCommission != 6_000 ||
			txn.SellingAgentCommission != 14_400 || txn.ListingAgentCommission != 9_600 {
			t.Errorf("Transaction = %+v", txn)
		}
		if txn.ListingAgentID == nil || *txn.ListingAgentID != lister.ID {
			t.Errorf("ListingAgentID = %v, expected %d", txn.ListingAgentID, lister.ID)
		}

		if got := mustAgent(t, svc, "S").YearToDateCommission; got != 14_400 {
			t.Errorf("selling YTD = %v, expected 14400", got)
		}
		if got := mustAgent(t, svc, "L").YearToDateCommission; got != 9_600 {
			t.Errorf("listing YTD = %v, expected 9600", got)
		}
	})
}

func TestRecordRentalIgnoresListingAgent(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		svc := newService(t, open, brokerage.Config{})
		register(t, svc, "S", 2_000_000, 2024)
		register(t, svc, "L", 2_000_000, 2024)

		req := sale("S", "L", 2_000)
		req.Kind = commission.KindRent
		rec, err := svc.RecordTransaction(context.Background(), req)
		if err != nil {
			t.Fatalf("RecordTransaction() error = %v", err)
		}

		txn := rec.Transaction
		if txn.Variant != "RENTAL" || txn.TotalCommission != 400 || txn.SellingAgentCommission != 360 || txn.CompanyCommission != 40 {
			t.Errorf("Transaction = %+v", txn)
		}
		if txn.ListingAgentID != nil {
			t.Errorf("rental recorded listing agent %d", *txn.ListingAgentID)
		}
		if got := mustAgent(t, svc, "L").YearToDateCommission; got != 0 {
			t.Errorf("listing YTD = %v, expected 0", got)
		}
	})
}

func TestRecordCrossesCap(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		rec := metrics.New()
		svc := newService(t, open, brokerage.Config{Metrics: rec})
		register(t, svc, "S", 10_000, 2024)
		ctx := context.Background()

		expected := []struct {
			agentCommission float64
			atCap           bool
			ytd             float64
		}{
			{4_800, false, 4_800},
			{4_800, false, 9_600},
			{4_800, false, 14_400}, // below cap when evaluated, crosses it
			{5_700, true, 20_100},
		}

		for i, want := range expected {
			got, err := svc.RecordTransaction(ctx, sale("S", "", 100_000))
			if err != nil {
				t.Fatalf("RecordTransaction() #%d error = %v", i+1, err)
			}
			if got.Transaction.SellingAgentCommission != want.agentCommission || got.Transaction.SellingAgentAtCap != want.atCap {
				t.Errorf("#%d commission = %v atCap = %v, expected %v %v", i+1,
					got.Transaction.SellingAgentCommission, got.Transaction.SellingAgentAtCap, want.agentCommission, want.atCap)
			}
			if got.Seller.YearToDateCommission != want.ytd {
				t.Errorf("#%d YTD = %v, expected %v", i+1, got.Seller.YearToDateCommission, want.ytd)
			}
		}

		status, err := svc.CapStatus(ctx, "S", 2024)
		if err != nil {
			t.Fatalf("CapStatus() error = %v", err)
		}
		if status.Status != commission.AtOrAboveCap || status.Remaining != 0 {
			t.Errorf("CapStatus() = %+v", status)
		}
	})
}

func TestRecordRollsOverYear(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		svc := newService(t, open, brokerage.Config{})
		register(t, svc, "S", 1_000_000, 2023)
		ctx := context.Background()

		// Push the 2023 ledger past its cap.
		for i := 0; i < 3; i++ {
			req := sale("S", "", 8_000_000)
			req.Date = "2023-11-01"
			if _, err := svc.RecordTransaction(ctx, req); err != nil {
				t.Fatalf("RecordTransaction(2023) error = %v", err)
			}
		}
		if a := mustAgent(t, svc, "S"); a.YearToDateCommission < 1_000_000 {
			t.Fatalf("setup: YTD = %v, expected at cap", a.YearToDateCommission)
		}

		rec, err := svc.RecordTransaction(ctx, sale("S", "", 100_000))
		if err != nil {
			t.Fatalf("RecordTransaction(2024) error = %v", err)
		}
		if rec.Transaction.SellingAgentAtCap || rec.Transaction.SellingAgentCommission != 4_800 {
			t.Errorf("Transaction = %+v, expected below-cap split", rec.Transaction)
		}
		if !rec.Result.PrimaryRolled {
			t.Error("PrimaryRolled = false, expected true")
		}
		if rec.Seller.CommissionYear != 2024 || rec.Seller.YearToDateCommission != 4_800 {
			t.Errorf("Seller = year %d ytd %v, expected 2024 / 4800", rec.Seller.CommissionYear, rec.Seller.YearToDateCommission)
		}
	})
}

func TestRecordFutureYearKeepsLedger(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		svc := newService(t, open, brokerage.Config{})
		register(t, svc, "S", 2_000_000, 2024)
		ctx := context.Background()

		if _, err := svc.RecordTransaction(ctx, sale("S", "", 1_000_000)); err != nil {
			t.Fatalf("RecordTransaction() error = %v", err)
		}

		future := sale("S", "", 100_000)
		future.Date = "2099-01-01"
		if _, err := svc.RecordTransaction(ctx, future); !errors.Is(err, brokerage.ErrInvalidDate) {
			t.Errorf("RecordTransaction(2099) error = %v, expected ErrInvalidDate", err)
		}
		if _, err := svc.Quote(ctx, future); !errors.Is(err, brokerage.ErrInvalidDate) {
			t.Errorf("Quote(2099) error = %v, expected ErrInvalidDate", err)
		}

		// Later in the clock's own year is fine.
		yearEnd := sale("S", "", 100_000)
		yearEnd.Date = "2024-12-31"
		if _, err := svc.RecordTransaction(ctx, yearEnd); err != nil {
			t.Fatalf("RecordTransaction(2024-12-31) error = %v", err)
		}

		a := mustAgent(t, svc, "S")
		if a.CommissionYear != 2024 || a.YearToDateCommission != 52_800 {
			t.Errorf("agent = year %d ytd %v, expected 2024 / 52800", a.CommissionYear, a.YearToDateCommission)
		}

		status, err := svc.CapStatus(ctx, "S", 2024)
		if err != nil {
			t.Fatalf("CapStatus() error = %v", err)
		}
		if status.State.TrackingYear != 2024 {
			t.Errorf("CapStatus().State.TrackingYear = %d, expected 2024", status.State.TrackingYear)
		}
	})
}

func TestRecordRejects(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		rec := metrics.New()
		svc := newService(t, open, brokerage.Config{Metrics: rec})
		register(t, svc, "S", 2_000_000, 2024)
		register(t, svc, "L", 2_000_000, 2024)
		register(t, svc, "GONE", 2_000_000, 2024)
		ctx := context.Background()

		if _, err := svc.SetAgentStatus(ctx, "GONE", models.AgentInactive); err != nil {
			t.Fatalf("SetAgentStatus() error = %v", err)
		}
		first := sale("S", "", 100_000)
		first.Code = "T-1"
		if _, err := svc.RecordTransaction(ctx, first); err != nil {
			t.Fatalf("RecordTransaction() error = %v", err)
		}

		tests := []struct {
			name   string
			mutate func(r *brokerage.RecordRequest)
			want   error
		}{
			{"invalid kind", func(r *brokerage.RecordRequest) { r.Kind = "LEASE" }, commission.ErrInvalidTransactionKind},
			{"zero amount", func(r *brokerage.RecordRequest) { r.Amount = 0 }, commission.ErrInvalidTransactionKind},
			{"negative amount", func(r *brokerage.RecordRequest) { r.Amount = -5 }, commission.ErrInvalidTransactionKind},
			{"missing agent", func(r *brokerage.RecordRequest) { r.AgentCode = " " }, commission.ErrMissingAgent},
			{"unknown agent", func(r *brokerage.RecordRequest) { r.AgentCode = "NOPE" }, models.ErrNotFound},
			{"unknown listing agent", func(r *brokerage.RecordRequest) { r.ListingAgentCode = "NOPE" }, models.ErrNotFound},
			{"inactive agent", func(r *brokerage.RecordRequest) { r.AgentCode = "GONE" }, brokerage.ErrAgentInactive},
			{"inactive listing agent", func(r *brokerage.RecordRequest) { r.ListingAgentCode = "GONE" }, brokerage.ErrAgentInactive},
			{"bad date", func(r *brokerage.RecordRequest) { r.Date = "01/05/2024" }, brokerage.ErrInvalidDate},
			{"future year", func(r *brokerage.RecordRequest) { r.Date = "2025-01-01" }, brokerage.ErrInvalidDate},
			{"duplicate code", func(r *brokerage.RecordRequest) { r.Code = "T-1" }, models.ErrDuplicateCode},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := sale("S", "L", 100_000)
				tt.mutate(&req)
				if _, err := svc.RecordTransaction(ctx, req); !errors.Is(err, tt.want) {
					t.Errorf("RecordTransaction() error = %v, expected %v", err, tt.want)
				}
			})
		}

		if got := mustAgent(t, svc, "S").YearToDateCommission; got != 4_800 {
			t.Errorf("selling YTD = %v after rejections, expected 4800", got)
		}
		if got := mustAgent(t, svc, "L").YearToDateCommission; got != 0 {
			t.Errorf("listing YTD = %v after rejections, expected 0", got)
		}

		stats, err := svc.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.TotalTransactions != 1 || stats.TotalAgents != 3 || stats.ActiveAgents != 2 {
			t.Errorf("Stats() = %+v", stats)
		}
	})
}

var errBoom = errors.New("boom")

// failingStore fails every CreateTransaction inside Update.
type failingStore struct {
	brokerage.Store
}

func (f failingStore) Update(ctx context.Context, fn func(brokerage.Tx) error) error {
	return f.Store.Update(ctx, func(tx brokerage.Tx) error {
		return fn(failingTx{tx})
	})
}

type failingTx struct {
	brokerage.Tx
}

func (failingTx) CreateTransaction(*models.Transaction) error {
	return errBoom
}

func TestRecordIsAtomic(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		inner := open(t)
		setup := newService(t, open, brokerage.Config{Store: inner})
		register(t, setup, "S", 2_000_000, 2024)
		register(t, setup, "L", 2_000_000, 2024)

		svc := newService(t, open, brokerage.Config{Store: failingStore{inner}})
		if _, err := svc.RecordTransaction(context.Background(), sale("S", "L", 500_000)); !errors.Is(err, errBoom) {
			t.Fatalf("RecordTransaction() error = %v, expected boom", err)
		}

		for _, code := range []string{"S", "L"} {
			if got := mustAgent(t, setup, code).YearToDateCommission; got != 0 {
				t.Errorf("%s YTD = %v after failed commit, expected 0", code, got)
			}
		}
	})
}

func TestRecordConcurrent(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		lockers := map[string]func(t *testing.T) lock.Locker{
			"local": func(t *testing.T) lock.Locker { return lock.NewLocal() },
			"redis": func(t *testing.T) lock.Locker {
				mr := miniredis.RunT(t)
				client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				t.Cleanup(func() { client.Close() })
				return lock.NewRedis(client, "test:", lock.WithPollInterval(2*time.Millisecond))
			},
		}

		for name, newLocker := range lockers {
			t.Run(name, func(t *testing.T) {
				svc := newService(t, open, brokerage.Config{Locker: newLocker(t)})
				register(t, svc, "A", 2_000_000, 2024)
				register(t, svc, "B", 2_000_000, 2024)

				const workers = 20
				var wg sync.WaitGroup
				errs := make(chan error, workers)
				for i := 0; i < workers; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						// Alternate roles so lock order is exercised in both directions.
						req := sale("A", "B", 500_000)
						if i%2 == 1 {
							req = sale("B", "A", 500_000)
						}
						if _, err := svc.RecordTransaction(context.Background(), req); err != nil {
							errs <- err
						}
					}(i)
				}
				wg.Wait()
				close(errs)
				for err := range errs {
					t.Errorf("RecordTransaction() error = %v", err)
				}

				// Each agent sold 10 times (14,400) and listed 10 times (9,600).
				for _, code := range []string{"A", "B"} {
					if got := mustAgent(t, svc, code).YearToDateCommission; got != 240_000 {
						t.Errorf("%s YTD = %v, expected 240000", code, got)
					}
				}

				txns, err := svc.ListTransactions(context.Background(), brokerage.TransactionQuery{AgentCode: "A"})
				if err != nil {
					t.Fatalf("ListTransactions() error = %v", err)
				}
				if len(txns) != workers {
					t.Errorf("len(ListTransactions(A)) = %d, expected %d", len(txns), workers)
				}
			})
		}
	})
}

func TestQuoteDoesNotPersist(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		svc := newService(t, open, brokerage.Config{})
		register(t, svc, "S", 5_000, 2024)
		ctx := context.Background()

		q, err := svc.Quote(ctx, sale("S", "", 100_000))
		if err != nil {
			t.Fatalf("Quote() error = %v", err)
		}
		if q.Result.Breakdown.PrimaryAgentCommission != 4_800 {
			t.Errorf("quoted agent commission = %v, expected 4800", q.Result.Breakdown.PrimaryAgentCommission)
		}
		if q.WillReachCap {
			t.Error("WillReachCap = true, expected false for 4800 against a 5000 cap")
		}

		q, err = svc.Quote(ctx, sale("S", "", 200_000))
		if err != nil {
			t.Fatalf("Quote() error = %v", err)
		}
		if !q.WillReachCap {
			t.Error("WillReachCap = false, expected true for 9600 against a 5000 cap")
		}

		if got := mustAgent(t, svc, "S").YearToDateCommission; got != 0 {
			t.Errorf("YTD = %v after quotes, expected 0", got)
		}
		txns, err := svc.ListTransactions(ctx, brokerage.TransactionQuery{})
		if err != nil {
			t.Fatalf("ListTransactions() error = %v", err)
		}
		if len(txns) != 0 {
			t.Errorf("quotes created %d transactions", len(txns))
		}
	})
}

func TestCapQueriesAndRollover(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		rec := metrics.New()
		svc := newService(t, open, brokerage.Config{Metrics: rec})
		ctx := context.Background()

		register(t, svc, "OLD", 1_000, 2023)
		register(t, svc, "HALF", 10_000, 2024)
		register(t, svc, "NEW", 10_000, 2024)

		old := sale("OLD", "", 100_000)
		old.Date = "2023-12-30"
		if _, err := svc.RecordTransaction(ctx, old); err != nil {
			t.Fatalf("RecordTransaction(OLD) error = %v", err)
		}
		if _, err := svc.RecordTransaction(ctx, sale("HALF", "", 125_000)); err != nil { // 6,000 of 10,000
			t.Fatalf("RecordTransaction(HALF) error = %v", err)
		}

		atCap, err := svc.AgentsAtCap(ctx, 2023)
		if err != nil {
			t.Fatalf("AgentsAtCap(2023) error = %v", err)
		}
		if len(atCap) != 1 || atCap[0].Agent.Code != "OLD" {
			t.Errorf("AgentsAtCap(2023) = %v", codes(atCap))
		}

		// Evaluated for 2024 the stale ledger rolls over virtually.
		atCap, err = svc.AgentsAtCap(ctx, 2024)
		if err != nil {
			t.Fatalf("AgentsAtCap(2024) error = %v", err)
		}
		if len(atCap) != 0 {
			t.Errorf("AgentsAtCap(2024) = %v, expected none", codes(atCap))
		}

		near, err := svc.AgentsNearCap(ctx, 50, 2024)
		if err != nil {
			t.Fatalf("AgentsNearCap() error = %v", err)
		}
		if len(near) != 1 || near[0].Agent.Code != "HALF" {
			t.Fatalf("AgentsNearCap(50) = %v, expected [HALF]", codes(near))
		}
		if u := near[0].Utilization; u < 59.99 || u > 60.01 {
			t.Errorf("Utilization = %v, expected 60", u)
		}
		if _, err := svc.AgentsNearCap(ctx, 0, 2024); err == nil {
			t.Error("AgentsNearCap(0) should fail")
		}

		n, err := svc.RolloverAll(ctx, 2024)
		if err != nil {
			t.Fatalf("RolloverAll() error = %v", err)
		}
		if n != 1 {
			t.Errorf("RolloverAll() = %d, expected 1", n)
		}
		if a := mustAgent(t, svc, "OLD"); a.CommissionYear != 2024 || a.YearToDateCommission != 0 {
			t.Errorf("OLD after rollover = year %d ytd %v", a.CommissionYear, a.YearToDateCommission)
		}
		if a := mustAgent(t, svc, "HALF"); a.YearToDateCommission != 6_000 {
			t.Errorf("HALF after rollover = ytd %v, expected untouched 6000", a.YearToDateCommission)
		}

		if n, err := svc.RolloverAll(ctx, 2024); err != nil || n != 0 {
			t.Errorf("second RolloverAll() = %d, %v; expected 0, nil", n, err)
		}
	})
}

func codes(caps []brokerage.AgentCap) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = c.Agent.Code
	}
	return out
}

// recordingJournal captures appended transactions.
type recordingJournal struct {
	mu      sync.Mutex
	entries []string
	fail    bool
}

func (j *recordingJournal) Append(rec *models.Transaction, seller, lister *models.Agent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return errBoom
	}
	entry := rec.Code + ":" + seller.Code
	if lister != nil {
		entry += "+" + lister.Code
	}
	j.entries = append(j.entries, entry)
	return nil
}

func TestJournalReceivesCommittedTransactions(t *testing.T) {
	eachStore(t, func(t *testing.T, open openFunc) {
		journal := &recordingJournal{}
		svc := newService(t, open, brokerage.Config{Journal: journal})
		register(t, svc, "S", 2_000_000, 2024)
		register(t, svc, "L", 2_000_000, 2024)
		ctx := context.Background()

		req := sale("S", "L", 500_000)
		req.Code = "T-1"
		if _, err := svc.RecordTransaction(ctx, req); err != nil {
			t.Fatalf("RecordTransaction() error = %v", err)
		}
		if _, err := svc.RecordTransaction(ctx, sale("S", "", 0)); err == nil {
			t.Fatal("RecordTransaction() with zero amount should fail")
		}

		if len(journal.entries) != 1 || journal.entries[0] != "T-1:S+L" {
			t.Errorf("journal entries = %v, expected [T-1:S+L]", journal.entries)
		}

		// A journal failure does not undo the committed transaction.
		journal.fail = true
		req.Code = "T-2"
		if _, err := svc.RecordTransaction(ctx, req); err != nil {
			t.Fatalf("RecordTransaction() with failing journal error = %v", err)
		}
		if _, err := svc.GetTransaction(ctx, "T-2"); err != nil {
			t.Errorf("GetTransaction(T-2) error = %v", err)
		}
	})
}
