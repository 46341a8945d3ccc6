package brokerage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

const dateLayout = "2006-01-02"

// RecordRequest describes a sale or rental to record.
type RecordRequest struct {
	Code             string // optional; a UUID is generated when empty
	Kind             commission.TransactionKind
	Amount           float64
	Date             string // YYYY-MM-DD; empty uses today
	AgentCode        string // selling agent, or the agent handling a rental
	ListingAgentCode string // optional; only used for sales
	ClientRef        string
	PropertyRef      string
}

// Recorded is a committed transaction with the updated agents.
type Recorded struct {
	Transaction *models.Transaction
	Seller      *models.Agent
	Lister      *models.Agent // nil unless a dual-agent sale
	Result      commission.Result
}

// Quote is a commission computed for a prospective transaction. Nothing is persisted.
type Quote struct {
	Result commission.Result
	// WillReachCap projects, at the pre-cap split, whether the transaction
	// brings the selling agent to its cap.
	WillReachCap bool
	Seller       *models.Agent
	Lister       *models.Agent
}

// resolved holds the agent IDs a request refers to.
type resolved struct {
	sellerID int64
	listerID int64 // zero when no listing agent participates
	year     int
	date     string
}

// resolve validates the request shape and maps agent codes to IDs.
// Codes are immutable, so the mapping stays valid once locks are taken.
func (s *Service) resolve(ctx context.Context, req RecordRequest) (resolved, error) {
	var r resolved

	// Same order as the calculator: kind, amount, agent.
	if !req.Kind.Valid() {
		return r, fmt.Errorf("%w: %q", commission.ErrInvalidTransactionKind, req.Kind)
	}
	if !(req.Amount > 0) || math.IsInf(req.Amount, 0) {
		return r, fmt.Errorf("%w: amount must be positive, got %v", commission.ErrInvalidTransactionKind, req.Amount)
	}
	sellerCode := strings.TrimSpace(req.AgentCode)
	if sellerCode == "" {
		return r, fmt.Errorf("%w: agent code is required", commission.ErrMissingAgent)
	}
	listerCode := strings.TrimSpace(req.ListingAgentCode)

	r.date = req.Date
	if r.date == "" {
		r.date = s.now().Format(dateLayout)
	}
	d, err := time.Parse(dateLayout, r.date)
	if err != nil {
		return r, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
	}
	// A ledger only rolls forward, so a year past the clock would discard the
	// agent's real year-to-date commission.
	if d.Year() > s.currentYear() {
		return r, fmt.Errorf("%w: %s is in a future year", ErrInvalidDate, r.date)
	}
	r.year = d.Year()

	err = s.store.View(ctx, func(tx Tx) error {
		seller, err := tx.GetAgentByCode(sellerCode)
		if err != nil {
			return fmt.Errorf("agent %s: %w", sellerCode, err)
		}
		r.sellerID = seller.ID

		// A rental never credits a listing agent and the same agent on both
		// sides is a single-agent sale.
		if req.Kind != commission.KindSale || listerCode == "" || listerCode == sellerCode {
			return nil
		}
		lister, err := tx.GetAgentByCode(listerCode)
		if err != nil {
			return fmt.Errorf("listing agent %s: %w", listerCode, err)
		}
		r.listerID = lister.ID
		return nil
	})
	return r, err
}

// load reads the participating agents and builds the calculator input.
func load(tx Tx, req RecordRequest, r resolved) (commission.TransactionInput, *models.Agent, *models.Agent, error) {
	in := commission.TransactionInput{Kind: req.Kind, Amount: req.Amount}

	seller, err := tx.GetAgent(r.sellerID)
	if err != nil {
		return in, nil, nil, fmt.Errorf("failed to load agent %d: %w", r.sellerID, err)
	}
	if seller.Status != models.AgentActive {
		return in, nil, nil, fmt.Errorf("%w: %s", ErrAgentInactive, seller.Code)
	}
	sellerState := seller.CapState()
	in.Primary = &sellerState

	var lister *models.Agent
	if r.listerID != 0 {
		lister, err = tx.GetAgent(r.listerID)
		if err != nil {
			return in, nil, nil, fmt.Errorf("failed to load agent %d: %w", r.listerID, err)
		}
		if lister.Status != models.AgentActive {
			return in, nil, nil, fmt.Errorf("%w: %s", ErrAgentInactive, lister.Code)
		}
		listerState := lister.CapState()
		in.Secondary = &listerState
	}

	return in, seller, lister, nil
}

// RecordTransaction calculates the commission split for a sale or rental,
// credits the agents' ledgers and stores the transaction, all or nothing.
func (s *Service) RecordTransaction(ctx context.Context, req RecordRequest) (*Recorded, error) {
	start := time.Now()

	rec, err := s.record(ctx, req)
	if err != nil {
		reason := rejectionReason(err)
		s.metrics.Rejected(reason)
		s.logger.Warn("transaction rejected",
			"kind", req.Kind, "agent", req.AgentCode, "listing_agent", req.ListingAgentCode,
			"reason", reason, "error", err)
		return nil, err
	}

	s.metrics.ObserveDuration(time.Since(start).Seconds())
	s.metrics.TransactionRecorded(rec.Transaction.Variant,
		rec.Transaction.CompanyCommission, rec.Transaction.SellingAgentCommission, rec.Transaction.ListingAgentCommission)

	crossedSeller, crossedLister := rec.Result.CrossedCap()
	s.metrics.CapCrossed(countTrue(crossedSeller, crossedLister))
	s.metrics.RolledOver(countTrue(rec.Result.PrimaryRolled, rec.Result.SecondaryRolled))

	if crossedSeller {
		s.logger.Info("agent reached salary cap", "agent_id", rec.Seller.ID, "code", rec.Seller.Code,
			"year", rec.Seller.CommissionYear, "ytd", rec.Seller.YearToDateCommission)
	}
	if crossedLister {
		s.logger.Info("agent reached salary cap", "agent_id", rec.Lister.ID, "code", rec.Lister.Code,
			"year", rec.Lister.CommissionYear, "ytd", rec.Lister.YearToDateCommission)
	}

	if s.journal != nil {
		// The ledger is the source of truth; a journal failure is reported, not rolled back.
		if err := s.journal.Append(rec.Transaction, rec.Seller, rec.Lister); err != nil {
			s.logger.Error("failed to journal transaction", "code", rec.Transaction.Code, "error", err)
		}
	}

	s.logger.Info("transaction recorded",
		"code", rec.Transaction.Code,
		"variant", rec.Transaction.Variant,
		"total", rec.Transaction.TotalCommission,
		"company", rec.Transaction.CompanyCommission,
		"agent_id", rec.Seller.ID,
		"agent_commission", rec.Transaction.SellingAgentCommission)

	return rec, nil
}

func (s *Service) record(ctx context.Context, req RecordRequest) (*Recorded, error) {
	r, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	ids := []int64{r.sellerID}
	if r.listerID != 0 {
		ids = append(ids, r.listerID)
	}
	release, err := s.lockAgents(ctx, ids...)
	if err != nil {
		return nil, err
	}
	defer release()

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = uuid.NewString()
	}

	var out *Recorded
	err = s.store.Update(ctx, func(tx Tx) error {
		in, seller, lister, err := load(tx, req, r)
		if err != nil {
			return err
		}

		res, err := s.calculator.Process(in, r.year)
		if err != nil {
			return err
		}

		now := s.now()
		seller.ApplyCapState(res.Primary)
		seller.UpdatedAt = now
		if err := tx.UpdateAgent(seller); err != nil {
			return err
		}

		txn := &models.Transaction{
			Code:        code,
			Kind:        req.Kind,
			Amount:      req.Amount,
			Date:        r.date,
			AgentID:     seller.ID,
			ClientRef:   req.ClientRef,
			PropertyRef: req.PropertyRef,
			CreatedAt:   now,
		}
		txn.ApplyBreakdown(res.Variant, res.Breakdown)

		if res.Secondary != nil {
			lister.ApplyCapState(*res.Secondary)
			lister.UpdatedAt = now
			if err := tx.UpdateAgent(lister); err != nil {
				return err
			}
			listingID := lister.ID
			txn.ListingAgentID = &listingID
		} else {
			lister = nil
		}

		if err := tx.CreateTransaction(txn); err != nil {
			return err
		}

		out = &Recorded{Transaction: txn, Seller: seller, Lister: lister, Result: res}
		return nil
	})
	if err != nil {
		if commission.IsValidation(err) || errors.Is(err, ErrAgentInactive) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	return out, nil
}

// Quote computes the commission for a prospective transaction against the
// agents' current ledgers without persisting anything.
func (s *Service) Quote(ctx context.Context, req RecordRequest) (*Quote, error) {
	r, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	var q *Quote
	err = s.store.View(ctx, func(tx Tx) error {
		in, seller, lister, err := load(tx, req, r)
		if err != nil {
			return err
		}

		res, err := s.calculator.Process(in, r.year)
		if err != nil {
			return err
		}

		rolled := commission.RollIfNeeded(*in.Primary, r.year)
		q = &Quote{
			Result:       res,
			WillReachCap: s.calculator.Engine().WillReachCap(rolled, req.Kind, req.Amount),
			Seller:       seller,
			Lister:       lister,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// TransactionQuery narrows ListTransactions. Zero values match everything.
type TransactionQuery struct {
	AgentCode string
	Kind      commission.TransactionKind
}

// ListTransactions returns recorded transactions ordered by recording.
func (s *Service) ListTransactions(ctx context.Context, q TransactionQuery) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	err := s.store.View(ctx, func(tx Tx) error {
		filter := models.TransactionFilter{Kind: q.Kind}
		if q.AgentCode != "" {
			agent, err := tx.GetAgentByCode(q.AgentCode)
			if err != nil {
				return fmt.Errorf("agent %s: %w", q.AgentCode, err)
			}
			filter.AgentID = agent.ID
		}

		var err error
		txns, err = tx.ListTransactions(filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// GetTransaction returns a recorded transaction by code.
func (s *Service) GetTransaction(ctx context.Context, code string) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		txn, err = tx.GetTransaction(code)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", code, err)
	}
	return txn, nil
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
