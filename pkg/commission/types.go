// Package commission computes brokerage commission splits and tracks agent salary caps.
//
// Everything in this package is pure: cap state goes in by value and the updated
// state comes back out. Persistence and locking belong to the caller.
package commission

import (
	"fmt"
	"math"
	"strings"
)

// TransactionKind is the business kind of a transaction.
type TransactionKind string

const (
	KindSale TransactionKind = "SALE"
	KindRent TransactionKind = "RENT"
)

// ParseKind parses a transaction kind (case-insensitive). "rental" is accepted for RENT.
func ParseKind(s string) (TransactionKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SALE":
		return KindSale, nil
	case "RENT", "RENTAL":
		return KindRent, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidTransactionKind, s)
}

// Valid reports whether k is one of the supported kinds.
func (k TransactionKind) Valid() bool {
	return k == KindSale || k == KindRent
}

// Variant is the calculation variant selected by Classify.
type Variant int

const (
	VariantSingleAgentSale Variant = iota + 1
	VariantDualAgentSale
	VariantRental
)

func (v Variant) String() string {
	switch v {
	case VariantSingleAgentSale:
		return "SINGLE_AGENT_SALE"
	case VariantDualAgentSale:
		return "DUAL_AGENT_SALE"
	case VariantRental:
		return "RENTAL"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// CapStatus is the position of an agent relative to its salary cap within a tracking year.
type CapStatus string

const (
	BelowCap     CapStatus = "BELOW_CAP"
	AtOrAboveCap CapStatus = "AT_OR_ABOVE_CAP"
)

// AgentCapState is a snapshot of one agent's salary-cap ledger.
type AgentCapState struct {
	AgentID              int64
	YearToDateCommission float64
	CapThreshold         float64
	TrackingYear         int
}

// AtCap reports whether the agent has reached its cap. The comparison is inclusive.
func (s AgentCapState) AtCap() bool {
	return s.YearToDateCommission >= s.CapThreshold
}

// Status returns the cap status of the snapshot as-is (no rollover applied).
func (s AgentCapState) Status() CapStatus {
	if s.AtCap() {
		return AtOrAboveCap
	}
	return BelowCap
}

// Validate checks the snapshot for values the engine cannot work with.
func (s AgentCapState) Validate() error {
	if !(s.YearToDateCommission >= 0) || math.IsInf(s.YearToDateCommission, 0) {
		return fmt.Errorf("%w: agent %d has year-to-date commission %v", ErrInconsistentCapState, s.AgentID, s.YearToDateCommission)
	}
	if !(s.CapThreshold > 0) || math.IsInf(s.CapThreshold, 0) {
		return fmt.Errorf("%w: agent %d has cap threshold %v", ErrInconsistentCapState, s.AgentID, s.CapThreshold)
	}
	return nil
}

// TransactionInput is the immutable input of one commission calculation.
// Secondary is the listing agent and only takes part in sales where it differs from Primary.
type TransactionInput struct {
	Kind      TransactionKind
	Amount    float64
	Primary   *AgentCapState
	Secondary *AgentCapState
}

// listingAgent returns the secondary agent when it is a distinct party to a sale.
func (in TransactionInput) listingAgent() *AgentCapState {
	if in.Kind != KindSale || in.Primary == nil || in.Secondary == nil {
		return nil
	}
	if in.Secondary.AgentID == in.Primary.AgentID {
		return nil
	}
	return in.Secondary
}

// Breakdown is how a transaction's total commission splits between the company and the agents.
type Breakdown struct {
	TotalCommission          float64
	CompanyCommission        float64
	PrimaryAgentCommission   float64
	SecondaryAgentCommission float64
	PrimaryAtCap             bool
	SecondaryAtCap           bool
}

// Balanced reports whether company and agent shares add up to the total within tol.
func (b Breakdown) Balanced(tol float64) bool {
	return math.Abs(b.CompanyCommission+b.PrimaryAgentCommission+b.SecondaryAgentCommission-b.TotalCommission) <= tol
}
