// Package models defines the persisted brokerage records shared by the stores and the service.
package models

import (
	"errors"
	"time"

	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateCode is returned when a code is already taken.
	ErrDuplicateCode = errors.New("code already exists")
)

// DefaultSalaryCap is the annual cap assigned to new agents unless configured otherwise.
const DefaultSalaryCap = 2_000_000.0

// AgentStatus is the employment status of an agent.
type AgentStatus string

const (
	AgentActive   AgentStatus = "ACTIVE"
	AgentInactive AgentStatus = "INACTIVE"
)

// Agent represents a real estate agent and its salary-cap ledger.
type Agent struct {
	ID                   int64       `json:"id" db:"id"`
	Code                 string      `json:"code" db:"code"`
	Name                 string      `json:"name" db:"name"`
	Email                string      `json:"email" db:"email"`
	Phone                string      `json:"phone" db:"phone"`
	Status               AgentStatus `json:"status" db:"status"`
	YearToDateCommission float64     `json:"year_to_date_commission" db:"year_to_date_commission"`
	CommissionYear       int         `json:"commission_year" db:"commission_year"`
	SalaryCap            float64     `json:"salary_cap" db:"salary_cap"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at" db:"updated_at"`
}

// CapState returns the agent's ledger as an engine snapshot.
func (a *Agent) CapState() commission.AgentCapState {
	return commission.AgentCapState{
		AgentID:              a.ID,
		YearToDateCommission: a.YearToDateCommission,
		CapThreshold:         a.SalaryCap,
		TrackingYear:         a.CommissionYear,
	}
}

// ApplyCapState copies an updated engine snapshot back onto the agent.
func (a *Agent) ApplyCapState(s commission.AgentCapState) {
	a.YearToDateCommission = s.YearToDateCommission
	a.CommissionYear = s.TrackingYear
}

// Transaction is a recorded sale or rental together with its commission breakdown.
type Transaction struct {
	ID                     int64                      `json:"id" db:"id"`
	Code                   string                     `json:"code" db:"code"`
	Kind                   commission.TransactionKind `json:"kind" db:"kind"`
	Amount                 float64                    `json:"amount" db:"amount"`
	Date                   string                     `json:"date" db:"date"` // YYYY-MM-DD
	AgentID                int64                      `json:"agent_id" db:"agent_id"`
	ListingAgentID         *int64                     `json:"listing_agent_id,omitempty" db:"listing_agent_id"`
	ClientRef              string                     `json:"client_ref,omitempty" db:"client_ref"`
	PropertyRef            string                     `json:"property_ref,omitempty" db:"property_ref"`
	Variant                string                     `json:"variant" db:"variant"`
	TotalCommission        float64                    `json:"total_commission" db:"total_commission"`
	CompanyCommission      float64                    `json:"company_commission" db:"company_commission"`
	SellingAgentCommission float64                    `json:"selling_agent_commission" db:"selling_agent_commission"`
	ListingAgentCommission float64                    `json:"listing_agent_commission" db:"listing_agent_commission"`
	SellingAgentAtCap      bool                       `json:"selling_agent_at_cap" db:"selling_agent_at_cap"`
	ListingAgentAtCap      bool                       `json:"listing_agent_at_cap" db:"listing_agent_at_cap"`
	CreatedAt              time.Time                  `json:"created_at" db:"created_at"`
}

// ApplyBreakdown copies a settled breakdown onto the record.
func (t *Transaction) ApplyBreakdown(variant commission.Variant, b commission.Breakdown) {
	t.Variant = variant.String()
	t.TotalCommission = b.TotalCommission
	t.CompanyCommission = b.CompanyCommission
	t.SellingAgentCommission = b.PrimaryAgentCommission
	t.ListingAgentCommission = b.SecondaryAgentCommission
	t.SellingAgentAtCap = b.PrimaryAtCap
	t.ListingAgentAtCap = b.SecondaryAtCap
}

// TransactionFilter narrows ListTransactions. Zero values match everything.
type TransactionFilter struct {
	AgentID int64 // matches selling or listing agent
	Kind    commission.TransactionKind
}

// Matches reports whether t passes the filter.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.AgentID != 0 {
		if t.AgentID == f.AgentID {
			return true
		}
		return t.ListingAgentID != nil && *t.ListingAgentID == f.AgentID
	}
	return true
}

// Stats represents record counts.
type Stats struct {
	TotalAgents       int
	ActiveAgents      int
	TotalTransactions int
	LastRecorded      string
}
