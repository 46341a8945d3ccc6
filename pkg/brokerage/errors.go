package brokerage

import (
	"errors"

	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

var (
	// ErrAgentInactive is returned when an inactive agent is assigned to a transaction.
	ErrAgentInactive = errors.New("agent is inactive")

	// ErrInvalidAgent is returned for incomplete or inconsistent agent registrations.
	ErrInvalidAgent = errors.New("invalid agent")

	// ErrInvalidDate is returned for transaction dates not in YYYY-MM-DD form
	// or dated in a year after the service clock.
	ErrInvalidDate = errors.New("invalid transaction date")
)

// rejectionReason maps a failed recording to a metrics label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, commission.ErrInvalidTransactionKind):
		return "invalid_transaction_kind"
	case errors.Is(err, commission.ErrMissingAgent):
		return "missing_agent"
	case errors.Is(err, commission.ErrInconsistentCapState):
		return "inconsistent_cap_state"
	case errors.Is(err, ErrAgentInactive):
		return "agent_inactive"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, models.ErrNotFound):
		return "agent_not_found"
	case errors.Is(err, models.ErrDuplicateCode):
		return "duplicate_code"
	default:
		return "error"
	}
}
