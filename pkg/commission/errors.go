package commission

import "errors"

var (
	// ErrInvalidTransactionKind is returned for an unsupported kind or a non-positive amount.
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")

	// ErrMissingAgent is returned when the primary agent is absent.
	ErrMissingAgent = errors.New("missing agent")

	// ErrInconsistentCapState is returned for a negative YTD commission or a non-positive cap.
	ErrInconsistentCapState = errors.New("inconsistent cap state")
)

// IsValidation reports whether err is one of the calculation validation failures.
// These indicate a caller defect and are never retried.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidTransactionKind) ||
		errors.Is(err, ErrMissingAgent) ||
		errors.Is(err, ErrInconsistentCapState)
}
