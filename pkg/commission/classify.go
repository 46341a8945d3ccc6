package commission

import (
	"fmt"
	"math"
)

// Classify selects the calculation variant for a transaction.
func Classify(in TransactionInput) (Variant, error) {
	if !in.Kind.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTransactionKind, in.Kind)
	}
	if !(in.Amount > 0) || math.IsInf(in.Amount, 0) {
		return 0, fmt.Errorf("%w: amount must be positive, got %v", ErrInvalidTransactionKind, in.Amount)
	}
	if in.Primary == nil {
		return 0, fmt.Errorf("%w: primary agent is required", ErrMissingAgent)
	}

	if in.Kind == KindRent {
		return VariantRental, nil
	}
	if in.listingAgent() != nil {
		return VariantDualAgentSale, nil
	}
	return VariantSingleAgentSale, nil
}
