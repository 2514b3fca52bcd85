package domain

import (
	"errors"
)

// Engine errors are plain result values: every kind is recoverable and
// caller-visible, and none of them leaves the order store mutated.
var (
	// ErrInvalidAmount is returned for zero amounts, over-fills, or fee
	// configurations outside their bps bounds.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrOrderNotFound is returned when no order exists for the given id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderAlreadyExists is returned when creating an order whose id is taken.
	ErrOrderAlreadyExists = errors.New("order already exists")

	// ErrOrderExpired is returned when filling past the order's expiration time.
	ErrOrderExpired = errors.New("order expired")

	// ErrInvalidOrderState is returned when the order's status forbids the
	// requested transition. Terminal orders reject every transition with this.
	ErrInvalidOrderState = errors.New("invalid order state")

	// ErrInvalidSecret is returned when the revealed secret does not hash to
	// the published commitment.
	ErrInvalidSecret = errors.New("invalid secret")

	// ErrTimelockViolation is returned when a reveal is attempted outside the
	// permitted window.
	ErrTimelockViolation = errors.New("timelock violation")

	// ErrInvalidTimeRange is returned for auction or expiration windows that
	// end before they begin.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrUnauthorizedCaller is returned before any state is touched when the
	// caller lacks the required authorization.
	ErrUnauthorizedCaller = errors.New("unauthorized caller")

	// ErrReentrancyDetected is returned when an operation re-enters an order
	// id that already has an operation in flight.
	ErrReentrancyDetected = errors.New("reentrancy detected")

	// ErrInsufficientSafetyDeposit is returned when a resolver's posted
	// deposit is below the engine minimum.
	ErrInsufficientSafetyDeposit = errors.New("insufficient safety deposit")

	// ErrTransferFailed wraps failures reported by the bridge adapter
	// boundary. Never produced by internal validation.
	ErrTransferFailed = errors.New("transfer failed")
)

// TransferFailure carries the bridge-reported reason alongside ErrTransferFailed.
type TransferFailure struct {
	Reason string
}

func (e *TransferFailure) Error() string {
	return "transfer failed: " + e.Reason
}

func (e *TransferFailure) Unwrap() error {
	return ErrTransferFailed
}

// NewTransferFailure wraps a bridge-boundary failure reason.
func NewTransferFailure(reason string) *TransferFailure {
	return &TransferFailure{Reason: reason}
}
