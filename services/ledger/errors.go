package ledger

import (
	"errors"
	"fmt"
)

// Booking precondition failures. All are expected, recoverable outcomes:
// the session survives and the caller re-renders the choices.
var (
	// ErrClientInactive: the client does not exist, has no visits left, or
	// its package expired.
	ErrClientInactive = errors.New("client is not active")
	// ErrPeriodElapsed: the period's start time already passed today.
	ErrPeriodElapsed = errors.New("period has already started")
	// ErrPeriodFull: occupancy reached the package's ceiling.
	ErrPeriodFull = errors.New("period is fully booked")
	// ErrUnknownPeriod: the label does not belong to the client's package
	// layout. A malformed request, not a capacity condition.
	ErrUnknownPeriod = errors.New("unknown period for package")
)

// OutOfOrderVisitError reports a visit number that is not the client's next
// expected one, carrying the expected number so the caller can re-prompt.
// It also absorbs duplicate confirm deliveries: the second attempt for an
// already-consumed number lands here, never as a double booking.
type OutOfOrderVisitError struct {
	Expected int
}

func (e *OutOfOrderVisitError) Error() string {
	return fmt.Sprintf("visit out of order: expected visit %d", e.Expected)
}
