package visitRepo

import (
	"context"
	"errors"

	"playvisit/models"
)

var (
	// ErrCapacityFull signals that the period counter already reached the
	// ceiling for the requested (date, period) pair.
	ErrCapacityFull = errors.New("period capacity reached")
	// ErrStaleClient signals that the client document no longer matched the
	// expected remaining-visit count inside the booking transaction. The
	// caller re-reads the client to classify the failure.
	ErrStaleClient = errors.New("client state changed during booking")
)

// VisitRepository owns the append-only visit log and the per-period
// capacity counters that serialize concurrent bookings for the same period.
type VisitRepository interface {
	// BookVisit atomically appends the entry, decrements the owning
	// client's remaining-visit count (guarded by expectedRemaining) and
	// raises the (date, period) counter (guarded by ceiling). A client
	// reaching zero remaining visits is removed in the same transaction.
	BookVisit(ctx context.Context, entry *models.VisitLogEntry, expectedRemaining, ceiling int) error
	// BookManual atomically appends an audited manual entry, enforcing only
	// the capacity ceiling. No client record is touched.
	BookManual(ctx context.Context, entry *models.VisitLogEntry, ceiling int) error
	// CountForPeriod returns the number of logged visits for (date, period).
	CountForPeriod(ctx context.Context, date, period string) (int, error)
	// ListByClient returns a client's visits ordered by visit number.
	ListByClient(ctx context.Context, clientID string) ([]models.VisitLogEntry, error)
	// DeleteByClient removes a client's visit log rows and releases the
	// period capacity they held, in one transaction. Offered for explicit
	// admin cleanup only; routine deactivation retains the log.
	DeleteByClient(ctx context.Context, clientID string) (int64, error)
}
