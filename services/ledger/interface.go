package ledger

import (
	"context"

	"playvisit/models"
)

// Engine is the transactional booking core: it decides whether a
// (day, period) pair may accept one more booking and keeps the remaining
// count, the visit log and the capacity counters mutually consistent.
type Engine interface {
	// AttemptBook books clientID's numbered visit into (date, periodLabel).
	// Preconditions, checked in order: client active, visit number is the
	// next expected one, period not already started today, occupancy below
	// the ceiling. On success the commit is atomic; no failure leaves any
	// mutation behind.
	AttemptBook(ctx context.Context, clientID string, visitNumber int, date, periodLabel string) (*models.VisitLogEntry, error)
	// AvailabilityFor renders the advisory booked/available snapshot for a
	// day under a package layout. It reserves nothing.
	AvailabilityFor(ctx context.Context, date string, packageType int) ([]models.PeriodStatus, error)
	// ManualBook is the audited admin override: capacity and elapsed gates
	// apply, client identity and ordering do not.
	ManualBook(ctx context.Context, actor, date, periodLabel string, packageType, children int) (*models.VisitLogEntry, error)
}
