package ledger

import (
	"context"
	"fmt"

	"playvisit/models"
	"playvisit/services/capacity"
)

// AvailabilityFor reports the booked/available split per period of a
// package layout on the given day. Advisory only: a snapshot here does not
// reserve anything, and a later AttemptBook may still find the period full.
func (e *DefaultLedgerEngine) AvailabilityFor(ctx context.Context, date string, packageType int) ([]models.PeriodStatus, error) {
	if !capacity.Known(packageType) {
		return nil, fmt.Errorf("unsupported package type %d", packageType)
	}

	now := e.now()
	ceiling := capacity.CeilingFor(packageType)

	var statuses []models.PeriodStatus
	for _, period := range capacity.PeriodsFor(packageType) {
		booked, err := e.Visits.CountForPeriod(ctx, date, period.Label)
		if err != nil {
			return nil, fmt.Errorf("failed to read occupancy for %s %s: %w", date, period.Label, err)
		}
		available := ceiling - booked
		if available < 0 {
			available = 0
		}
		statuses = append(statuses, models.PeriodStatus{
			Period:    period.Label,
			Booked:    booked,
			Available: available,
			Elapsed:   periodElapsed(now, date, period),
		})
	}
	return statuses, nil
}
