package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	visitRepo "playvisit/database/repository/visit"
	"playvisit/models"
	"playvisit/services/capacity"
	"playvisit/utils"
)

// manualClientID marks log entries that consume capacity without a client
// identity (walk-ins recorded by the admin).
const manualClientID = "manual"

// ManualBook records an admin-entered booking. It shares the elapsed and
// capacity gates with AttemptBook but skips identity and ordering; the
// entry carries the acting admin for the audit trail and never touches any
// client's remaining count.
func (e *DefaultLedgerEngine) ManualBook(ctx context.Context, actor, date, periodLabel string, packageType, children int) (*models.VisitLogEntry, error) {
	if !capacity.Known(packageType) {
		return nil, fmt.Errorf("unsupported package type %d", packageType)
	}
	period, ok := capacity.FindPeriod(packageType, periodLabel)
	if !ok {
		return nil, ErrUnknownPeriod
	}
	if periodElapsed(e.now(), date, period) {
		return nil, ErrPeriodElapsed
	}

	entry := &models.VisitLogEntry{
		ID:       uuid.New().String(),
		ClientID: manualClientID,
		Date:     date,
		Period:   periodLabel,
		Children: children,
		Manual:   true,
		BookedBy: actor,
	}

	if err := e.Visits.BookManual(ctx, entry, capacity.CeilingFor(packageType)); err != nil {
		if errors.Is(err, visitRepo.ErrCapacityFull) {
			return nil, ErrPeriodFull
		}
		utils.GetLogger().Error("ManualBook: transaction failed",
			zap.String("actor", actor),
			zap.String("date", date),
			zap.String("period", periodLabel),
			zap.Error(err))
		return nil, fmt.Errorf("manual booking failed, please try again")
	}

	utils.GetLogger().Info("manual booking recorded",
		zap.String("actor", actor),
		zap.String("date", date),
		zap.String("period", periodLabel),
		zap.Int("children", children))
	return entry, nil
}
