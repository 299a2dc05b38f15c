package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	clientRepo "playvisit/database/repository/client"
	visitRepo "playvisit/database/repository/visit"
	"playvisit/models"
	"playvisit/services/capacity"
	"playvisit/services/session"
	"playvisit/utils"
)

// DefaultLedgerEngine implements Engine on the Mongo-backed repositories.
type DefaultLedgerEngine struct {
	Clients  clientRepo.ClientRepository
	Visits   visitRepo.VisitRepository
	Sessions session.Store
	Now      func() time.Time
}

func (e *DefaultLedgerEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// AttemptBook runs the precondition chain and commits the visit. The
// repository re-verifies ordering and capacity inside the transaction, so
// the pre-checks here only decide which failure to report; correctness does
// not depend on them.
func (e *DefaultLedgerEngine) AttemptBook(ctx context.Context, clientID string, visitNumber int, date, periodLabel string) (*models.VisitLogEntry, error) {
	logger := utils.GetLogger()
	now := e.now()

	client, err := e.Clients.GetByID(ctx, clientID)
	if err != nil {
		logger.Error("AttemptBook: failed to fetch client", zap.String("clientID", clientID), zap.Error(err))
		return nil, fmt.Errorf("booking failed, please try again")
	}
	if client == nil || !client.Active(now) {
		return nil, ErrClientInactive
	}

	if expected := client.NextVisit(); visitNumber != expected {
		return nil, &OutOfOrderVisitError{Expected: expected}
	}

	period, ok := capacity.FindPeriod(client.PackageType, periodLabel)
	if !ok {
		return nil, ErrUnknownPeriod
	}
	if periodElapsed(now, date, period) {
		return nil, ErrPeriodElapsed
	}

	entry := &models.VisitLogEntry{
		ID:          uuid.New().String(),
		ClientID:    client.ID,
		VisitNumber: visitNumber,
		Date:        date,
		Period:      periodLabel,
		Children:    client.Children,
	}

	ceiling := capacity.CeilingFor(client.PackageType)
	if err := e.Visits.BookVisit(ctx, entry, client.VisitsRemaining, ceiling); err != nil {
		switch {
		case errors.Is(err, visitRepo.ErrCapacityFull):
			return nil, ErrPeriodFull
		case errors.Is(err, visitRepo.ErrStaleClient):
			// The client changed under us between the read and the
			// transaction. Re-read to report the current state.
			return nil, e.classifyStaleClient(ctx, clientID, now)
		default:
			logger.Error("AttemptBook: transaction failed",
				zap.String("clientID", clientID),
				zap.String("date", date),
				zap.String("period", periodLabel),
				zap.Error(err))
			return nil, fmt.Errorf("booking failed, please try again")
		}
	}

	remaining := client.VisitsRemaining - 1
	logger.Info("visit booked",
		zap.String("clientID", client.ID),
		zap.Int("visitNumber", visitNumber),
		zap.String("date", date),
		zap.String("period", periodLabel),
		zap.Int("remaining", remaining))

	if remaining == 0 {
		// Package exhausted: the client document was removed in the
		// transaction; drop the conversational session as well.
		if err := e.Sessions.DeleteByClient(ctx, client.ID); err != nil {
			logger.Warn("AttemptBook: failed to drop exhausted client session",
				zap.String("clientID", client.ID), zap.Error(err))
		}
	}
	return entry, nil
}

func (e *DefaultLedgerEngine) classifyStaleClient(ctx context.Context, clientID string, now time.Time) error {
	client, err := e.Clients.GetByID(ctx, clientID)
	if err != nil || client == nil || !client.Active(now) {
		return ErrClientInactive
	}
	return &OutOfOrderVisitError{Expected: client.NextVisit()}
}

// periodElapsed reports whether the period's start time has passed, which
// only applies when booking for today.
func periodElapsed(now time.Time, date string, period capacity.Period) bool {
	if now.Format(models.VisitDateLayout) != date {
		return false
	}
	minuteOfDay := now.Hour()*60 + now.Minute()
	return minuteOfDay > period.Start
}
