package visitRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"playvisit/models"
)

const maxTxnAttempts = 3

// BookVisit commits one client visit as a single transaction. The three
// writes share the transaction so that no precondition failure can leave a
// partial mutation behind:
//
//  1. conditional decrement on the client, guarded by expectedRemaining —
//     a concurrent booking for the same client makes this miss (ErrStaleClient);
//  2. conditional increment on the (date, period) counter, guarded by the
//     ceiling — the counter document is the serialization point for
//     concurrent bookings into the same period (ErrCapacityFull);
//  3. append of the visit log entry.
//
// A client whose remaining count reaches zero is removed in the same
// transaction. Write conflicts on the counter abort with a transient label
// and are retried here.
func (r *MongoVisitRepo) BookVisit(ctx context.Context, entry *models.VisitLogEntry, expectedRemaining, ceiling int) error {
	if err := r.ensureCounter(ctx, entry.Date, entry.Period); err != nil {
		return err
	}

	txnFn := func(sc mongo.SessionContext) error {
		now := time.Now()

		clientFilter := bson.M{"id": entry.ClientID, "visitsRemaining": expectedRemaining}
		clientUpdate := bson.M{
			"$inc": bson.M{"visitsRemaining": -1},
			"$set": bson.M{"updatedAt": now},
		}
		res, err := r.clientColl.UpdateOne(sc, clientFilter, clientUpdate)
		if err != nil {
			return fmt.Errorf("decrement remaining visits failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrStaleClient
		}
		if expectedRemaining == 1 {
			if _, err := r.clientColl.DeleteOne(sc, bson.M{"id": entry.ClientID}); err != nil {
				return fmt.Errorf("remove exhausted client failed: %w", err)
			}
		}

		if err := r.incrementCounter(sc, entry.Date, entry.Period, ceiling); err != nil {
			return err
		}

		entry.CreatedAt = now
		if _, err := r.visitColl.InsertOne(sc, entry); err != nil {
			return fmt.Errorf("insert visit entry failed: %w", err)
		}
		return nil
	}

	return r.runTransaction(ctx, txnFn)
}

// BookManual commits an audited admin booking: capacity gate plus log
// append, no client mutation.
func (r *MongoVisitRepo) BookManual(ctx context.Context, entry *models.VisitLogEntry, ceiling int) error {
	if err := r.ensureCounter(ctx, entry.Date, entry.Period); err != nil {
		return err
	}

	txnFn := func(sc mongo.SessionContext) error {
		if err := r.incrementCounter(sc, entry.Date, entry.Period, ceiling); err != nil {
			return err
		}
		entry.CreatedAt = time.Now()
		if _, err := r.visitColl.InsertOne(sc, entry); err != nil {
			return fmt.Errorf("insert manual visit entry failed: %w", err)
		}
		return nil
	}

	return r.runTransaction(ctx, txnFn)
}

// DeleteByClient removes all visit rows for a client and releases the
// capacity they held. The row deletion and the counter decrements share one
// transaction: occupancy is gated on the counters but reported from the log,
// and a purge that moved only one of the two would drive them apart for the
// rest of the day.
func (r *MongoVisitRepo) DeleteByClient(ctx context.Context, clientID string) (int64, error) {
	var removed int64

	txnFn := func(sc mongo.SessionContext) error {
		removed = 0

		cursor, err := r.visitColl.Find(sc, bson.M{"clientId": clientID})
		if err != nil {
			return fmt.Errorf("list visits for client %s failed: %w", clientID, err)
		}
		type slot struct{ date, period string }
		held := make(map[slot]int)
		for cursor.Next(sc) {
			var e models.VisitLogEntry
			if err := cursor.Decode(&e); err != nil {
				cursor.Close(sc)
				return fmt.Errorf("decode visit entry failed: %w", err)
			}
			held[slot{e.Date, e.Period}]++
		}
		if err := cursor.Err(); err != nil {
			cursor.Close(sc)
			return fmt.Errorf("list visits for client %s failed: %w", clientID, err)
		}
		cursor.Close(sc)

		res, err := r.visitColl.DeleteMany(sc, bson.M{"clientId": clientID})
		if err != nil {
			return fmt.Errorf("delete visits for client %s failed: %w", clientID, err)
		}
		removed = res.DeletedCount

		for s, n := range held {
			if err := r.releaseCounter(sc, s.date, s.period, n); err != nil {
				return err
			}
		}
		return nil
	}

	if err := r.runTransaction(ctx, txnFn); err != nil {
		return 0, err
	}
	return removed, nil
}

// incrementCounter is the capacity gate: it only matches while the counter
// is below the ceiling.
func (r *MongoVisitRepo) incrementCounter(sc mongo.SessionContext, date, period string, ceiling int) error {
	filter := bson.M{"date": date, "period": period, "booked": bson.M{"$lt": ceiling}}
	update := bson.M{"$inc": bson.M{"booked": 1}}

	res, err := r.counterColl.UpdateOne(sc, filter, update)
	if err != nil {
		return fmt.Errorf("increment period counter failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCapacityFull
	}
	return nil
}

// releaseCounter lowers the (date, period) counter by n, clamping at zero
// for counters that predate the clamp or were reset by hand.
func (r *MongoVisitRepo) releaseCounter(sc mongo.SessionContext, date, period string, n int) error {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"booked": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$booked", n}}}},
		}}},
	}
	if _, err := r.counterColl.UpdateOne(sc, bson.M{"date": date, "period": period}, update); err != nil {
		return fmt.Errorf("release period counter failed: %w", err)
	}
	return nil
}

func (r *MongoVisitRepo) runTransaction(ctx context.Context, txnFn func(mongo.SessionContext) error) error {
	client := r.visitColl.Database().Client()

	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err = r.runOnce(ctx, client, txnFn)
		if err == nil || !isTransientTxnError(err) {
			return err
		}
	}
	return fmt.Errorf("booking transaction failed after %d attempts: %w", maxTxnAttempts, err)
}

func (r *MongoVisitRepo) runOnce(ctx context.Context, client *mongo.Client, txnFn func(mongo.SessionContext) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

func isTransientTxnError(err error) bool {
	if errors.Is(err, ErrCapacityFull) || errors.Is(err, ErrStaleClient) {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel("TransientTransactionError")
	}
	return false
}
