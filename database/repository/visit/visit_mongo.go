package visitRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"playvisit/models"
)

// MongoVisitRepo implements VisitRepository using MongoDB. It writes to the
// visit log and period counters, and holds a handle on the clients
// collection for the transactional decrement.
type MongoVisitRepo struct {
	visitColl   *mongo.Collection
	counterColl *mongo.Collection
	clientColl  *mongo.Collection
}

// NewMongoVisitRepo creates a new VisitRepository backed by the given database.
func NewMongoVisitRepo(db *mongo.Database) VisitRepository {
	repo := &MongoVisitRepo{
		visitColl:   db.Collection("visit_logs"),
		counterColl: db.Collection("period_counters"),
		clientColl:  db.Collection("clients"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create visit indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoVisitRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	visitIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "visitNumber", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "period", Value: 1}}},
	}
	if _, err := r.visitColl.Indexes().CreateMany(ctx, visitIndexes); err != nil {
		return fmt.Errorf("failed to create visit_logs indexes: %w", err)
	}

	counterIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}, {Key: "period", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.counterColl.Indexes().CreateOne(ctx, counterIndex); err != nil {
		return fmt.Errorf("failed to create period_counters index: %w", err)
	}
	return nil
}

// CountForPeriod returns the logged occupancy for (date, period).
func (r *MongoVisitRepo) CountForPeriod(ctx context.Context, date, period string) (int, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	count, err := r.visitColl.CountDocuments(ctx, bson.M{"date": date, "period": period})
	if err != nil {
		return 0, fmt.Errorf("failed to count visits for %s %s: %w", date, period, err)
	}
	return int(count), nil
}

// ListByClient returns a client's visits ordered by visit number.
func (r *MongoVisitRepo) ListByClient(ctx context.Context, clientID string) ([]models.VisitLogEntry, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "visitNumber", Value: 1}})
	cursor, err := r.visitColl.Find(ctx, bson.M{"clientId": clientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve visits for client %s: %w", clientID, err)
	}
	defer cursor.Close(ctx)

	var entries []models.VisitLogEntry
	for cursor.Next(ctx) {
		var e models.VisitLogEntry
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode visit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ensureCounter makes sure the (date, period) counter document exists before
// the booking transaction runs its conditional increment against it.
func (r *MongoVisitRepo) ensureCounter(ctx context.Context, date, period string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"date": date, "period": period}
	update := bson.M{"$setOnInsert": bson.M{"date": date, "period": period, "booked": 0}}
	opts := options.Update().SetUpsert(true)

	if _, err := r.counterColl.UpdateOne(ctx, filter, update, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Concurrent upsert won the race; the document exists.
			return nil
		}
		return fmt.Errorf("failed to ensure period counter: %w", err)
	}
	return nil
}
