package clientRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"playvisit/models"
)

// MongoClientRepo implements ClientRepository using MongoDB.
type MongoClientRepo struct {
	coll *mongo.Collection
}

// NewMongoClientRepo creates a new ClientRepository backed by the given database.
func NewMongoClientRepo(db *mongo.Database) ClientRepository {
	repo := &MongoClientRepo{coll: db.Collection("clients")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create client indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// ensureIndexes creates the unique indexes backing credential allocation.
func (r *MongoClientRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "secret", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a client by its unique id.
func (r *MongoClientRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var client models.Client
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&client); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch client with id %s: %w", id, err)
	}
	return &client, nil
}

// GetByCredentials retrieves a client matching both id and secret.
func (r *MongoClientRepo) GetByCredentials(ctx context.Context, id, secret string) (*models.Client, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var client models.Client
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "secret": secret}).Decode(&client); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch client with id %s: %w", id, err)
	}
	return &client, nil
}

// GetAll retrieves all clients ordered by full name.
func (r *MongoClientRepo) GetAll(ctx context.Context) ([]models.Client, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve clients: %w", err)
	}
	defer cursor.Close(ctx)

	var clients []models.Client
	for cursor.Next(ctx) {
		var c models.Client
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// Create inserts a new client document.
func (r *MongoClientRepo) Create(ctx context.Context, client *models.Client) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, client); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// Delete removes a client document by its id.
func (r *MongoClientRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete client with id %s: %w", id, err)
	}
	return result.DeletedCount > 0, nil
}
