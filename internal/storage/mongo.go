package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/benmeehan/gps-ingestor/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepository stores records as documents in a single MongoDB collection.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoRepository creates a client for uri. The driver connects lazily,
// so an unreachable server only shows up on Ping or Insert.
func NewMongoRepository(ctx context.Context, uri, database, collection string) (*MongoRepository, error) {
	if uri == "" {
		return nil, errors.New("mongodb connection string is empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	return &MongoRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Insert stores the record as a new document.
func (r *MongoRepository) Insert(ctx context.Context, record *models.LocationRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
		}
		return fmt.Errorf("failed to insert location into mongodb: %w", err)
	}
	return nil
}

// Ping checks that a primary is reachable.
func (r *MongoRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
