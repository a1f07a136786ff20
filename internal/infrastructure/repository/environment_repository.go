package repository

import (
	"context"
	"fmt"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/infrastructure/repository/entity"
	"archie-core-auth-gateway/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoEnvironmentRepository implements EnvironmentRepository using MongoDB
type MongoEnvironmentRepository struct {
	collection *mongo.Collection
}

// NewMongoEnvironmentRepository creates a new MongoDB environment repository
func NewMongoEnvironmentRepository(db *mongo.Database) ports.EnvironmentRepository {
	return &MongoEnvironmentRepository{
		collection: db.Collection(environmentsCollection),
	}
}

// GetByID retrieves an environment by its internal ID
func (r *MongoEnvironmentRepository) GetByID(ctx context.Context, environmentID string) (*domain.Environment, error) {
	objID, err := primitive.ObjectIDFromHex(environmentID)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetByUUID retrieves an environment by its public UUID
func (r *MongoEnvironmentRepository) GetByUUID(ctx context.Context, environmentUUID string) (*domain.Environment, error) {
	return r.findOne(ctx, bson.M{"uuid": environmentUUID})
}

// GetBySecretKey retrieves the environment owning a secret key
func (r *MongoEnvironmentRepository) GetBySecretKey(ctx context.Context, secretKey string) (*domain.Environment, error) {
	return r.findOne(ctx, bson.M{"secretKey": secretKey})
}

// GetByPublicKey retrieves the environment owning a public key
func (r *MongoEnvironmentRepository) GetByPublicKey(ctx context.Context, publicKey string) (*domain.Environment, error) {
	return r.findOne(ctx, bson.M{"publicKey": publicKey})
}

func (r *MongoEnvironmentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Environment, error) {
	var doc entity.MongoEnvironmentDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get environment: %w", err)
	}

	return doc.ToDomain(), nil
}
