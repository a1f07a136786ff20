package repository

import (
	"context"
	"fmt"
	"time"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/infrastructure/repository/entity"
	"archie-core-auth-gateway/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConnectionRepository implements ConnectionRepository using MongoDB.
// Credentials are encrypted before they are written.
type MongoConnectionRepository struct {
	collection *mongo.Collection
	encryption ports.EncryptionService
}

// NewMongoConnectionRepository creates a new MongoDB connection repository
func NewMongoConnectionRepository(db *mongo.Database, encryption ports.EncryptionService) ports.ConnectionRepository {
	return &MongoConnectionRepository{
		collection: db.Collection(connectionsCollection),
		encryption: encryption,
	}
}

func connectionFilter(connectionID, providerConfigKey, environmentID string) bson.M {
	return bson.M{
		"connectionId":      connectionID,
		"providerConfigKey": providerConfigKey,
		"environmentId":     environmentID,
	}
}

// UpsertAPIConnection creates or overwrites a connection in a single round trip
func (r *MongoConnectionRepository) UpsertAPIConnection(ctx context.Context, input domain.UpsertConnectionInput) (*domain.Connection, error) {
	credentials, err := entity.MongoCredentialsDocFromDomain(input.Credential, r.encryption)
	if err != nil {
		return nil, err
	}

	connectionConfig := input.ConnectionConfig
	if connectionConfig == nil {
		connectionConfig = map[string]string{}
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"provider":         input.Provider,
			"credentials":      credentials,
			"connectionConfig": connectionConfig,
			"accountId":        input.AccountID,
			"updatedAt":        now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	filter := connectionFilter(input.ConnectionID, input.ProviderConfigKey, input.EnvironmentID)

	var doc entity.MongoConnectionDoc
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert inserted first; this attempt now matches it
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert connection: %w", err)
	}

	return doc.ToDomain(r.encryption)
}
