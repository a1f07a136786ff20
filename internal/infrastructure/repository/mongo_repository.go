package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	environmentsCollection    = "environments"
	providerConfigsCollection = "provider_configs"
	templatesCollection       = "provider_templates"
	connectionsCollection     = "connections"
	activityLogsCollection    = "activity_logs"
)

// EnsureIndexes creates the indexes the repositories rely on. The unique
// connection index is what makes concurrent upserts of the same connection
// converge on a single document.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		connectionsCollection: {
			{
				Keys: bson.D{
					{Key: "connectionId", Value: 1},
					{Key: "providerConfigKey", Value: 1},
					{Key: "environmentId", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
		providerConfigsCollection: {
			{
				Keys: bson.D{
					{Key: "providerConfigKey", Value: 1},
					{Key: "environmentId", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
		templatesCollection: {
			{Keys: bson.D{{Key: "provider", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		environmentsCollection: {
			{Keys: bson.D{{Key: "uuid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "secretKey", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "publicKey", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		activityLogsCollection: {
			{Keys: bson.D{{Key: "environmentId", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
