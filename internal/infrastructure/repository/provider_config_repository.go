package repository

import (
	"context"
	"fmt"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/infrastructure/repository/entity"
	"archie-core-auth-gateway/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProviderConfigRepository implements ProviderConfigRepository using MongoDB.
// Configs live in provider_configs, auth templates in provider_templates.
type MongoProviderConfigRepository struct {
	configs   *mongo.Collection
	templates *mongo.Collection
}

// NewMongoProviderConfigRepository creates a new MongoDB provider config repository
func NewMongoProviderConfigRepository(db *mongo.Database) ports.ProviderConfigRepository {
	return &MongoProviderConfigRepository{
		configs:   db.Collection(providerConfigsCollection),
		templates: db.Collection(templatesCollection),
	}
}

// GetProviderConfig retrieves a config by key within an environment
func (r *MongoProviderConfigRepository) GetProviderConfig(ctx context.Context, providerConfigKey string, environmentID string) (*domain.ProviderConfig, error) {
	var doc entity.MongoProviderConfigDoc
	filter := bson.M{
		"providerConfigKey": providerConfigKey,
		"environmentId":     environmentID,
	}

	err := r.configs.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider config: %w", err)
	}

	return doc.ToDomain(), nil
}

// GetTemplate retrieves the auth template of a provider
func (r *MongoProviderConfigRepository) GetTemplate(ctx context.Context, provider string) (*domain.AuthTemplate, error) {
	var doc entity.MongoTemplateDoc
	err := r.templates.FindOne(ctx, bson.M{"provider": provider}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return doc.ToDomain(), nil
}
