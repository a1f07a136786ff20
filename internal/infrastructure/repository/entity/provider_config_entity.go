package entity

import (
	"archie-core-auth-gateway/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoProviderConfigDoc represents a provider config in MongoDB
type MongoProviderConfigDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Provider          string             `bson:"provider"`
	ProviderConfigKey string             `bson:"providerConfigKey"`
	EnvironmentID     string             `bson:"environmentId"`
	WebhookSecret     string             `bson:"webhookSecret,omitempty"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoProviderConfigDoc) ToDomain() *domain.ProviderConfig {
	return &domain.ProviderConfig{
		ID:                d.ID.Hex(),
		Provider:          d.Provider,
		ProviderConfigKey: d.ProviderConfigKey,
		EnvironmentID:     d.EnvironmentID,
		WebhookSecret:     d.WebhookSecret,
	}
}

// MongoTemplateDoc represents a provider auth template in MongoDB
type MongoTemplateDoc struct {
	Provider string `bson:"provider"`
	AuthMode string `bson:"authMode"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoTemplateDoc) ToDomain() *domain.AuthTemplate {
	return &domain.AuthTemplate{
		Provider: d.Provider,
		AuthMode: domain.AuthMode(d.AuthMode),
	}
}
