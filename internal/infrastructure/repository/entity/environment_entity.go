package entity

import (
	"time"

	"archie-core-auth-gateway/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoEnvironmentDoc represents an environment in MongoDB
type MongoEnvironmentDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UUID        string             `bson:"uuid"`
	AccountID   string             `bson:"accountId"`
	AccountUUID string             `bson:"accountUuid"`
	Name        string             `bson:"name"`
	SecretKey   string             `bson:"secretKey"`
	PublicKey   string             `bson:"publicKey"`
	HMACEnabled bool               `bson:"hmacEnabled"`
	HMACKey     string             `bson:"hmacKey,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoEnvironmentDoc) ToDomain() *domain.Environment {
	return &domain.Environment{
		ID:          d.ID.Hex(),
		UUID:        d.UUID,
		AccountID:   d.AccountID,
		AccountUUID: d.AccountUUID,
		Name:        d.Name,
		SecretKey:   d.SecretKey,
		PublicKey:   d.PublicKey,
		HMACEnabled: d.HMACEnabled,
		HMACKey:     d.HMACKey,
	}
}
