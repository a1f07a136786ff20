package entity

import (
	"fmt"
	"time"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/ports"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoConnectionDoc represents a connection in MongoDB
type MongoConnectionDoc struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty"`
	ConnectionID      string              `bson:"connectionId"`
	ProviderConfigKey string              `bson:"providerConfigKey"`
	Provider          string              `bson:"provider"`
	Credentials       MongoCredentialsDoc `bson:"credentials"`
	ConnectionConfig  map[string]string   `bson:"connectionConfig"`
	EnvironmentID     string              `bson:"environmentId"`
	AccountID         string              `bson:"accountId"`
	CreatedAt         time.Time           `bson:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt"`
}

// MongoCredentialsDoc stores the encrypted secret parts of a credential.
// Type holds the auth mode and selects which fields are set.
type MongoCredentialsDoc struct {
	Type     string `bson:"type"`
	APIKey   string `bson:"apiKey,omitempty"`
	Username string `bson:"username,omitempty"`
	Password string `bson:"password,omitempty"`
}

// MongoCredentialsDocFromDomain encrypts a credential for storage
func MongoCredentialsDocFromDomain(credential domain.Credential, enc ports.EncryptionService) (MongoCredentialsDoc, error) {
	switch c := credential.(type) {
	case domain.APIKeyCredential:
		apiKey, err := enc.Encrypt(c.APIKey)
		if err != nil {
			return MongoCredentialsDoc{}, fmt.Errorf("failed to encrypt api key: %w", err)
		}
		return MongoCredentialsDoc{Type: string(domain.AuthModeAPIKey), APIKey: apiKey}, nil
	case domain.BasicCredential:
		doc := MongoCredentialsDoc{Type: string(domain.AuthModeBasic), Username: c.Username}
		if c.Password != "" {
			password, err := enc.Encrypt(c.Password)
			if err != nil {
				return MongoCredentialsDoc{}, fmt.Errorf("failed to encrypt password: %w", err)
			}
			doc.Password = password
		}
		return doc, nil
	default:
		return MongoCredentialsDoc{}, fmt.Errorf("unsupported credential type %T", credential)
	}
}

// ToDomain decrypts the stored credential
func (d MongoCredentialsDoc) ToDomain(enc ports.EncryptionService) (domain.Credential, error) {
	switch domain.AuthMode(d.Type) {
	case domain.AuthModeAPIKey:
		apiKey, err := enc.Decrypt(d.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt api key: %w", err)
		}
		return domain.APIKeyCredential{APIKey: apiKey}, nil
	case domain.AuthModeBasic:
		cred := domain.BasicCredential{Username: d.Username}
		if d.Password != "" {
			password, err := enc.Decrypt(d.Password)
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt password: %w", err)
			}
			cred.Password = password
		}
		return cred, nil
	default:
		return nil, fmt.Errorf("unknown credential type %q", d.Type)
	}
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoConnectionDoc) ToDomain(enc ports.EncryptionService) (*domain.Connection, error) {
	credential, err := d.Credentials.ToDomain(enc)
	if err != nil {
		return nil, err
	}

	config := d.ConnectionConfig
	if config == nil {
		config = map[string]string{}
	}

	return &domain.Connection{
		ID:                d.ID.Hex(),
		ConnectionID:      d.ConnectionID,
		ProviderConfigKey: d.ProviderConfigKey,
		Provider:          d.Provider,
		Credential:        credential,
		ConnectionConfig:  config,
		EnvironmentID:     d.EnvironmentID,
		AccountID:         d.AccountID,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}
