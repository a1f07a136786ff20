package ports

import (
	"context"

	"archie-core-auth-gateway/internal/domain"
)

// EnvironmentRepository defines the interface for account and environment identity
type EnvironmentRepository interface {
	// GetByID retrieves an environment by its internal ID
	GetByID(ctx context.Context, environmentID string) (*domain.Environment, error)

	// GetByUUID retrieves an environment by its public UUID
	GetByUUID(ctx context.Context, environmentUUID string) (*domain.Environment, error)

	// GetBySecretKey retrieves the environment a secret key belongs to
	GetBySecretKey(ctx context.Context, secretKey string) (*domain.Environment, error)

	// GetByPublicKey retrieves the environment a public key belongs to
	GetByPublicKey(ctx context.Context, publicKey string) (*domain.Environment, error)
}
