package ports

import (
	"context"

	"archie-core-auth-gateway/internal/domain"
)

// SignatureVerifier checks the optional request signature of an environment
type SignatureVerifier interface {
	IsEnabled(ctx context.Context, environmentID string) (bool, error)
	Verify(ctx context.Context, signature, environmentID, providerConfigKey, connectionID string) (bool, error)
}

// FeatureFlags evaluates account-scoped flags
type FeatureFlags interface {
	IsEnabled(ctx context.Context, flag string, distinctID string, defaultValue bool) (bool, error)
}

// SyncClient requests sync initiation for a freshly established connection
type SyncClient interface {
	Initiate(ctx context.Context, connectionID string) error
}

// ErrorReporter forwards failures to an external aggregator
type ErrorReporter interface {
	Report(ctx context.Context, err error, accountID string, metadata map[string]any)
}

// Analytics emits product events. Delivery is best effort.
type Analytics interface {
	Track(ctx context.Context, event string, accountID string, properties map[string]any) error
}

// EncryptionService defines the interface for credential encryption at rest
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// WebhookHandler processes callbacks for the providers it claims
type WebhookHandler interface {
	CanHandle(provider string) bool
	Handle(ctx context.Context, config *domain.ProviderConfig, webhook *domain.WebhookContext) (any, error)
}

// WebhookRouter forwards a verified-to-exist webhook to its provider handler
type WebhookRouter interface {
	Route(ctx context.Context, webhook *domain.WebhookContext) (any, error)
}

// Metrics records gateway outcomes
type Metrics interface {
	AuthAttempt(mode domain.AuthMode, outcome string)
	WebhookReceived(outcome string)
	TaskFailed(name string)
}
