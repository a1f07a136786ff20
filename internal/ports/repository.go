package ports

import (
	"context"

	"archie-core-auth-gateway/internal/domain"
)

// ActivityLogRepository defines the interface for audit trail persistence.
// Entries are never deleted through this interface.
type ActivityLogRepository interface {
	// Create stores a new entry and returns its ID
	Create(ctx context.Context, entry *domain.ActivityLogEntry) (string, error)

	// AppendMessage adds a message to an existing entry
	AppendMessage(ctx context.Context, logID string, message domain.ActivityLogMessage) error

	// UpdateProvider records the provider resolved for the entry
	UpdateProvider(ctx context.Context, logID string, provider string) error

	// UpdateSuccess sets the terminal success flag and the end time
	UpdateSuccess(ctx context.Context, logID string, success bool) error
}

// ProviderConfigRepository defines the interface for provider config and template lookup
type ProviderConfigRepository interface {
	// GetProviderConfig returns nil, nil when no config matches
	GetProviderConfig(ctx context.Context, providerConfigKey string, environmentID string) (*domain.ProviderConfig, error)

	// GetTemplate returns nil, nil when the provider has no template
	GetTemplate(ctx context.Context, provider string) (*domain.AuthTemplate, error)
}

// ConnectionRepository defines the interface for connection persistence
type ConnectionRepository interface {
	// UpsertAPIConnection creates or overwrites the connection identified by
	// (ConnectionID, ProviderConfigKey, EnvironmentID). It may return nil, nil
	// when the store declines to produce a connection.
	UpsertAPIConnection(ctx context.Context, input domain.UpsertConnectionInput) (*domain.Connection, error)
}
