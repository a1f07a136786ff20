package domain

import "time"

// Connection binds a caller-supplied connection ID to a provider config.
// (ConnectionID, ProviderConfigKey, EnvironmentID) identifies at most one Connection.
type Connection struct {
	ID                string            `json:"id"`
	ConnectionID      string            `json:"connection_id"` // Caller-supplied, not unique across providers
	ProviderConfigKey string            `json:"provider_config_key"`
	Provider          string            `json:"provider"`
	Credential        Credential        `json:"-"`
	ConnectionConfig  map[string]string `json:"connection_config"`
	EnvironmentID     string            `json:"environment_id"`
	AccountID         string            `json:"account_id"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// UpsertConnectionInput is everything needed to create or refresh a Connection
type UpsertConnectionInput struct {
	ConnectionID      string
	ProviderConfigKey string
	Provider          string
	Credential        Credential
	ConnectionConfig  map[string]string
	EnvironmentID     string
	AccountID         string
}
