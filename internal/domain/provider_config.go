package domain

// ProviderConfig is an environment-scoped registration of a third-party integration.
// Lookups are keyed by (ProviderConfigKey, EnvironmentID).
type ProviderConfig struct {
	ID                string `json:"id" bson:"_id"`
	Provider          string `json:"provider" bson:"provider"`                    // Template name, e.g. "shopify"
	ProviderConfigKey string `json:"provider_config_key" bson:"providerConfigKey"` // Caller-facing key, unique per environment
	EnvironmentID     string `json:"environment_id" bson:"environmentId"`
	WebhookSecret     string `json:"-" bson:"webhookSecret,omitempty"` // Used by provider webhook handlers
}
