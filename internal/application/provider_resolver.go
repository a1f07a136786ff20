package application

import (
	"context"
	"fmt"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/ports"
)

// ProviderResolver loads provider configs and their auth templates
type ProviderResolver struct {
	configs ports.ProviderConfigRepository
}

// NewProviderResolver creates a new provider resolver
func NewProviderResolver(configs ports.ProviderConfigRepository) *ProviderResolver {
	return &ProviderResolver{configs: configs}
}

// Resolve returns the config for (providerConfigKey, environmentID) or an
// unknown_provider_config error
func (r *ProviderResolver) Resolve(ctx context.Context, providerConfigKey string, environmentID string) (*domain.ProviderConfig, error) {
	config, err := r.configs.GetProviderConfig(ctx, providerConfigKey, environmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider config: %w", err)
	}
	if config == nil {
		return nil, domain.NewAuthError(domain.CodeUnknownProviderConfig, map[string]any{
			"provider_config_key": providerConfigKey,
		})
	}
	return config, nil
}

// Template returns the auth template of a provider, or nil if there is none
func (r *ProviderResolver) Template(ctx context.Context, provider string) (*domain.AuthTemplate, error) {
	template, err := r.configs.GetTemplate(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

// ResolveFor resolves the config and rejects it with invalid_auth_mode unless
// its template supports mode
func (r *ProviderResolver) ResolveFor(ctx context.Context, providerConfigKey, environmentID string, mode domain.AuthMode) (*domain.ProviderConfig, error) {
	config, err := r.Resolve(ctx, providerConfigKey, environmentID)
	if err != nil {
		return nil, err
	}

	template, err := r.Template(ctx, config.Provider)
	if err != nil {
		return nil, err
	}
	if !template.Supports(mode) {
		return config, domain.NewAuthError(domain.CodeInvalidAuthMode, map[string]any{
			"provider":  config.Provider,
			"auth_mode": string(mode),
		})
	}
	return config, nil
}
