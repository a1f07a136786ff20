package application

import (
	"context"
	"fmt"
	"sync"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// WebhookDispatcher routes provider callbacks to the handler registered for the
// provider behind a provider config key
type WebhookDispatcher struct {
	environments ports.EnvironmentRepository
	configs      ports.ProviderConfigRepository
	logger       zerolog.Logger

	mu       sync.RWMutex
	handlers []ports.WebhookHandler
}

// NewWebhookDispatcher creates a new webhook dispatcher
func NewWebhookDispatcher(
	environments ports.EnvironmentRepository,
	configs ports.ProviderConfigRepository,
	logger zerolog.Logger,
) *WebhookDispatcher {
	return &WebhookDispatcher{
		environments: environments,
		configs:      configs,
		logger:       logger,
	}
}

// RegisterHandler adds a handler. The first handler claiming a provider wins.
func (d *WebhookDispatcher) RegisterHandler(handler ports.WebhookHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
}

// Route forwards the webhook and returns the handler's response payload.
// Unknown environments, configs and providers yield a nil payload.
func (d *WebhookDispatcher) Route(ctx context.Context, webhook *domain.WebhookContext) (any, error) {
	environment, err := d.environments.GetByUUID(ctx, webhook.EnvironmentUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment: %w", err)
	}
	if environment == nil {
		d.logger.Warn().Str("environmentUuid", webhook.EnvironmentUUID).Msg("Webhook for unknown environment")
		return nil, nil
	}

	config, err := d.configs.GetProviderConfig(ctx, webhook.ProviderConfigKey, environment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider config: %w", err)
	}
	if config == nil {
		d.logger.Warn().
			Str("environmentId", environment.ID).
			Str("providerConfigKey", webhook.ProviderConfigKey).
			Msg("Webhook for unknown provider config")
		return nil, nil
	}

	handler := d.handlerFor(config.Provider)
	if handler == nil {
		d.logger.Debug().
			Str("provider", config.Provider).
			Str("providerConfigKey", webhook.ProviderConfigKey).
			Msg("No webhook handler for provider")
		return nil, nil
	}

	payload, err := handler.Handle(ctx, config, webhook)
	if err != nil {
		return nil, fmt.Errorf("webhook handler for %s failed: %w", config.Provider, err)
	}
	return payload, nil
}

func (d *WebhookDispatcher) handlerFor(provider string) ports.WebhookHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, handler := range d.handlers {
		if handler.CanHandle(provider) {
			return handler
		}
	}
	return nil
}
