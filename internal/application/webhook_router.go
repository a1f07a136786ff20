package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// ExternalWebhooksFlag gates webhook forwarding per account
const ExternalWebhooksFlag = "external-webhooks"

// WebhookResponse is what the caller should send back to the provider
type WebhookResponse struct {
	StatusCode int
	Payload    any
}

// WebhookRouter is the ingress for provider callbacks
type WebhookRouter struct {
	environments ports.EnvironmentRepository
	flags        ports.FeatureFlags
	dispatcher   ports.WebhookRouter
	metrics      ports.Metrics
	logger       zerolog.Logger
	stageTimeout time.Duration
}

// NewWebhookRouter creates a new webhook router
func NewWebhookRouter(
	environments ports.EnvironmentRepository,
	flags ports.FeatureFlags,
	dispatcher ports.WebhookRouter,
	metrics ports.Metrics,
	logger zerolog.Logger,
	stageTimeout time.Duration,
) *WebhookRouter {
	if stageTimeout <= 0 {
		stageTimeout = defaultStageTimeout
	}
	return &WebhookRouter{
		environments: environments,
		flags:        flags,
		dispatcher:   dispatcher,
		metrics:      metrics,
		logger:       logger,
		stageTimeout: stageTimeout,
	}
}

// Receive resolves the account, checks the feature flag and dispatches.
// Malformed path parameters fail with missing_webhook_params. Collaborator
// errors are returned for the general error handler.
func (r *WebhookRouter) Receive(ctx context.Context, environmentUUID, providerConfigKey string, headers http.Header, body []byte) (*WebhookResponse, error) {
	if environmentUUID == "" || providerConfigKey == "" {
		r.observe("bad_request")
		return nil, domain.NewAuthError(domain.CodeMissingWebhookParams, nil)
	}

	accountUUID, err := r.accountUUID(ctx, environmentUUID)
	if err != nil {
		r.observe("error")
		return nil, err
	}
	if accountUUID == "" {
		r.observe("unknown_environment")
		return &WebhookResponse{StatusCode: http.StatusNotFound}, nil
	}

	enabled, err := r.flagEnabled(ctx, accountUUID)
	if err != nil {
		r.observe("error")
		return nil, err
	}
	if !enabled {
		r.observe("disabled")
		return &WebhookResponse{StatusCode: http.StatusNotFound}, nil
	}

	routeCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
	defer cancel()
	payload, err := r.dispatcher.Route(routeCtx, &domain.WebhookContext{
		EnvironmentUUID:   environmentUUID,
		ProviderConfigKey: providerConfigKey,
		Headers:           headers,
		RawBody:           body,
	})
	if err != nil {
		r.observe("error")
		return nil, err
	}

	r.observe("dispatched")
	r.logger.Debug().
		Str("environmentUuid", environmentUUID).
		Str("providerConfigKey", providerConfigKey).
		Bool("hasPayload", payload != nil).
		Msg("Webhook dispatched")

	return &WebhookResponse{StatusCode: http.StatusOK, Payload: payload}, nil
}

func (r *WebhookRouter) accountUUID(ctx context.Context, environmentUUID string) (string, error) {
	stageCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
	defer cancel()

	environment, err := r.environments.GetByUUID(stageCtx, environmentUUID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve environment: %w", err)
	}
	if environment == nil {
		return "", nil
	}
	return environment.AccountUUID, nil
}

func (r *WebhookRouter) flagEnabled(ctx context.Context, accountUUID string) (bool, error) {
	stageCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
	defer cancel()

	enabled, err := r.flags.IsEnabled(stageCtx, ExternalWebhooksFlag, accountUUID, true)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate %s flag: %w", ExternalWebhooksFlag, err)
	}
	return enabled, nil
}

func (r *WebhookRouter) observe(outcome string) {
	if r.metrics != nil {
		r.metrics.WebhookReceived(outcome)
	}
}
