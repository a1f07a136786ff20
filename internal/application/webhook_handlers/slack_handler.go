package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"archie-core-auth-gateway/internal/domain"

	"github.com/rs/zerolog"
)

// SlackHandler answers Slack Events API callbacks
type SlackHandler struct {
	logger zerolog.Logger
}

// NewSlackHandler creates a new Slack webhook handler
func NewSlackHandler(logger zerolog.Logger) *SlackHandler {
	return &SlackHandler{logger: logger}
}

// CanHandle returns true for the slack provider
func (h *SlackHandler) CanHandle(provider string) bool {
	return provider == "slack"
}

type slackEnvelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	TeamID    string `json:"team_id"`
	Event     struct {
		Type string `json:"type"`
	} `json:"event"`
}

// Handle echoes url_verification challenges. Other events get an empty body.
func (h *SlackHandler) Handle(ctx context.Context, config *domain.ProviderConfig, webhook *domain.WebhookContext) (any, error) {
	var envelope slackEnvelope
	if err := json.Unmarshal(webhook.RawBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse slack webhook payload: %w", err)
	}

	if envelope.Type == "url_verification" {
		return map[string]string{"challenge": envelope.Challenge}, nil
	}

	h.logger.Info().
		Str("providerConfigKey", config.ProviderConfigKey).
		Str("teamId", envelope.TeamID).
		Str("eventType", envelope.Event.Type).
		Msg("Processing slack webhook event")
	return nil, nil
}
