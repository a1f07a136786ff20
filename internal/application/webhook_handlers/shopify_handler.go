package webhook_handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"

	"archie-core-auth-gateway/internal/domain"

	"github.com/rs/zerolog"
)

const (
	shopifyTopicHeader  = "X-Shopify-Topic"
	shopifyDomainHeader = "X-Shopify-Shop-Domain"
	shopifyHMACHeader   = "X-Shopify-Hmac-Sha256"
)

// ShopifyEvent is a Shopify callback after topic and shop extraction
type ShopifyEvent struct {
	Topic             string
	Shop              string
	ProviderConfigKey string
	Payload           []byte
}

// ShopifyTopicHandler processes one family of Shopify topics
type ShopifyTopicHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *ShopifyEvent) error
}

// ShopifyHandler receives callbacks for provider configs backed by the shopify template
type ShopifyHandler struct {
	logger zerolog.Logger
	topics []ShopifyTopicHandler
}

// NewShopifyHandler creates a Shopify webhook handler with the given topic handlers
func NewShopifyHandler(logger zerolog.Logger, topics ...ShopifyTopicHandler) *ShopifyHandler {
	return &ShopifyHandler{
		logger: logger,
		topics: topics,
	}
}

// CanHandle returns true for the shopify provider
func (h *ShopifyHandler) CanHandle(provider string) bool {
	return provider == "shopify"
}

// Handle verifies the callback when the config has a webhook secret and runs
// the first matching topic handler. Shopify expects an empty 200 body.
func (h *ShopifyHandler) Handle(ctx context.Context, config *domain.ProviderConfig, webhook *domain.WebhookContext) (any, error) {
	if config.WebhookSecret != "" && !VerifyShopifySignature(config.WebhookSecret, webhook.RawBody, webhook.Headers) {
		h.logger.Warn().
			Str("providerConfigKey", config.ProviderConfigKey).
			Msg("Shopify webhook signature verification failed")
		return nil, domain.NewAuthError(domain.CodeInvalidSignature, map[string]any{
			"provider_config_key": config.ProviderConfigKey,
		})
	}

	event := &ShopifyEvent{
		Topic:             webhook.Headers.Get(shopifyTopicHeader),
		Shop:              webhook.Headers.Get(shopifyDomainHeader),
		ProviderConfigKey: config.ProviderConfigKey,
		Payload:           webhook.RawBody,
	}
	if event.Topic == "" {
		h.logger.Warn().Str("providerConfigKey", config.ProviderConfigKey).Msg("Missing X-Shopify-Topic header")
		return nil, nil
	}

	for _, topic := range h.topics {
		if topic.CanHandle(event.Topic) {
			return nil, topic.Handle(ctx, event)
		}
	}

	h.logger.Debug().Str("topic", event.Topic).Str("shop", event.Shop).Msg("Unhandled Shopify topic")
	return nil, nil
}

// VerifyShopifySignature checks the base64 HMAC-SHA256 of body against the
// X-Shopify-Hmac-Sha256 header
func VerifyShopifySignature(secret string, body []byte, headers http.Header) bool {
	received, err := base64.StdEncoding.DecodeString(headers.Get(shopifyHMACHeader))
	if err != nil || len(received) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(received, mac.Sum(nil))
}
