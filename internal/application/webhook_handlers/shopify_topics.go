package webhook_handlers

import (
	"context"
	"encoding/json"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// topicHandler decodes one family of Shopify topics and logs a summary of
// the resource. Topics match when they share the family prefix.
type topicHandler struct {
	family string
	exact  bool
	logger zerolog.Logger
	decode func(payload []byte, ev *zerolog.Event) error
}

func (h *topicHandler) CanHandle(topic string) bool {
	if h.exact {
		return topic == h.family
	}
	return strings.HasPrefix(topic, h.family+"/")
}

// Handle acknowledges payloads that do not decode. Shopify redelivers the
// same body on any non-2xx answer.
func (h *topicHandler) Handle(_ context.Context, event *ShopifyEvent) error {
	ev := h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Str("providerConfigKey", event.ProviderConfigKey)
	if err := h.decode(event.Payload, ev); err != nil {
		ev.Discard()
		h.logger.Warn().
			Err(err).
			Str("topic", event.Topic).
			Str("shop", event.Shop).
			Str("providerConfigKey", event.ProviderConfigKey).
			Msg("Dropping undecodable Shopify payload")
		return nil
	}
	ev.Msg("Shopify webhook received")
	return nil
}

// NewOrderHandler handles orders/* topics
func NewOrderHandler(logger zerolog.Logger) ShopifyTopicHandler {
	return &topicHandler{family: "orders", logger: logger, decode: func(payload []byte, ev *zerolog.Event) error {
		var order goshopify.Order
		if err := json.Unmarshal(payload, &order); err != nil {
			return err
		}
		total := ""
		if order.TotalPrice != nil {
			total = order.TotalPrice.String()
		}
		ev.Interface("orderId", order.Id).
			Str("orderName", order.Name).
			Str("totalPrice", total).
			Str("financialStatus", string(order.FinancialStatus)).
			Str("fulfillmentStatus", string(order.FulfillmentStatus))
		return nil
	}}
}

// NewProductHandler handles products/* topics
func NewProductHandler(logger zerolog.Logger) ShopifyTopicHandler {
	return &topicHandler{family: "products", logger: logger, decode: func(payload []byte, ev *zerolog.Event) error {
		var product goshopify.Product
		if err := json.Unmarshal(payload, &product); err != nil {
			return err
		}
		ev.Interface("productId", product.Id).Str("handle", product.Handle).Str("vendor", product.Vendor)
		return nil
	}}
}

// NewCustomerHandler handles customers/* topics. Contact fields are not logged.
func NewCustomerHandler(logger zerolog.Logger) ShopifyTopicHandler {
	return &topicHandler{family: "customers", logger: logger, decode: func(payload []byte, ev *zerolog.Event) error {
		var customer goshopify.Customer
		if err := json.Unmarshal(payload, &customer); err != nil {
			return err
		}
		ev.Interface("customerId", customer.Id)
		return nil
	}}
}

// NewAppUninstalledHandler handles app/uninstalled. Stored connections are
// left in place for the audit trail.
func NewAppUninstalledHandler(logger zerolog.Logger) ShopifyTopicHandler {
	return &topicHandler{family: "app/uninstalled", exact: true, logger: logger, decode: func(payload []byte, ev *zerolog.Event) error {
		var shop goshopify.Shop
		if err := json.Unmarshal(payload, &shop); err != nil {
			return err
		}
		ev.Str("shopDomain", shop.MyshopifyDomain)
		return nil
	}}
}
