package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"archie-core-auth-gateway/internal/application"
	"archie-core-auth-gateway/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxWebhookBodyBytes = 5 << 20

// WebhookReceiver accepts provider callbacks
type WebhookReceiver interface {
	Receive(ctx context.Context, environmentUUID, providerConfigKey string, headers http.Header, body []byte) (*application.WebhookResponse, error)
}

// WebhookHandler serves POST /webhook/{environmentUuid}/{providerConfigKey}
type WebhookHandler struct {
	receiver WebhookReceiver
	logger   zerolog.Logger
}

// NewWebhookHandler creates a new webhook HTTP handler
func NewWebhookHandler(receiver WebhookReceiver, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{receiver: receiver, logger: logger}
}

// ServeHTTP reads the raw body and passes the provider payload back unmodified.
// Bodies over the limit are rejected, never dispatched in part.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, maxWebhookBodyBytes)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp, err := h.receiver.Receive(
		r.Context(),
		chi.URLParam(r, "environmentUuid"),
		chi.URLParam(r, "providerConfigKey"),
		r.Header,
		body,
	)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writePayload(w, resp.StatusCode, resp.Payload)
}

// readBody reads the whole body up to limit bytes. Oversized bodies fail with
// payload_too_large.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.NewAuthError(domain.CodePayloadTooLarge, map[string]any{"limit": limit})
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}
