package api

import (
	"context"
	"encoding/json"
	"net/http"

	"archie-core-auth-gateway/internal/application"
	"archie-core-auth-gateway/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxAuthBodyBytes = 1 << 20

// CredentialAuthorizer establishes connections from static credentials
type CredentialAuthorizer interface {
	AuthorizeAPIKey(ctx context.Context, req application.AuthRequest) (*application.AuthResult, error)
	AuthorizeBasic(ctx context.Context, req application.AuthRequest) (*application.AuthResult, error)
}

// AuthHandler serves the API key and basic credential endpoints
type AuthHandler struct {
	authorizer CredentialAuthorizer
	logger     zerolog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authorizer CredentialAuthorizer, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authorizer: authorizer, logger: logger}
}

type apiKeyBody struct {
	APIKey string `json:"apiKey"`
}

type basicBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// APIKey handles POST /api-auth/api-key/{providerConfigKey}
func (h *AuthHandler) APIKey(w http.ResponseWriter, r *http.Request) {
	var body apiKeyBody
	if err := decodeBody(w, r, &body); err != nil {
		handleError(w, r, err)
		return
	}

	req := h.request(r)
	req.APIKey = body.APIKey

	h.respond(w, r, func(ctx context.Context) (*application.AuthResult, error) {
		return h.authorizer.AuthorizeAPIKey(ctx, req)
	})
}

// Basic handles POST /api-auth/basic/{providerConfigKey}
func (h *AuthHandler) Basic(w http.ResponseWriter, r *http.Request) {
	var body basicBody
	if err := decodeBody(w, r, &body); err != nil {
		handleError(w, r, err)
		return
	}

	req := h.request(r)
	req.Username = body.Username
	req.Password = body.Password

	h.respond(w, r, func(ctx context.Context) (*application.AuthResult, error) {
		return h.authorizer.AuthorizeBasic(ctx, req)
	})
}

func (h *AuthHandler) request(r *http.Request) application.AuthRequest {
	query := r.URL.Query()
	return application.AuthRequest{
		AccountID:         domain.GetAccountIDFromContext(r.Context()),
		EnvironmentID:     domain.GetEnvironmentIDFromContext(r.Context()),
		ProviderConfigKey: chi.URLParam(r, "providerConfigKey"),
		ConnectionID:      query.Get("connection_id"),
		Signature:         query.Get("hmac"),
		Params:            query.Get("params"),
	}
}

func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, authorize func(context.Context) (*application.AuthResult, error)) {
	result, err := authorize(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	if result.LogID != "" {
		w.Header().Set("X-Activity-Log-Id", result.LogID)
	}
	w.WriteHeader(http.StatusOK)
}

// decodeBody leaves target untouched on an empty or malformed body so the
// pipeline reports the missing field. Only oversized bodies are rejected here.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	data, err := readBody(w, r, maxAuthBodyBytes)
	if err != nil {
		if domain.ErrorCode(err) == domain.CodePayloadTooLarge {
			return err
		}
		return nil
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, target)
	}
	return nil
}
