package api

import (
	"encoding/json"
	"net/http"

	"archie-core-auth-gateway/internal/domain"

	goerrors "github.com/goliatone/go-errors"
	"github.com/rs/zerolog/hlog"
)

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

// handleError is the general error handler. Expected errors are rendered from
// their code; everything else becomes a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var rich *goerrors.Error
	if domain.IsExpected(err) && goerrors.As(err, &rich) {
		writeJSON(w, rich.Code, errorResponse{Error: rich.Message, Type: rich.TextCode})
		return
	}

	hlog.FromRequest(r).Error().
		Str("error", domain.RedactError(err)).
		Str("path", r.URL.Path).
		Msg("Unhandled request error")

	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: "An unexpected error occurred",
		Type:  domain.CodeServerError,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writePayload passes a provider payload through. Raw bytes are written as is.
func writePayload(w http.ResponseWriter, status int, payload any) {
	switch p := payload.(type) {
	case nil:
		w.WriteHeader(status)
	case []byte:
		w.WriteHeader(status)
		_, _ = w.Write(p)
	case json.RawMessage:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(p)
	case string:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(p))
	default:
		writeJSON(w, status, p)
	}
}
