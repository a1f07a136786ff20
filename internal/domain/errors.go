package domain

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Stable machine-readable codes returned to callers
const (
	CodeMissingConnection     = "missing_connection"
	CodeMissingConnectionID   = "missing_connection_id"
	CodeMissingBasicUsername  = "missing_basic_username"
	CodeMissingAPIKey         = "missing_api_key"
	CodeMissingSignature      = "missing_signature"
	CodeInvalidSignature      = "invalid_signature"
	CodeUnknownProviderConfig = "unknown_provider_config"
	CodeInvalidAuthMode       = "invalid_auth_mode"
	CodeMissingWebhookParams  = "missing_webhook_params"
	CodeUnknownAccount        = "unknown_account"
	CodePayloadTooLarge       = "payload_too_large"
	CodeServerError           = "server_error"
)

var codeMessages = map[string]string{
	CodeMissingConnection:     "Missing Provider Config unique key. Please add it to the request path.",
	CodeMissingConnectionID:   "Missing Connection ID. Please add the connection_id query parameter.",
	CodeMissingBasicUsername:  "Missing username in the request body.",
	CodeMissingAPIKey:         "Missing apiKey in the request body.",
	CodeMissingSignature:      "Missing HMAC signature in the hmac query parameter.",
	CodeInvalidSignature:      "The HMAC signature does not match.",
	CodeUnknownProviderConfig: "Unknown Provider Config unique key for this environment.",
	CodeInvalidAuthMode:       "The provider does not support this authentication mode.",
	CodeMissingWebhookParams:  "Missing environment UUID or Provider Config key in the webhook path.",
	CodeUnknownAccount:        "No account matches the supplied key.",
	CodePayloadTooLarge:       "The request body exceeds the size limit.",
	CodeServerError:           "An unexpected error occurred",
}

var codeCategories = map[string]goerrors.Category{
	CodeMissingConnection:     goerrors.CategoryBadInput,
	CodeMissingConnectionID:   goerrors.CategoryBadInput,
	CodeMissingBasicUsername:  goerrors.CategoryBadInput,
	CodeMissingAPIKey:         goerrors.CategoryBadInput,
	CodeMissingSignature:      goerrors.CategoryBadInput,
	CodeInvalidSignature:      goerrors.CategoryAuth,
	CodeUnknownProviderConfig: goerrors.CategoryNotFound,
	CodeInvalidAuthMode:       goerrors.CategoryBadInput,
	CodeMissingWebhookParams:  goerrors.CategoryBadInput,
	CodeUnknownAccount:        goerrors.CategoryAuth,
	CodePayloadTooLarge:       goerrors.CategoryBadInput,
}

var codeStatuses = map[string]int{
	CodeMissingConnection:     http.StatusBadRequest,
	CodeMissingConnectionID:   http.StatusBadRequest,
	CodeMissingBasicUsername:  http.StatusBadRequest,
	CodeMissingAPIKey:         http.StatusBadRequest,
	CodeMissingSignature:      http.StatusBadRequest,
	CodeInvalidSignature:      http.StatusUnauthorized,
	CodeUnknownProviderConfig: http.StatusNotFound,
	CodeInvalidAuthMode:       http.StatusBadRequest,
	CodeMissingWebhookParams:  http.StatusBadRequest,
	CodeUnknownAccount:        http.StatusUnauthorized,
	CodePayloadTooLarge:       http.StatusRequestEntityTooLarge,
}

// NewAuthError builds the expected (non-exceptional) error for one of the codes above
func NewAuthError(code string, metadata map[string]any) *goerrors.Error {
	category, ok := codeCategories[code]
	if !ok {
		category = goerrors.CategoryBadInput
	}
	status, ok := codeStatuses[code]
	if !ok {
		status = http.StatusBadRequest
	}
	err := goerrors.New(codeMessages[code], category).
		WithCode(status).
		WithTextCode(code)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// NewUnexpectedError wraps a collaborator failure that no check anticipated.
// The caller's general error handler owns the response.
func NewUnexpectedError(source error, message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.Wrap(source, goerrors.CategoryInternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(CodeServerError)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// ErrorCode returns the machine code carried by err, or "" if it has none
func ErrorCode(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

// IsExpected reports whether err is one of the handled client-facing failures
func IsExpected(err error) bool {
	_, ok := codeStatuses[ErrorCode(err)]
	return ok
}

// RedactError renders only the message and type name of err.
// Wrapped payloads, metadata and stack details are never included.
func RedactError(err error) string {
	if err == nil {
		return "{}"
	}
	name := fmt.Sprintf("%T", err)
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Message != "" {
		return fmt.Sprintf(`{"message": %q, "name": %q}`, rich.Message, name)
	}
	return fmt.Sprintf(`{"message": %q, "name": %q}`, err.Error(), name)
}
