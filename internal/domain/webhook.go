package domain

import "net/http"

// WebhookContext is an inbound provider callback, alive only while it is dispatched
type WebhookContext struct {
	EnvironmentUUID   string
	ProviderConfigKey string
	Headers           http.Header
	RawBody           []byte
}
