package domain

import "context"

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	environmentIDKey contextKey = "environment_id"
	accountIDKey     contextKey = "account_id"
)

// WithEnvironmentID adds the authenticated environment ID to the context
func WithEnvironmentID(ctx context.Context, environmentID string) context.Context {
	return context.WithValue(ctx, environmentIDKey, environmentID)
}

// GetEnvironmentIDFromContext returns the environment ID, or "" when unauthenticated
func GetEnvironmentIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(environmentIDKey).(string)
	return v
}

// WithAccountID adds the authenticated account ID to the context
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// GetAccountIDFromContext returns the account ID, or "" when unauthenticated
func GetAccountIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(accountIDKey).(string)
	return v
}
