package reporting

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StreamAnalytics appends product events to a redis stream consumed by the
// analytics exporter
type StreamAnalytics struct {
	client redis.Cmdable
	stream string
	logger zerolog.Logger
}

// NewStreamAnalytics creates an analytics sink on the given stream
func NewStreamAnalytics(client redis.Cmdable, stream string, logger zerolog.Logger) *StreamAnalytics {
	if stream == "" {
		stream = "analytics:events"
	}
	return &StreamAnalytics{client: client, stream: stream, logger: logger}
}

// Track appends one event
func (a *StreamAnalytics) Track(ctx context.Context, event string, accountID string, properties map[string]any) error {
	props, err := json.Marshal(properties)
	if err != nil {
		return fmt.Errorf("failed to encode analytics properties: %w", err)
	}

	err = a.client.XAdd(ctx, &redis.XAddArgs{
		Stream: a.stream,
		MaxLen: 100000,
		Approx: true,
		Values: map[string]any{
			"event":      event,
			"accountId":  accountID,
			"properties": string(props),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to track %s: %w", event, err)
	}

	a.logger.Debug().Str("event", event).Str("accountId", accountID).Msg("Analytics event tracked")
	return nil
}
