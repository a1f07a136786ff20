package syncqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Job is the message a sync worker pops from the queue
type Job struct {
	ID           string    `json:"id"`
	ConnectionID string    `json:"connectionId"`
	Action       string    `json:"action"`
	EnqueuedAt   time.Time `json:"enqueuedAt"`
}

// RedisSyncClient requests sync initiation by pushing jobs onto a redis list
type RedisSyncClient struct {
	client redis.Cmdable
	queue  string
	logger zerolog.Logger
}

// NewRedisSyncClient creates a sync client for the given queue
func NewRedisSyncClient(client redis.Cmdable, queue string, logger zerolog.Logger) *RedisSyncClient {
	if queue == "" {
		queue = "sync:initiate"
	}
	return &RedisSyncClient{client: client, queue: queue, logger: logger}
}

// Initiate enqueues a sync for the connection
func (c *RedisSyncClient) Initiate(ctx context.Context, connectionID string) error {
	job := Job{
		ID:           uuid.NewString(),
		ConnectionID: connectionID,
		Action:       "initiate",
		EnqueuedAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode sync job: %w", err)
	}

	if err := c.client.LPush(ctx, c.queue, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue sync job: %w", err)
	}

	c.logger.Debug().
		Str("jobId", job.ID).
		Str("connectionId", connectionID).
		Str("queue", c.queue).
		Msg("Sync job enqueued")
	return nil
}
