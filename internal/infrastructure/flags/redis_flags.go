package flags

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisFlags evaluates feature flags stored as redis strings. An account
// override at "<prefix>:<flag>:<distinctId>" wins over the global value at
// "<prefix>:<flag>"; with neither set the caller's default applies.
type RedisFlags struct {
	client redis.Cmdable
	prefix string
}

// NewRedisFlags creates a redis backed flag evaluator
func NewRedisFlags(client redis.Cmdable, prefix string) *RedisFlags {
	if prefix == "" {
		prefix = "feature"
	}
	return &RedisFlags{client: client, prefix: prefix}
}

// IsEnabled evaluates a flag for a distinct ID
func (f *RedisFlags) IsEnabled(ctx context.Context, flag string, distinctID string, defaultValue bool) (bool, error) {
	keys := []string{fmt.Sprintf("%s:%s", f.prefix, flag)}
	if distinctID != "" {
		keys = append([]string{fmt.Sprintf("%s:%s:%s", f.prefix, flag, distinctID)}, keys...)
	}

	for _, key := range keys {
		raw, err := f.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return defaultValue, fmt.Errorf("failed to read flag %s: %w", key, err)
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return defaultValue, fmt.Errorf("invalid value %q for flag %s", raw, key)
		}
		return value, nil
	}

	return defaultValue, nil
}
