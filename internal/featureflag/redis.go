package featureflag

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// StringGetter is the subset of *redis.Client used by RedisSource.
type StringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSource reads flags stored as "true"/"false" strings under prefix+key.
type RedisSource struct {
	client StringGetter
	prefix string
}

// NewRedisSource creates a RedisSource over an existing client.
func NewRedisSource(client StringGetter, prefix string) *RedisSource {
	return &RedisSource{client: client, prefix: prefix}
}

// BoolVariation returns fallback without error when the key does not exist.
func (r *RedisSource) BoolVariation(ctx context.Context, key string, fallback bool) (bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("read flag %s: %w", key, err)
	}

	v, err := strconv.ParseBool(val)
	if err != nil {
		return fallback, fmt.Errorf("flag %s has non-boolean value %q", key, val)
	}
	return v, nil
}
