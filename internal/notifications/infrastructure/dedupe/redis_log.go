// Package dedupe remembers delivered confirmations so redelivered events do
// not notify twice.
package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "huddle:notified:"

// RedisLog is a domain.DeliveryLog backed by Redis SETNX.
type RedisLog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLog creates a Redis delivery log. Keys expire after ttl.
func NewRedisLog(client *redis.Client, ttl time.Duration) *RedisLog {
	return &RedisLog{client: client, ttl: ttl}
}

// Claim implements domain.DeliveryLog.
func (l *RedisLog) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

// Release implements domain.DeliveryLog.
func (l *RedisLog) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}
