package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:conn:"

// RedisRegistry keeps connection bindings in Redis so that multiple gateway
// processes can share one session view. Entries expire on their own if a
// gateway dies before unbinding.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) Bind(ctx context.Context, connID, playerID string) error {
	if err := r.client.Set(ctx, sessionKeyPrefix+connID, playerID, r.ttl).Err(); err != nil {
		return fmt.Errorf("bind session %s: %w", connID, err)
	}
	return nil
}

func (r *RedisRegistry) Resolve(ctx context.Context, connID string) (string, bool, error) {
	playerID, err := r.client.Get(ctx, sessionKeyPrefix+connID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve session %s: %w", connID, err)
	}
	return playerID, true, nil
}

func (r *RedisRegistry) Unbind(ctx context.Context, connID string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+connID).Err(); err != nil {
		return fmt.Errorf("unbind session %s: %w", connID, err)
	}
	return nil
}

func (r *RedisRegistry) Count(ctx context.Context) (int, error) {
	var count int
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}
