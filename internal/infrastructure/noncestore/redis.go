// Package noncestore backs the pay-now nonce service with Redis so nonces
// survive process restarts and are shared across replicas.
package noncestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"molliebridge/internal/application/gateway/nonce"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ nonce.Store = (*RedisStore)(nil)

func (s *RedisStore) Save(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save nonce: %w", err)
	}
	return nil
}

// Take atomically fetches and deletes the nonce so each one verifies at most
// once. A missing key returns "", nil.
func (s *RedisStore) Take(ctx context.Context, key string) (string, error) {
	value, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to take nonce: %w", err)
	}
	return value, nil
}
