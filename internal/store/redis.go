package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionTTL bounds how long a credential bundle may sit idle in redis before
// it is dropped. It only needs to outlive the identity provider's
// refresh-token validity; a bundle that expires here simply forces a fresh
// login.
const sessionTTL = 7 * 24 * time.Hour

// RedisStore is a redis-backed Store holding the credential bundle for a
// single session under a prefixed key, so that bundles survive process
// restarts.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

func NewRedis(client redis.UniversalClient, sessionID string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    "session:" + sessionID,
	}
}

func (s *RedisStore) Put(ctx context.Context, b Bundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal credential bundle: %w", err)
	}
	return s.client.Set(ctx, s.key, data, sessionTTL).Err()
}

func (s *RedisStore) Get(ctx context.Context) (Bundle, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Bundle{}, ErrNotFound
		}
		return Bundle{}, fmt.Errorf("redis get: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return Bundle{}, fmt.Errorf("unmarshal credential bundle: %w", err)
	}
	return b, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

var _ Store = (*RedisStore)(nil)
