package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis so they survive process restarts and
// are shared across instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store on an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *RedisStore) Create(ctx context.Context, username string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(token), username, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Lookup(ctx context.Context, token string) (string, error) {
	username, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	s.client.Expire(ctx, sessionKey(token), s.ttl)
	return username, nil
}

func (s *RedisStore) Bind(ctx context.Context, token, username string) error {
	// KEEPTTL preserves the remaining lifetime of the session.
	return s.client.Set(ctx, sessionKey(token), username, redis.KeepTTL).Err()
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}
