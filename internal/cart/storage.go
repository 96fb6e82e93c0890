package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrPersistenceUnavailable marks storage reads/writes that failed at the
// backend. Callers degrade to an empty or unsaved cart.
var ErrPersistenceUnavailable = errors.New("cart storage unavailable")

// Storage is the durable key-value collaborator the cart persists through.
// Get returns "" (and no error) for an absent key.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

type redisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage stores carts under "<prefix>:<key>" with no TTL: a cart
// survives until the session clears it.
func NewRedisStorage(client *redis.Client, prefix string) Storage {
	return &redisStorage{client: client, prefix: prefix}
}

func (s *redisStorage) fullKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *redisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.fullKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return value, nil
}

func (s *redisStorage) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, s.fullKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

func (s *redisStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}
