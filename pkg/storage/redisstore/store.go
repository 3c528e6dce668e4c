package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JKPrasad01/FoodAppFrontend/pkg/redis"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage"
)

type stateClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	StateKey(visitorID, slot string) string
}

// Store keeps client state in Redis. Every write refreshes the TTL, so state of
// visitors who never come back expires on its own.
type Store struct {
	client stateClient
	ttl    time.Duration
}

var _ storage.Backend = (*Store)(nil)

func New(client *redis.Client, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Store{client: client, ttl: ttl}, nil
}

func (s *Store) Get(ctx context.Context, visitorID string, key storage.Key) ([]byte, error) {
	value, err := s.client.Get(ctx, s.client.StateKey(visitorID, string(key)))
	if errors.Is(err, redis.ErrNil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *Store) Put(ctx context.Context, visitorID string, key storage.Key, value []byte) error {
	if err := s.client.Set(ctx, s.client.StateKey(visitorID, string(key)), string(value), s.ttl); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, visitorID string, key storage.Key) error {
	if err := s.client.Del(ctx, s.client.StateKey(visitorID, string(key))); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
