// Package redis provides a Redis-backed key-value storage adapter, used to
// persist fill drafts server-side with the same semantics as the in-memory
// adapter plus native key expiration.
package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Storage implements ports.Storage on top of Redis.
type Storage struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Storage)

// WithTTL sets the expiration applied to every key. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Storage) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Storage) {
		s.prefix = prefix
	}
}

// New creates a Redis storage with its own client.
func New(address, password string, db int, opts ...Option) *Storage {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis storage from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Storage {
	storage := &Storage{
		client: client,
		prefix: "lattice:storage:",
		ttl:    0,
	}

	for _, opt := range opts {
		opt(storage)
	}

	return storage
}

func (s *Storage) key(k string) string {
	return s.prefix + k
}

// GetItem reads a value. A missing key is not an error.
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if err == backend.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, true, nil
}

// SetItem writes a value, refreshing the TTL.
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// RemoveItem deletes a key. Removing a missing key is a no-op.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}
