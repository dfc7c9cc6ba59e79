package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the key has no stored value.
var ErrNotFound = errors.New("storage: not found")

// KV is the durable key/value boundary the console state persists through.
// Values are opaque strings (JSON for structured state). The store is
// single-writer from the console's perspective; concurrent writers from
// another instance may race on the same key.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// RedisKV implements KV on top of Redis. Keys live without expiry: the
// credential and notification collections outlive any single process run.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV constructs a RedisKV.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get returns the value stored under key, or ErrNotFound.
func (s *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key.
func (s *RedisKV) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

// Delete removes key. Deleting an absent key is not an error.
func (s *RedisKV) Delete(ctx context.Context, key string) error {
	err := s.client.Del(ctx, key).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

var _ KV = (*RedisKV)(nil)
