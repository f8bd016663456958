package ratestore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage implements fiber.Storage on top of go-redis so that rate
// limiter counters are shared between API instances.
type RedisStorage struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// New creates a new redis-backed storage. Keys are namespaced with prefix.
func New(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{
		client:  client,
		prefix:  prefix,
		timeout: 2 * time.Second,
	}
}

func (s *RedisStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Get returns nil, nil when the key does not exist
func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val; exp of 0 means no expiry
func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	return s.client.Set(ctx, s.prefix+key, val, exp).Err()
}

// Delete removes a key
func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	return s.client.Del(ctx, s.prefix+key).Err()
}

// Reset removes every key under the prefix
func (s *RedisStorage) Reset() error {
	ctx, cancel := s.ctx()
	defer cancel()

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the redis client
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
