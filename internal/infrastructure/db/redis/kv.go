package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KeyValueStore keeps credential keys under a per-client prefix.
// Key format: <prefix>:<key>
type KeyValueStore struct {
	client *redis.Client
	prefix string
}

// NewKeyValueStore wraps client. An empty prefix defaults to "orange:session".
func NewKeyValueStore(client *redis.Client, prefix string) *KeyValueStore {
	if prefix == "" {
		prefix = "orange:session"
	}
	return &KeyValueStore{client: client, prefix: prefix}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *KeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *KeyValueStore) key(k string) string {
	return s.prefix + ":" + k
}
