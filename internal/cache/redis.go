package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisValuePrefix = "khabar:cache:"
	redisTagPrefix   = "khabar:tag:"
)

// RedisTagStore shares cached CMS results between instances.
// Tag membership is kept in a redis set per tag.
type RedisTagStore struct {
	client *redis.Client
}

var _ TagStore = (*RedisTagStore)(nil)

// NewRedisTagStore connects to redisURL and verifies the connection
func NewRedisTagStore(ctx context.Context, redisURL string) (*RedisTagStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return newRedisTagStore(client), nil
}

func newRedisTagStore(client *redis.Client) *RedisTagStore {
	return &RedisTagStore{client: client}
}

func (s *RedisTagStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, redisValuePrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %q from Redis: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisTagStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error {
	if ttl <= 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisValuePrefix+key, value, ttl)
		for _, tag := range tags {
			tagKey := redisTagPrefix + tag
			pipe.SAdd(ctx, tagKey, key)
			// the set lives as long as its longest-lived member; needs redis 7 for NX/GT
			pipe.ExpireNX(ctx, tagKey, ttl)
			pipe.ExpireGT(ctx, tagKey, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store %q in Redis: %w", key, err)
	}
	return nil
}

func (s *RedisTagStore) InvalidateTag(ctx context.Context, tag string) (int, error) {
	keys, err := s.client.SMembers(ctx, redisTagPrefix+tag).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read tag %q: %w", tag, err)
	}

	fullKeys := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		fullKeys = append(fullKeys, redisValuePrefix+k)
	}
	fullKeys = append(fullKeys, redisTagPrefix+tag)

	deleted, err := s.client.Del(ctx, fullKeys...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate tag %q: %w", tag, err)
	}
	// the tag set itself is not an entry
	if deleted > 0 {
		deleted--
	}
	return int(deleted), nil
}

// Close releases the connection pool
func (s *RedisTagStore) Close() error {
	return s.client.Close()
}
