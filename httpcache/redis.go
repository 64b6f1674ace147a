package httpcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drblury/hyperweave/jsonutil"
)

const defaultRedisPrefix = "hyperweave:etag:"

// RedisStore shares cache entries across processes via Redis. Useful when
// several workers should agree on fingerprints; the in-memory store remains
// the default for single-process deployments.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix overrides the key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore wraps a go-redis client as a Store.
func NewRedisStore(client redis.Cmdable, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("httpcache: redis client is required")
	}

	store := &RedisStore{
		client: client,
		prefix: defaultRedisPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// Get implements Store. Expiry is delegated to Redis key TTLs.
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("httpcache: redis get failed: %w", err)
	}

	var entry Entry
	if err := jsonutil.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("httpcache: corrupt redis entry: %w", err)
	}
	return entry, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	data, err := jsonutil.Marshal(entry)
	if err != nil {
		return fmt.Errorf("httpcache: failed to encode entry: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("httpcache: redis set failed: %w", err)
	}
	return nil
}
