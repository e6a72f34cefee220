package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisStore. URL takes precedence over Addr.
type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int

	// KeyPrefix is prepended to every key.
	KeyPrefix string
	// TTL, when positive, expires a set that has not been written for that
	// long.
	TTL time.Duration

	DialTimeout time.Duration
}

// RedisStore keeps each set as a native Redis set.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	ttl       time.Duration
	closeOnce sync.Once
	closeErr  error
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// OpenRedis connects to Redis and verifies the connection with PING.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("kvstore: parse redis url: %w", err)
		}
		opts = parsed
	} else {
		if cfg.Addr == "" {
			return nil, fmt.Errorf("kvstore: redis url or addr is required")
		}
		opts = &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	store := NewRedisStore(redis.NewClient(opts), cfg.KeyPrefix, cfg.TTL)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Ping checks that the server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}
	return nil
}

// GetSet returns SMEMBERS of the prefixed key.
func (s *RedisStore) GetSet(ctx context.Context, key string) ([]string, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	members, err := s.client.SMembers(ctx, s.prefix+key).Result()
	if err != nil {
		return nil, s.wrap("smembers", key, err)
	}
	return members, nil
}

// PutSet replaces the set with DEL and SADD inside MULTI/EXEC so readers
// never observe a half written set.
func (s *RedisStore) PutSet(ctx context.Context, key string, members []string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	k := s.prefix + key
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		if len(members) == 0 {
			return nil
		}
		args := make([]any, len(members))
		for i, m := range members {
			args[i] = m
		}
		pipe.SAdd(ctx, k, args...)
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return s.wrap("replace", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

func (s *RedisStore) wrap(op, key string, err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, op, key, err)
}

var _ Store = (*RedisStore)(nil)
