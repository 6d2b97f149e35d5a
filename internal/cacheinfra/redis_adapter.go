package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisConfig configures the redis cache adapter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Validate checks if the configuration values are valid.
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Redis.Addr", Message: "is required"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.DB < 0 {
		return &ConfigError{Field: "Redis.DB", Message: "must be non-negative"}
	}
	return nil
}

// redisService stores msgpack encoded values in redis. Every entry is written
// with the same TTL and is never deleted by this service.
type redisService struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisService creates a redis backed cache service.
func NewRedisService(cfg RedisConfig) (*redisService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return NewRedisServiceWithClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisServiceWithClient wraps an existing client.
func NewRedisServiceWithClient(client *redis.Client, prefix string, ttl time.Duration) *redisService {
	return &redisService{client: client, prefix: prefix, ttl: ttl}
}

func (s *redisService) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// GetOrFetch implements cache.CacheService. Entries that cannot be decoded
// into the fetch function's result type are treated as misses.
func (s *redisService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	fullKey := s.key(key)

	raw, err := s.client.Get(ctx, fullKey).Bytes()
	switch {
	case err == nil:
		target := reflect.New(resultType(fetchFn))
		if decodeErr := msgpack.Unmarshal(raw, target.Interface()); decodeErr == nil {
			return target.Elem().Interface(), nil
		}
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("redis get %s: %w", fullKey, err)
	}

	value, err := callFetchFn(ctx, fetchFn)
	if err != nil {
		return nil, err
	}

	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode cache entry %s: %w", fullKey, err)
	}

	if err := s.client.Set(ctx, fullKey, data, s.ttl).Err(); err != nil {
		log.Printf("cache: redis set %s failed: %v", fullKey, err)
	}

	return value, nil
}

// Close releases the underlying client.
func (s *redisService) Close() error {
	return s.client.Close()
}
