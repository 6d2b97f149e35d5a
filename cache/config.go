package cache

import (
	"time"

	"github.com/goliatone/go-flavor-inventory/internal/cacheinfra"
)

// Backend selects where cached listings live.
type Backend string

const (
	// BackendMemory keeps entries in a process-wide sturdyc client.
	BackendMemory Backend = "memory"
	// BackendRedis keeps entries in redis so several processes share them.
	BackendRedis Backend = "redis"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend            Backend
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
	Redis              *RedisConfig
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key written by this service.
	Prefix string
}

// DefaultConfig returns a memory backed Config populated with sensible defaults.
func DefaultConfig() Config {
	cfg := cacheinfra.DefaultConfig()
	return Config{
		Backend:            BackendMemory,
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}

// WithTTL returns a copy of c using ttl.
func (c Config) WithTTL(ttl time.Duration) Config {
	c.TTL = ttl
	return c
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendRedis:
		return c.toRedis().Validate()
	case BackendMemory, "":
		return c.toInternal().Validate()
	default:
		return &cacheinfra.ConfigError{Field: "Backend", Message: "must be memory or redis"}
	}
}

// NewCacheService constructs the cache service for the configured backend.
func NewCacheService(cfg Config) (CacheService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendRedis {
		svc, err := cacheinfra.NewRedisService(cfg.toRedis())
		if err != nil {
			return nil, err
		}
		return svc, nil
	}

	svc, err := cacheinfra.NewSturdycService(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func (c Config) toRedis() cacheinfra.RedisConfig {
	out := cacheinfra.RedisConfig{TTL: c.TTL}
	if c.Redis != nil {
		out.Addr = c.Redis.Addr
		out.Password = c.Redis.Password
		out.DB = c.Redis.DB
		out.Prefix = c.Redis.Prefix
	}
	return out
}
