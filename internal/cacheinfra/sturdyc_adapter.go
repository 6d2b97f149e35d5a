package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// Config sizes an in-process listing cache. A sturdyc client carries one
// TTL, so the store and employee listings each get a client of their own.
type Config struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	// EvictionInterval of zero keeps the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns the sizing used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions returns the optional sturdyc settings. Early refreshes
// are never requested: a listing stays exactly as loaded until it expires.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	if c.EvictionInterval <= 0 {
		return nil
	}
	return []sturdyc.Option{sturdyc.WithEvictionInterval(c.EvictionInterval)}
}

func (c Config) Validate() error {
	checks := []struct {
		field string
		ok    bool
		msg   string
	}{
		{"Capacity", c.Capacity > 0, "must be greater than 0"},
		{"NumShards", c.NumShards > 0, "must be greater than 0"},
		{"TTL", c.TTL > 0, "must be greater than 0"},
		{"EvictionPercentage", c.EvictionPercentage >= 1 && c.EvictionPercentage <= 100, "must be between 1 and 100"},
		{"EvictionInterval", c.EvictionInterval >= 0, "must be non-negative"},
	}
	for _, check := range checks {
		if !check.ok {
			return &ConfigError{Field: check.field, Message: check.msg}
		}
	}
	return nil
}

// ConfigError reports an invalid cache setting or fetch function.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

type sturdycService struct {
	client *sturdyc.Client[any]
}

// NewSturdycService builds an in-process cache from cfg.
func NewSturdycService(cfg Config) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage, cfg.ToSturdycOptions()...)
	return &sturdycService{client: client}, nil
}

// GetOrFetch serves key from memory or loads it with fetchFn, a
// func(context.Context) (T, error). Concurrent misses on one key share a
// single load and failed loads are not stored.
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}
	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return callFetchFn(ctx, fetchFn)
	})
}

// Size reports how many listings are held.
func (s *sturdycService) Size() int {
	return len(s.client.ScanKeys())
}
