package cache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned when a cached value cannot be converted to
// the type requested by the caller.
var ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FetchFn is the function signature CacheService expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService is the read-through contract used by the listing caches.
// Entries are populated on a miss and expire on TTL. There is deliberately no
// delete or invalidation method: writes never touch cached listings.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
}

// GetOrFetch is a type-safe wrapper function that provides generic support for CacheService.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T

	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
