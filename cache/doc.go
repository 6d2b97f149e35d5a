// Package cache provides the read-through caching contract and key
// serialization used by the listing caches.
//
// # Overview
//
// This package exports two interfaces and their default implementations:
//
//   - CacheService: populate-on-miss, expire-on-TTL key/value cache
//   - KeySerializer: builds stable cache keys from method names and arguments
//
// A CacheService has no invalidation method. Cached listings are allowed to go
// stale until their TTL elapses, and writes to the underlying records never
// purge them. Callers that need fresh data read the repositories directly.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig().WithTTL(10 * time.Minute))
//	key := cache.NewDefaultKeySerializer().SerializeKey("ListEmployees", page, limit)
//	employees, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) ([]*model.Employee, error) {
//		return loadPage(ctx, page, limit)
//	})
//
// # Backends
//
// BackendMemory uses a sturdyc client, one per Config, so every distinct TTL
// needs its own service. BackendRedis stores msgpack encoded values in redis
// with the configured TTL.
//
// Concurrent misses on the same key may both reach the source of truth; the
// memory backend collapses in-flight fetches, the redis backend does not. In
// both cases the last write wins.
//
// # Key Serialization
//
// The default key serializer handles basic types, time.Time, fmt.Stringer
// values (uuid.UUID), pointers, slices, arrays, maps (sorted) and structs
// (exported fields). Function values are rendered by pointer, which is only
// stable for the lifetime of the process.
package cache
