// Package repositorycache implements the cache-aside read layer over
// go-repository-bun repositories.
//
// Two listing shapes are provided:
//
//   - CachedCollection stores the whole unpaginated listing under one key and
//     paginates the cached collection in memory. A single entry serves every
//     page until it expires.
//   - CachedPages stores each distinct (page, limit) request in its own slot
//     and loads only that page from the repository on a miss.
//
// # Lifecycle
//
// Entries are populated on a miss and expire on the TTL of the CacheService
// they are stored in. Nothing in this package invalidates an entry: creating,
// updating or deleting a record leaves every cached listing untouched, so
// readers may observe stale data until expiry. Concurrent readers may both
// miss and both load the same listing.
//
// # Usage
//
//	stores := repositorycache.NewCachedCollection[*model.Store](
//		storeRepo, storeCache, cache.NewDefaultKeySerializer(),
//		repositorycache.WithOrder(byName),
//	)
//	page, total, err := stores.List(ctx, 2, 10)
//
// Keys are built with the cache KeySerializer under a namespace derived from
// the record type ("store", "employee") unless WithNamespace overrides it.
package repositorycache
