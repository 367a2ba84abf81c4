// Package cache provides an in-process, size-bounded LRU cache for parameter
// values fetched from a remote parameter store.
//
// # Lookups
//
// A [ParameterCache] sits in front of a [Fetcher]. Each lookup either returns a
// fresh cached value or calls the Fetcher and caches what it returns:
//
//	c := cache.New(fetcher, cache.WithMaxCacheSize(256))
//	val, err := c.GetParameter("service/parameter").Send(ctx)
//
// A value is fresh until [CacheConfig.CacheItemTTL] has passed since it was
// fetched. Stale entries are not swept; they stay in place until the next
// lookup replaces them or capacity pressure evicts them.
//
// ForceRefresh fetches even when a fresh value is cached. Use it after a value
// has been rotated at the source:
//
//	val, err := c.GetParameter("db/password").ForceRefresh().Send(ctx)
//
// # Eviction
//
// The cache holds at most [CacheConfig.MaxCacheSize] entries. Adding a new name
// to a full cache evicts the entry that has gone longest without a successful
// lookup or store. [ParameterCache.Contains], [ParameterCache.Peek] and
// [ParameterCache.Len] do not count as use.
//
// # Errors
//
// The cache never produces errors of its own and never retries. A failed fetch
// returns the Fetcher's error unchanged and leaves any cached value in place, so
// a later non-forced lookup can still be served from the cache while the entry
// is fresh. Fetchers mark their errors with [ErrParameterNotFound] or
// [ErrTransport] so callers can distinguish them with errors.Is.
//
// # Concurrency
//
// ParameterCache is not synchronized. Build one at startup and either keep it on
// a single goroutine or wrap it with [NewShared], which serializes every lookup
// behind one mutex. Two lookups of the same missing name are never coalesced:
// without a Shared both may fetch, and the last store wins.
//
// A fetch can only be cancelled through the context passed to Send. TTL bounds
// how stale a cached value may be, not how long a fetch may take.
package cache
