package cache

import (
	"context"
	"time"

	"github.com/agentuity/go-paramcache/logger"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// ParameterCache is a size-bounded LRU cache of parameter values in front of a
// Fetcher. Values are served from memory until their TTL passes, then fetched
// again on the next lookup.
//
// A ParameterCache is not safe for concurrent use. Wrap it in a Shared when it is
// used from more than one goroutine.
type ParameterCache struct {
	client   Fetcher
	config   CacheConfig
	entries  *simplelru.LRU[string, Entry[string]]
	logger   logger.Logger
	observer Observer
	now      func() time.Time
}

// New returns a ParameterCache using DefaultCacheConfig.
func New(client Fetcher, opts ...Option) *ParameterCache {
	return NewWithConfig(client, DefaultCacheConfig(), opts...)
}

// NewWithConfig returns a ParameterCache using config. Invalid values in config
// are replaced with their defaults.
func NewWithConfig(client Fetcher, config CacheConfig, opts ...Option) *ParameterCache {
	o := applyOptions(config, opts)
	c := &ParameterCache{
		client:   client,
		config:   o.config,
		logger:   o.logger.WithPrefix("[paramcache]"),
		observer: o.observer,
		now:      o.now,
	}
	entries, err := simplelru.NewLRU[string, Entry[string]](o.config.MaxCacheSize, c.onEvict)
	if err != nil {
		// only possible for a non-positive size, which Normalize rules out
		panic(err)
	}
	c.entries = entries
	return c
}

func (c *ParameterCache) onEvict(name string, _ Entry[string]) {
	c.logger.Debug("evicted %s", name)
	c.observer.Evicted(name)
}

// Config returns the normalized configuration in use.
func (c *ParameterCache) Config() CacheConfig {
	return c.config
}

// Len returns the number of cached entries, including expired ones not yet replaced.
func (c *ParameterCache) Len() int {
	return c.entries.Len()
}

// Contains reports whether name has an entry, fresh or not. It does not count as a use.
func (c *ParameterCache) Contains(name string) bool {
	return c.entries.Contains(name)
}

// Peek returns the entry for name without counting as a use.
func (c *ParameterCache) Peek(name string) (Entry[string], bool) {
	return c.entries.Peek(name)
}

// Lookup returns the value for name. A fresh cached value is returned without
// calling the Fetcher unless forceRefresh is set. Otherwise the value is fetched,
// cached with the configured TTL and returned.
//
// A fetch error is returned exactly as the Fetcher produced it and leaves the
// cache unchanged.
func (c *ParameterCache) Lookup(ctx context.Context, name string, forceRefresh bool) (string, error) {
	reason := MissForced
	if !forceRefresh {
		entry, ok := c.entries.Get(name)
		switch {
		case !ok:
			reason = MissAbsent
		case entry.IsExpiredAt(c.now()):
			reason = MissExpired
		default:
			c.logger.Trace("hit %s", name)
			c.observer.Hit(name)
			return entry.Value, nil
		}
	}
	c.logger.Trace("miss %s (%s)", name, reason)
	c.observer.Miss(name, reason)

	started := time.Now()
	value, err := c.client.GetParameter(ctx, name)
	elapsed := time.Since(started)
	if err != nil {
		c.logger.Debug("fetch %s failed after %v: %v", name, elapsed, err)
		c.observer.FetchFailed(name, err, elapsed)
		return "", err
	}

	c.entries.Add(name, NewEntryAt(value, c.config.CacheItemTTL, c.now()))
	c.logger.Debug("fetched %s in %v", name, elapsed)
	c.observer.Fetched(name, elapsed)
	return value, nil
}

// GetParameter returns a request for name. Call Send to perform the lookup.
func (c *ParameterCache) GetParameter(name string) *GetParameterRequest {
	return &GetParameterRequest{cache: c, name: name}
}

// GetParameterRequest describes a single lookup. It is not reusable across caches
// and should be discarded after Send.
type GetParameterRequest struct {
	cache        *ParameterCache
	name         string
	forceRefresh bool
}

// ForceRefresh makes Send fetch the value even when a fresh one is cached. Use it
// when a value has been rotated at the source before its cached copy expired.
func (r *GetParameterRequest) ForceRefresh() *GetParameterRequest {
	r.forceRefresh = true
	return r
}

// Send performs the lookup.
func (r *GetParameterRequest) Send(ctx context.Context) (string, error) {
	return r.cache.Lookup(ctx, r.name, r.forceRefresh)
}
