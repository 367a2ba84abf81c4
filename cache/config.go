package cache

import (
	"time"

	"github.com/agentuity/go-paramcache/logger"
)

// DefaultCacheItemTTL is the TTL applied to cached parameters when none is configured.
const DefaultCacheItemTTL = 5 * time.Minute

// DefaultMaxCacheSize is the capacity used when none is configured.
const DefaultMaxCacheSize = 1

// CacheConfig holds the tunables for a ParameterCache.
type CacheConfig struct {
	// MaxCacheSize is the number of parameters retained before the least recently
	// used one is evicted. Zero or negative resolves to 1.
	MaxCacheSize int `yaml:"max_cache_size" json:"max_cache_size"`
	// CacheItemTTL is how long a fetched value is served from the cache. Negative
	// resolves to DefaultCacheItemTTL. Zero means every value is stale on arrival.
	CacheItemTTL time.Duration `yaml:"cache_item_ttl" json:"cache_item_ttl"`
}

// DefaultCacheConfig returns the configuration used by New.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxCacheSize: DefaultMaxCacheSize,
		CacheItemTTL: DefaultCacheItemTTL,
	}
}

// Normalize returns a copy of the config with invalid values replaced by defaults.
// Configuration is never rejected.
func (c CacheConfig) Normalize() CacheConfig {
	if c.MaxCacheSize <= 0 {
		c.MaxCacheSize = DefaultMaxCacheSize
	}
	if c.CacheItemTTL < 0 {
		c.CacheItemTTL = DefaultCacheItemTTL
	}
	return c
}

type options struct {
	config   CacheConfig
	logger   logger.Logger
	observer Observer
	now      func() time.Time
}

// Option configures a ParameterCache.
type Option func(*options)

func applyOptions(config CacheConfig, opts []Option) options {
	o := options{
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.config = o.config.Normalize()
	if o.logger == nil {
		o.logger = logger.NewConsoleLogger(logger.LevelNone)
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// WithMaxCacheSize overrides CacheConfig.MaxCacheSize.
func WithMaxCacheSize(n int) Option {
	return func(o *options) { o.config.MaxCacheSize = n }
}

// WithCacheItemTTL overrides CacheConfig.CacheItemTTL.
func WithCacheItemTTL(d time.Duration) Option {
	return func(o *options) { o.config.CacheItemTTL = d }
}

// WithLogger sets the logger used for cache activity. Defaults to a silent logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers hooks that are called on hits, misses, fetches and evictions.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithClock replaces time.Now for expiry calculations. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
