// Package config loads the paramcache program configuration from a YAML file
// and PARAMCACHE_* environment variables.
package config

import (
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/agentuity/go-paramcache/env"
	"github.com/cockroachdb/errors"
	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Sources lists the accepted values of Config.Source.
var Sources = []string{"memory", "redis", "sqlite", "http", "etcd", "ssm"}

// Duration is a time.Duration that unmarshals from strings such as "90s", "2h30m" or "1d".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := str2duration.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "line %d: invalid duration %q", node.Line, s)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return str2duration.String(time.Duration(d)), nil
}

type CacheSection struct {
	MaxCacheSize int      `yaml:"max_cache_size"`
	TTL          Duration `yaml:"ttl"`
}

type FetchSection struct {
	// Timeout bounds each fetch. Zero disables it.
	Timeout Duration `yaml:"timeout"`
	// Retries is the number of retries after a failed fetch.
	Retries int `yaml:"retries"`
	// BreakerFailures opens a circuit breaker after this many consecutive
	// failed fetches. Zero disables the breaker.
	BreakerFailures int `yaml:"breaker_failures"`
	// BreakerCooldown is how long the breaker stays open.
	BreakerCooldown Duration `yaml:"breaker_cooldown"`
}

type RedisSection struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

type SQLiteSection struct {
	Path string `yaml:"path"`
}

type HTTPSection struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type EtcdSection struct {
	Endpoints []string `yaml:"endpoints"`
	Prefix    string   `yaml:"prefix"`
}

type SSMSection struct {
	WithDecryption bool `yaml:"with_decryption"`
}

// Config is the full program configuration.
type Config struct {
	Source      string            `yaml:"source"`
	LogLevel    string            `yaml:"log_level"`
	MetricsAddr string            `yaml:"metrics_addr"`
	Cache       CacheSection      `yaml:"cache"`
	Fetch       FetchSection      `yaml:"fetch"`
	Redis       RedisSection      `yaml:"redis"`
	SQLite      SQLiteSection     `yaml:"sqlite"`
	HTTP        HTTPSection       `yaml:"http"`
	Etcd        EtcdSection       `yaml:"etcd"`
	SSM         SSMSection        `yaml:"ssm"`
	Parameters  map[string]string `yaml:"parameters"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Source:   "memory",
		LogLevel: "info",
		Cache: CacheSection{
			MaxCacheSize: cache.DefaultMaxCacheSize,
			TTL:          Duration(cache.DefaultCacheItemTTL),
		},
		Fetch: FetchSection{
			Timeout:         Duration(10 * time.Second),
			Retries:         2,
			BreakerCooldown: Duration(30 * time.Second),
		},
		Redis:  RedisSection{URL: "redis://localhost:6379"},
		SQLite: SQLiteSection{Path: "paramcache.db"},
		Etcd:   EtcdSection{Endpoints: []string{"localhost:2379"}},
		SSM:    SSMSection{WithDecryption: true},
	}
}

// Load reads path, if not empty, over Default and then applies environment
// overrides. ${VAR} and ${VAR:-default} references in the file are expanded
// from the environment first.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
		if err := cfg.decode(strings.NewReader(env.ExpandEnv(string(buf)))); err != nil {
			return nil, errors.Wrapf(err, "parsing config %s", path)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from PARAMCACHE_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(flag string) (string, bool) {
		v, ok := lookup(env.Name(flag))
		return v, ok && v != ""
	}
	setString := func(flag string, dst *string) {
		if v, ok := get(flag); ok {
			*dst = v
		}
	}
	setInt := func(flag string, dst *int) error {
		v, ok := get(flag)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s", env.Name(flag))
		}
		*dst = n
		return nil
	}
	setDuration := func(flag string, dst *Duration) error {
		v, ok := get(flag)
		if !ok {
			return nil
		}
		d, err := str2duration.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "%s", env.Name(flag))
		}
		*dst = Duration(d)
		return nil
	}

	setString("source", &c.Source)
	setString("log-level", &c.LogLevel)
	setString("metrics-addr", &c.MetricsAddr)
	setString("redis-url", &c.Redis.URL)
	setString("redis-prefix", &c.Redis.Prefix)
	setString("sqlite-path", &c.SQLite.Path)
	setString("http-url", &c.HTTP.URL)
	setString("http-token", &c.HTTP.Token)
	setString("etcd-prefix", &c.Etcd.Prefix)
	if v, ok := get("etcd-endpoints"); ok {
		c.Etcd.Endpoints = SplitList(v)
	}
	if v, ok := get("ssm-with-decryption"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%s", env.Name("ssm-with-decryption"))
		}
		c.SSM.WithDecryption = b
	}
	if err := setInt("max-cache-size", &c.Cache.MaxCacheSize); err != nil {
		return err
	}
	if err := setInt("fetch-retries", &c.Fetch.Retries); err != nil {
		return err
	}
	if err := setInt("fetch-breaker-failures", &c.Fetch.BreakerFailures); err != nil {
		return err
	}
	if err := setDuration("fetch-breaker-cooldown", &c.Fetch.BreakerCooldown); err != nil {
		return err
	}
	if err := setDuration("ttl", &c.Cache.TTL); err != nil {
		return err
	}
	return setDuration("fetch-timeout", &c.Fetch.Timeout)
}

// Validate reports settings that would make the program unusable. Cache sizing
// is not checked here since the cache normalizes it.
func (c *Config) Validate() error {
	if !slices.Contains(Sources, c.Source) {
		return errors.Newf("unknown source %q, expected one of %s", c.Source, strings.Join(Sources, ", "))
	}
	if c.Fetch.Retries < 0 {
		return errors.Newf("fetch retries cannot be negative")
	}
	if c.Fetch.BreakerFailures > 0 && c.Fetch.BreakerCooldown <= 0 {
		return errors.New("fetch.breaker_cooldown must be positive when fetch.breaker_failures is set")
	}
	switch c.Source {
	case "http":
		if c.HTTP.URL == "" {
			return errors.New("http source requires http.url")
		}
	case "etcd":
		if len(c.Etcd.Endpoints) == 0 {
			return errors.New("etcd source requires at least one endpoint")
		}
	}
	return nil
}

// CacheConfig returns the cache settings.
func (c *Config) CacheConfig() cache.CacheConfig {
	return cache.CacheConfig{
		MaxCacheSize: c.Cache.MaxCacheSize,
		CacheItemTTL: time.Duration(c.Cache.TTL),
	}
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
