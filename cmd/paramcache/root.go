package main

import (
	"context"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/agentuity/go-paramcache/config"
	"github.com/agentuity/go-paramcache/env"
	"github.com/agentuity/go-paramcache/logger"
	"github.com/agentuity/go-paramcache/metrics"
	"github.com/agentuity/go-paramcache/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "paramcache",
		Short:         "Look up configuration parameters through a TTL and LRU cache",
		Version:       source.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "path to a YAML config file (env PARAMCACHE_CONFIG)")
	flags.String("source", "", "parameter source: memory, redis, sqlite, http, etcd or ssm")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error or none")
	flags.String("log-format", "", "log format: console or json")
	flags.Int("max-cache-size", 0, "number of parameters kept in the cache")
	flags.String("ttl", "", "how long a fetched value is served from the cache, e.g. 30s or 1d")
	flags.String("redis-url", "", "redis connection url")
	flags.String("sqlite-path", "", "sqlite database path")
	flags.String("http-url", "", "base url of the parameter service")
	flags.String("http-token", "", "bearer token for the parameter service")
	flags.String("etcd-endpoints", "", "comma separated etcd endpoints")
	flags.String("metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")

	root.AddCommand(newGetCommand(), newPutCommand())
	return root
}

// loadConfig layers flags over the environment over the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(env.FlagOrEnv(cmd, "config", env.Name("config"), ""))
	if err != nil {
		return nil, err
	}
	cfg.Source = env.FlagOrEnv(cmd, "source", env.Name("source"), cfg.Source)
	cfg.LogLevel = env.FlagOrEnv(cmd, "log-level", logger.LevelEnvVar, cfg.LogLevel)
	cfg.Redis.URL = env.FlagOrEnv(cmd, "redis-url", env.Name("redis-url"), cfg.Redis.URL)
	cfg.SQLite.Path = env.FlagOrEnv(cmd, "sqlite-path", env.Name("sqlite-path"), cfg.SQLite.Path)
	cfg.HTTP.URL = env.FlagOrEnv(cmd, "http-url", env.Name("http-url"), cfg.HTTP.URL)
	cfg.HTTP.Token = env.FlagOrEnv(cmd, "http-token", env.Name("http-token"), cfg.HTTP.Token)
	cfg.MetricsAddr = env.FlagOrEnv(cmd, "metrics-addr", env.Name("metrics-addr"), cfg.MetricsAddr)
	if v := env.FlagOrEnv(cmd, "etcd-endpoints", env.Name("etcd-endpoints"), ""); v != "" {
		cfg.Etcd.Endpoints = config.SplitList(v)
	}
	if cfg.Cache.MaxCacheSize, err = env.FlagOrEnvInt(cmd, "max-cache-size", env.Name("max-cache-size"), cfg.Cache.MaxCacheSize); err != nil {
		return nil, err
	}
	ttl, err := env.FlagOrEnvDuration(cmd, "ttl", env.Name("ttl"), time.Duration(cfg.Cache.TTL))
	if err != nil {
		return nil, err
	}
	cfg.Cache.TTL = config.Duration(ttl)
	return cfg, cfg.Validate()
}

// app holds what a command needs once flags and config are resolved.
type app struct {
	cfg      *config.Config
	logger   logger.Logger
	backend  *backend
	shared   *cache.Shared
	registry *prometheus.Registry
	server   *metrics.Server
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := env.NewLogger(cmd, cfg.LogLevel)

	b, err := openBackend(cmd.Context(), cfg, log)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg, metrics.DefaultNamespace)

	c := cache.NewWithConfig(b.fetcher, cfg.CacheConfig(),
		cache.WithLogger(log),
		cache.WithObserver(collector),
	)
	rt := &app{
		cfg:      cfg,
		logger:   log,
		backend:  b,
		shared:   cache.NewShared(c),
		registry: reg,
	}
	if cfg.MetricsAddr != "" {
		rt.server = metrics.NewServer(cfg.MetricsAddr, reg, log)
		rt.server.StartAsync()
	}
	log.Debug("source=%s max_cache_size=%d ttl=%s", cfg.Source, c.Config().MaxCacheSize, c.Config().CacheItemTTL)
	return rt, nil
}

func (rt *app) Close() {
	if rt.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.server.Shutdown(ctx); err != nil {
			rt.logger.Warn("stopping metrics server: %s", err)
		}
	}
	if err := rt.backend.Close(); err != nil {
		rt.logger.Warn("closing %s source: %s", rt.cfg.Source, err)
	}
}
