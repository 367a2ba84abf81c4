package main

import (
	"context"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/agentuity/go-paramcache/config"
	"github.com/agentuity/go-paramcache/logger"
	"github.com/agentuity/go-paramcache/source"
	"github.com/agentuity/go-paramcache/tui"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// writer is implemented by sources that can store parameters.
type writer interface {
	Put(ctx context.Context, name, value string) (int64, error)
}

type backend struct {
	// fetcher is the source wrapped in the configured decorators.
	fetcher cache.Fetcher
	// writer is nil for read-only sources.
	writer writer
	closers []func() error
}

func (b *backend) Close() error {
	var errs error
	for _, fn := range b.closers {
		errs = errors.CombineErrors(errs, fn())
	}
	return errs
}

func openBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (*backend, error) {
	b := &backend{}
	opts := []source.Option{source.WithLogger(log.WithPrefix("[" + cfg.Source + "]"))}

	var raw cache.Fetcher
	switch cfg.Source {
	case "memory":
		raw = source.NewMemory(cfg.Parameters)
	case "redis":
		ropts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, errors.Wrap(err, "parsing redis url")
		}
		if masked, err := tui.MaskURL(cfg.Redis.URL); err == nil {
			log.Debug("connecting to redis at %s", masked)
		}
		client := redis.NewClient(ropts)
		b.closers = append(b.closers, client.Close)
		r := source.NewRedis(client, append(opts, source.WithPrefix(cfg.Redis.Prefix))...)
		raw, b.writer = r, r
	case "sqlite":
		s, err := source.NewSQLite(ctx, cfg.SQLite.Path, opts...)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s.Close)
		raw, b.writer = s, s
	case "http":
		hopts := append(opts, source.WithToken(cfg.HTTP.Token))
		if cfg.Fetch.Retries > 0 {
			// WithRetry below owns the retry policy
			hopts = append(hopts, source.WithHTTPRetries(1))
		}
		h, err := source.NewHTTP(cfg.HTTP.URL, hopts...)
		if err != nil {
			return nil, err
		}
		raw = h
	case "etcd":
		e, err := source.DialEtcd(ctx, cfg.Etcd.Endpoints, append(opts, source.WithPrefix(cfg.Etcd.Prefix))...)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, e.Close)
		raw = e
	case "ssm":
		s, err := source.NewSSMFromEnv(ctx, append(opts, source.WithDecryption(cfg.SSM.WithDecryption))...)
		if err != nil {
			return nil, err
		}
		raw = s
	default:
		return nil, errors.Newf("unknown source %q", cfg.Source)
	}

	f := raw
	if timeout := time.Duration(cfg.Fetch.Timeout); timeout > 0 {
		f = source.WithTimeout(f, timeout)
	}
	if cfg.Fetch.Retries > 0 {
		rc := source.DefaultRetryConfig()
		rc.MaxRetries = cfg.Fetch.Retries
		f = source.WithRetry(f, rc)
	}
	if cfg.Fetch.BreakerFailures > 0 {
		bc := source.DefaultBreakerConfig()
		bc.MaxFailures = cfg.Fetch.BreakerFailures
		bc.OpenTimeout = time.Duration(cfg.Fetch.BreakerCooldown)
		f = source.WithCircuitBreaker(f, bc)
	}
	b.fetcher = source.WithTracing(f, nil, cfg.Source)
	return b, nil
}
