package source

import (
	"context"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/agentuity/go-paramcache/logger"
	"github.com/cockroachdb/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/namespace"
)

// Etcd is a Fetcher that reads the value of the etcd key named after the parameter.
type Etcd struct {
	kv     clientv3.KV
	client *clientv3.Client
	cfg    config
}

var _ cache.Fetcher = (*Etcd)(nil)

// NewEtcd returns an Etcd source reading through kv. WithPrefix namespaces the keys.
func NewEtcd(kv clientv3.KV, opts ...Option) *Etcd {
	cfg := applyOptions(opts)
	if cfg.prefix != "" {
		kv = namespace.NewKV(kv, cfg.prefix)
	}
	return &Etcd{kv: kv, cfg: cfg}
}

// DialEtcd connects to endpoints and returns an Etcd source that owns the
// connection. Call Close when done.
func DialEtcd(ctx context.Context, endpoints []string, opts ...Option) (*Etcd, error) {
	cfg := applyOptions(opts)
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		TLS:         cfg.tlsConfig,
		DialTimeout: cfg.dialTimeout,
		Context:     ctx,
		Logger:      logger.ToZap(cfg.logger.WithPrefix("[etcd]")),
	})
	if err != nil {
		return nil, transportError(err, "connecting to etcd")
	}
	e := NewEtcd(cli.KV, opts...)
	e.client = cli
	return e, nil
}

func (e *Etcd) GetParameter(ctx context.Context, name string) (string, error) {
	qctx := ctx
	if e.cfg.queryTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, e.cfg.queryTimeout)
		defer cancel()
	}
	resp, err := e.kv.Get(qctx, name)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", transportError(err, "etcd get %q", name)
	}
	if len(resp.Kvs) == 0 {
		return "", cache.NotFound(name)
	}
	kv := resp.Kvs[0]
	e.cfg.logger.Trace("etcd read %s revision %d", name, kv.ModRevision)
	return string(kv.Value), nil
}

// Close closes the connection opened by DialEtcd. It is a no-op for sources built with NewEtcd.
func (e *Etcd) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}
