package source

import (
	"context"
	"strconv"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// Redis is a Fetcher that reads parameters stored by Put. Each parameter is a
// hash holding the msgpack encoded Parameter in field "v" and its version
// counter in field "n". The counter is authoritative for Parameter.Version.
type Redis struct {
	client *redis.Client
	cfg    config
}

var _ cache.Fetcher = (*Redis)(nil)

// NewRedis returns a Redis source. The caller owns the redis.Client lifecycle.
func NewRedis(client *redis.Client, opts ...Option) *Redis {
	return &Redis{client: client, cfg: applyOptions(opts)}
}

func (r *Redis) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.queryTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, r.cfg.queryTimeout)
}

func (r *Redis) key(name string) string {
	if r.cfg.prefix == "" {
		return name
	}
	return r.cfg.prefix + ":" + name
}

func (r *Redis) GetParameter(ctx context.Context, name string) (string, error) {
	p, err := r.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return p.Value, nil
}

// Get returns the full stored Parameter for name.
func (r *Redis) Get(ctx context.Context, name string) (*Parameter, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()
	fields, err := r.client.HMGet(qctx, r.key(name), "v", "n").Result()
	if err != nil {
		return nil, transportError(err, "redis get %q", name)
	}
	data, ok := fields[0].(string)
	if !ok {
		return nil, notFoundError(redis.Nil, name)
	}
	var p Parameter
	if err := msgpack.Unmarshal([]byte(data), &p); err != nil {
		return nil, errors.Wrapf(err, "decoding parameter %q", name)
	}
	if n, ok := fields[1].(string); ok {
		if p.Version, err = strconv.ParseInt(n, 10, 64); err != nil {
			return nil, errors.Wrapf(err, "decoding version of %q", name)
		}
	}
	r.cfg.logger.Trace("redis read %s version %d", name, p.Version)
	return &p, nil
}

// Put stores value under name and returns the new version. The value and the
// version counter are written in one MULTI/EXEC transaction.
func (r *Redis) Put(ctx context.Context, name, value string) (int64, error) {
	data, err := msgpack.Marshal(&Parameter{
		Name:      name,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return 0, errors.Wrapf(err, "encoding parameter %q", name)
	}
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()
	k := r.key(name)
	var version *redis.IntCmd
	if _, err := r.client.TxPipelined(qctx, func(pipe redis.Pipeliner) error {
		version = pipe.HIncrBy(qctx, k, "n", 1)
		pipe.HSet(qctx, k, "v", data)
		return nil
	}); err != nil {
		return 0, transportError(err, "redis put %q", name)
	}
	return version.Val(), nil
}

// Delete removes name, reporting whether it existed.
func (r *Redis) Delete(ctx context.Context, name string) (bool, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()
	n, err := r.client.Del(qctx, r.key(name)).Result()
	if err != nil {
		return false, transportError(err, "redis delete %q", name)
	}
	return n > 0, nil
}
