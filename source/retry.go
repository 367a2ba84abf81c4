package source

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/cockroachdb/errors"
)

// RetryConfig controls WithRetry.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the wait between attempts.
	MaxBackoff time.Duration
	// BackoffMultiplier grows the wait after each retry.
	BackoffMultiplier float64
	// Jitter randomizes each wait between half and all of its computed value.
	Jitter bool
	// Retryable decides whether an error is worth another attempt. Defaults to
	// DefaultRetryable.
	Retryable func(error) bool
}

// DefaultRetryConfig returns a config with three retries starting at 100ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
		Retryable:         DefaultRetryable,
	}
}

// DefaultRetryable retries everything except a missing parameter and a
// cancelled or expired context.
func DefaultRetryable(err error) bool {
	return !cache.IsNotFound(err) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func (rc RetryConfig) backoff(retry int) time.Duration {
	mult := rc.BackoffMultiplier
	if mult < 1 {
		mult = 1
	}
	if rc.InitialBackoff <= 0 {
		return 0
	}
	// computed in float space; the product overflows int64 after a few dozen retries
	f := float64(rc.InitialBackoff) * math.Pow(mult, float64(retry))
	limit := float64(math.MaxInt64)
	if rc.MaxBackoff > 0 {
		limit = float64(rc.MaxBackoff)
	}
	var wait time.Duration
	switch {
	case f >= limit && rc.MaxBackoff > 0:
		wait = rc.MaxBackoff
	case f >= limit:
		wait = math.MaxInt64
	default:
		wait = time.Duration(f)
	}
	if rc.Jitter && wait > 0 {
		half := wait / 2
		wait = half + time.Duration(rand.Int64N(int64(half)+1))
	}
	return wait
}

type retrying struct {
	next cache.Fetcher
	cfg  RetryConfig
}

// WithRetry returns a Fetcher that retries next according to cfg. The error of
// the last attempt is returned unchanged.
func WithRetry(next cache.Fetcher, cfg RetryConfig) cache.Fetcher {
	if cfg.Retryable == nil {
		cfg.Retryable = DefaultRetryable
	}
	return &retrying{next: next, cfg: cfg}
}

func (r *retrying) GetParameter(ctx context.Context, name string) (string, error) {
	var err error
	for attempt := 0; ; attempt++ {
		var val string
		val, err = r.next.GetParameter(ctx, name)
		if err == nil {
			return val, nil
		}
		if attempt >= r.cfg.MaxRetries || !r.cfg.Retryable(err) {
			return "", err
		}
		timer := time.NewTimer(r.cfg.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", err
		case <-timer.C:
		}
	}
}

type timeout struct {
	next cache.Fetcher
	d    time.Duration
}

// WithTimeout returns a Fetcher that bounds each call to next by d.
func WithTimeout(next cache.Fetcher, d time.Duration) cache.Fetcher {
	return &timeout{next: next, d: d}
}

func (t *timeout) GetParameter(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.GetParameter(ctx, name)
}
