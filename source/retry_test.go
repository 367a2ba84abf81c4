package source

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

type flakyFetcher struct {
	failures int
	err      error
	calls    int
}

func (f *flakyFetcher) GetParameter(ctx context.Context, name string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "value-" + name, nil
}

func fastRetry(n int) RetryConfig {
	return RetryConfig{
		MaxRetries:        n,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestWithRetrySucceeds(t *testing.T) {
	f := &flakyFetcher{failures: 2, err: errors.New("temporary")}
	val, err := WithRetry(f, fastRetry(3)).GetParameter(context.Background(), "a")
	assert.NoError(t, err)
	assert.Equal(t, "value-a", val)
	assert.Equal(t, 3, f.calls)
}

func TestWithRetryReturnsLastError(t *testing.T) {
	boom := errors.New("still broken")
	f := &flakyFetcher{failures: 10, err: boom}
	_, err := WithRetry(f, fastRetry(2)).GetParameter(context.Background(), "a")
	assert.Equal(t, boom, err)
	assert.Equal(t, 3, f.calls)
}

func TestWithRetrySkipsNotFound(t *testing.T) {
	f := &flakyFetcher{failures: 10, err: cache.NotFound("a")}
	_, err := WithRetry(f, fastRetry(5)).GetParameter(context.Background(), "a")
	assert.True(t, cache.IsNotFound(err))
	assert.Equal(t, 1, f.calls)
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	boom := errors.New("temporary")
	f := &flakyFetcher{failures: 10, err: boom}
	cfg := fastRetry(100)
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := WithRetry(f, cfg).GetParameter(ctx, "a")
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, f.calls)
}

func TestBackoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, BackoffMultiplier: 2}
	assert.Equal(t, 100*time.Millisecond, cfg.backoff(0))
	assert.Equal(t, 400*time.Millisecond, cfg.backoff(2))
	assert.Equal(t, time.Second, cfg.backoff(10))
	assert.Equal(t, time.Second, cfg.backoff(37))
	assert.Equal(t, time.Second, cfg.backoff(100))

	def := DefaultRetryConfig()
	def.Jitter = false
	assert.Equal(t, def.MaxBackoff, def.backoff(36))
	assert.Equal(t, def.MaxBackoff, def.backoff(37))
	assert.Equal(t, def.MaxBackoff, def.backoff(1000))

	uncapped := RetryConfig{InitialBackoff: time.Second, BackoffMultiplier: 2}
	assert.Equal(t, time.Duration(math.MaxInt64), uncapped.backoff(100))
	assert.Equal(t, time.Duration(0), RetryConfig{BackoffMultiplier: 2}.backoff(1000))

	cfg.Jitter = true
	for range 20 {
		wait := cfg.backoff(1)
		assert.GreaterOrEqual(t, wait, 100*time.Millisecond)
		assert.LessOrEqual(t, wait, 200*time.Millisecond)
	}
}

func TestWithTimeout(t *testing.T) {
	slow := cache.FetcherFunc(func(ctx context.Context, name string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	_, err := WithTimeout(slow, 10*time.Millisecond).GetParameter(context.Background(), "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	fast := NewMemory(map[string]string{"a": "1"})
	val, err := WithTimeout(fast, time.Second).GetParameter(context.Background(), "a")
	assert.NoError(t, err)
	assert.Equal(t, "1", val)
}
