package source

import (
	"context"

	"github.com/agentuity/go-paramcache/cache"
)

type chain struct {
	fetchers []cache.Fetcher
}

var _ cache.Fetcher = (*chain)(nil)

// NewChain returns a Fetcher that asks each fetcher in order and returns the
// first value found. Only a not-found error moves on to the next fetcher; any
// other error is returned immediately. Panics if no fetchers are given.
func NewChain(fetchers ...cache.Fetcher) cache.Fetcher {
	if len(fetchers) == 0 {
		panic("source: NewChain requires at least one fetcher")
	}
	return &chain{fetchers: fetchers}
}

func (c *chain) GetParameter(ctx context.Context, name string) (string, error) {
	var lastErr error
	for _, f := range c.fetchers {
		val, err := f.GetParameter(ctx, name)
		if err == nil {
			return val, nil
		}
		if !cache.IsNotFound(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}
