package cache

import "context"

// Fetcher retrieves the current value of a parameter from its source of truth.
// Implementations should mark a missing parameter with ErrParameterNotFound and
// connectivity or auth failures with ErrTransport.
type Fetcher interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// FetcherFunc adapts an ordinary function to a Fetcher.
type FetcherFunc func(ctx context.Context, name string) (string, error)

var _ Fetcher = FetcherFunc(nil)

func (f FetcherFunc) GetParameter(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}
