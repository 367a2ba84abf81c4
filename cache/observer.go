package cache

import "time"

// MissReason explains why a lookup went to the Fetcher.
type MissReason string

const (
	MissAbsent  MissReason = "absent"
	MissExpired MissReason = "expired"
	MissForced  MissReason = "forced"
)

// Observer receives notifications about cache activity. Implementations must not
// call back into the ParameterCache.
type Observer interface {
	// Hit is called when a fresh cached value is returned.
	Hit(name string)
	// Miss is called before the Fetcher is invoked.
	Miss(name string, reason MissReason)
	// Fetched is called after a successful fetch has been stored.
	Fetched(name string, elapsed time.Duration)
	// FetchFailed is called when the Fetcher returns an error.
	FetchFailed(name string, err error, elapsed time.Duration)
	// Evicted is called when capacity pressure removes the least recently used entry.
	Evicted(name string)
}

type nopObserver struct{}

func (nopObserver) Hit(string) {}
func (nopObserver) Miss(string, MissReason) {}
func (nopObserver) Fetched(string, time.Duration) {}
func (nopObserver) FetchFailed(string, error, time.Duration) {}
func (nopObserver) Evicted(string) {}
