package source

import (
	"context"
	"sync"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/cockroachdb/errors"
)

// ErrCircuitOpen is returned without calling the source while a Breaker is open.
// It is also marked with cache.ErrTransport.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerState is the state of a Breaker.
type BreakerState int32

const (
	StateClosed BreakerState = iota
	StateHalfOpen
	StateOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateHalfOpen:
		return "HALF_OPEN"
	case StateOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerConfig controls WithCircuitBreaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int
	// OpenTimeout is how long the circuit stays open before a trial call is let through.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of trial calls allowed in flight while half open.
	HalfOpenRequests int
	// SuccessThreshold is the number of trial successes that close the circuit.
	SuccessThreshold int
}

// DefaultBreakerConfig returns a config that opens after five failures for 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:      5,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
		SuccessThreshold: 1,
	}
}

// Breaker is a Fetcher that stops calling a failing source for a while. A
// missing parameter is a valid answer and does not count as a failure.
type Breaker struct {
	next cache.Fetcher
	cfg  BreakerConfig
	now  func() time.Time

	mu        sync.Mutex
	state     BreakerState
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
}

var _ cache.Fetcher = (*Breaker)(nil)

// WithCircuitBreaker wraps next in a Breaker.
func WithCircuitBreaker(next cache.Fetcher, cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}
	if cfg.HalfOpenRequests < 1 {
		cfg.HalfOpenRequests = 1
	}
	if cfg.SuccessThreshold < 1 {
		cfg.SuccessThreshold = 1
	}
	return &Breaker{next: next, cfg: cfg, now: time.Now}
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.close()
}

func (b *Breaker) close() {
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	b.inFlight = 0
}

func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.successes = 0
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return false
		}
		b.state = StateHalfOpen
		b.successes = 0
		b.inFlight = 0
		fallthrough
	case StateHalfOpen:
		if b.inFlight >= b.cfg.HalfOpenRequests {
			return false
		}
		b.inFlight++
	}
	return true
}

type outcome int

const (
	succeeded outcome = iota
	failed
	// abandoned calls were cancelled by the caller and say nothing about the source.
	abandoned
)

func classify(err error) outcome {
	switch {
	case err == nil, cache.IsNotFound(err):
		return succeeded
	case errors.Is(err, context.Canceled):
		return abandoned
	}
	return failed
}

func (b *Breaker) done(result outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateClosed:
		switch result {
		case succeeded:
			b.failures = 0
		case failed:
			b.failures++
			if b.failures >= b.cfg.MaxFailures {
				b.open()
			}
		}
	case StateHalfOpen:
		b.inFlight--
		switch result {
		case failed:
			b.open()
		case succeeded:
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.close()
			}
		}
	}
}

func (b *Breaker) GetParameter(ctx context.Context, name string) (string, error) {
	if !b.allow() {
		return "", errors.Mark(errors.Wrapf(ErrCircuitOpen, "fetching %q", name), cache.ErrTransport)
	}
	val, err := b.next.GetParameter(ctx, name)
	b.done(classify(err))
	return val, err
}
