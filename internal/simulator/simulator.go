// Package simulator provides the stand-in backend boundary used by services
// whose real backend does not exist yet. Every operation that would hit the
// network suspends on a Backend round-trip, which injects configurable latency
// and failures. Tests run with zero latency and scripted failures.
package simulator

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrBackendUnavailable is returned when the simulated backend fails a
// round-trip, either randomly (failure rate) or by script (FailNext).
var ErrBackendUnavailable = errors.New("simulated backend unavailable")

// Backend simulates a remote backend round-trip.
type Backend struct {
	mu       sync.Mutex
	latency  time.Duration
	failRate float64
	rng      *rand.Rand
	queued   []error
}

// Option configures a Backend.
type Option func(*Backend)

// WithLatency sets the base latency applied to every round-trip.
func WithLatency(d time.Duration) Option {
	return func(b *Backend) { b.latency = d }
}

// WithFailRate sets the probability (0.0-1.0) that a round-trip fails.
func WithFailRate(rate float64) Option {
	return func(b *Backend) { b.failRate = rate }
}

// WithSeed fixes the random source, making failure injection deterministic.
func WithSeed(seed int64) Option {
	return func(b *Backend) { b.rng = rand.New(rand.NewSource(seed)) }
}

// New creates a Backend. The zero configuration has no latency and never
// fails, which is what tests want.
func New(opts ...Option) *Backend {
	b := &Backend{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FailNext queues an error to be returned by an upcoming round-trip. Queued
// errors are consumed in order before the random failure rate applies.
func (b *Backend) FailNext(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queued = append(b.queued, err)
}

// RoundTrip blocks for the configured latency and then reports success or
// failure. Once issued it always runs to completion: callers may stop waiting,
// but the trip itself is not cancellable, so state committed after it is never
// half-applied.
func (b *Backend) RoundTrip(ctx context.Context) error {
	b.mu.Lock()
	latency := b.latency
	var scripted error
	if len(b.queued) > 0 {
		scripted = b.queued[0]
		b.queued = b.queued[1:]
	}
	failed := scripted == nil && b.failRate > 0 && b.rng.Float64() < b.failRate
	b.mu.Unlock()

	if latency > 0 {
		time.Sleep(latency)
	}

	if scripted != nil {
		return scripted
	}
	if failed {
		return ErrBackendUnavailable
	}
	return nil
}

// Clock is an offsettable clock shared by simulated services, so tests can
// move time forward without sleeping.
type Clock struct {
	mu     sync.RWMutex
	offset time.Duration
}

// NewClock creates a Clock with no offset.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().Add(c.offset)
}

// Advance moves the simulated clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

// Reset clears the offset.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
}
