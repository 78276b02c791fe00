// Package resilience wraps calls to the advisor agent with retry, circuit
// breaking, and concurrency capping. The ledger core never goes through
// this package; only the external HTTP boundary does.
package resilience

import (
	"context"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds the knobs shared by retry and bulkhead.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int
}

// RetryWithBackoff runs fn up to 1+MaxRetries times, doubling the delay
// after each failure and adding up to 50% jitter. Context cancellation
// aborts both between attempts and mid-wait.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	delay := cfg.InitialBackoff
	var err error
	for attempt := 0; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = fn(); err == nil {
			return nil
		}
		if attempt >= cfg.MaxRetries {
			return err
		}

		wait := delay
		if delay > 0 {
			wait += time.Duration(rand.Int63n(int64(delay)/2 + 1))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
}

// NewCircuitBreaker creates a breaker tuned for the advisor agent: trip on a
// 60% failure ratio over at least 5 requests, probe with 3 requests after
// 10s open, reset closed-state counters every 30s.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	})
}

// Bulkhead caps how many callers may hold a slot at once.
type Bulkhead struct {
	slots chan struct{}
}

// NewBulkhead creates a bulkhead with maxConcurrency slots.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Bulkhead{slots: make(chan struct{}, maxConcurrency)}
}

// Acquire takes a slot, blocking until one frees or ctx is done.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot. Callers must pair every successful Acquire with
// exactly one Release.
func (b *Bulkhead) Release() {
	<-b.slots
}
