package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// RetryPolicy configures the exponential backoff between attempts of the
// same task. The retry budget itself lives in Config.MaxRetries; the policy
// only shapes the waits.
type RetryPolicy struct {
	InitialInterval     time.Duration // First retry delay (default 100ms)
	MaxInterval         time.Duration // Delay ceiling (default 10s)
	Multiplier          float64       // Backoff multiplier (default 2.0)
	RandomizationFactor float64       // Jitter factor (default 0.5)
}

// DefaultRetryPolicy returns the default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         10 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// newBackOff builds a backoff source for one task.
func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.RandomizationFactor
	b.MaxElapsedTime = 0 // The budget is counted in attempts, not time
	b.Reset()
	return backoff.WithContext(b, ctx)
}

// retrySchedule tracks per-task backoff state across scheduling passes, so
// a task's second retry waits longer than its first.
type retrySchedule struct {
	mu     sync.Mutex
	policy RetryPolicy
	ctx    context.Context
	source map[string]backoff.BackOff
}

func newRetrySchedule(ctx context.Context, policy RetryPolicy) *retrySchedule {
	return &retrySchedule{
		policy: policy,
		ctx:    ctx,
		source: make(map[string]backoff.BackOff),
	}
}

// next returns the delay before the task's next attempt, or backoff.Stop
// when the run context is done.
func (s *retrySchedule) next(taskID string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.source[taskID]
	if !exists {
		b = s.policy.newBackOff(s.ctx)
		s.source[taskID] = b
	}
	return b.NextBackOff()
}

// BreakerPolicy configures the per-crew circuit breakers.
type BreakerPolicy struct {
	MaxRequests uint32        // Probe requests allowed while half-open (default 3)
	OpenFor     time.Duration // How long an open breaker rejects work (default 30s)
	TripAfter   uint32        // Consecutive failures before opening (default 5)
}

// DefaultBreakerPolicy returns the default breaker policy.
func DefaultBreakerPolicy() BreakerPolicy {
	return BreakerPolicy{
		MaxRequests: 3,
		OpenFor:     30 * time.Second,
		TripAfter:   5,
	}
}

// BreakerRegistry manages per-owner circuit breakers, so one melting-down
// crew stops receiving work without dragging the whole site down.
type BreakerRegistry struct {
	mu       sync.Mutex
	policy   BreakerPolicy
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewBreakerRegistry creates a new breaker registry.
func NewBreakerRegistry(policy BreakerPolicy) *BreakerRegistry {
	if policy.MaxRequests == 0 {
		policy.MaxRequests = DefaultBreakerPolicy().MaxRequests
	}
	if policy.OpenFor <= 0 {
		policy.OpenFor = DefaultBreakerPolicy().OpenFor
	}
	if policy.TripAfter == 0 {
		policy.TripAfter = DefaultBreakerPolicy().TripAfter
	}
	return &BreakerRegistry{
		policy:   policy,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Get returns the circuit breaker for the given owner, creating it on first
// use.
func (r *BreakerRegistry) Get(owner string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[owner]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        owner,
		MaxRequests: r.policy.MaxRequests,
		Interval:    0, // Don't clear counts automatically
		Timeout:     r.policy.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= r.policy.TripAfter
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %q: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			// Run teardown is not the crew's fault
			if err == nil {
				return true
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return false
		},
	})

	r.breakers[owner] = cb
	return cb
}
