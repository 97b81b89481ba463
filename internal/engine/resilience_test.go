package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

func TestRetryScheduleGrowsPerTask(t *testing.T) {
	policy := RetryPolicy{
		InitialInterval:     10 * time.Millisecond,
		MaxInterval:         time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0, // Deterministic intervals for the assertions
	}
	waits := newRetrySchedule(context.Background(), policy)

	if got := waits.next("a"); got != 10*time.Millisecond {
		t.Errorf("first wait for a = %v, want 10ms", got)
	}
	if got := waits.next("a"); got != 20*time.Millisecond {
		t.Errorf("second wait for a = %v, want 20ms", got)
	}

	// Each task carries its own backoff state.
	if got := waits.next("b"); got != 10*time.Millisecond {
		t.Errorf("first wait for b = %v, want 10ms", got)
	}
}

func TestRetryScheduleCapsAtMaxInterval(t *testing.T) {
	policy := RetryPolicy{
		InitialInterval:     10 * time.Millisecond,
		MaxInterval:         25 * time.Millisecond,
		Multiplier:          2.0,
		RandomizationFactor: 0,
	}
	waits := newRetrySchedule(context.Background(), policy)

	var last time.Duration
	for i := 0; i < 5; i++ {
		last = waits.next("a")
	}
	if last != 25*time.Millisecond {
		t.Errorf("wait after 5 retries = %v, want the 25ms cap", last)
	}
}

func TestRetryScheduleStopsWhenRunEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	waits := newRetrySchedule(ctx, DefaultRetryPolicy())
	if got := waits.next("a"); got != backoff.Stop {
		t.Errorf("next() after cancel = %v, want backoff.Stop", got)
	}
}

func TestBreakerRegistrySharesPerOwner(t *testing.T) {
	reg := NewBreakerRegistry(DefaultBreakerPolicy())

	mason := reg.Get("mason")
	if mason == nil {
		t.Fatal("Get(mason) = nil")
	}
	if again := reg.Get("mason"); again != mason {
		t.Error("Get(mason) returned a different breaker on second call")
	}
	if roofer := reg.Get("roofer"); roofer == mason {
		t.Error("mason and roofer share a breaker")
	}
	if name := mason.Name(); name != "mason" {
		t.Errorf("breaker name = %q, want %q", name, "mason")
	}
}

func TestBreakerTripsOnConsecutiveFailures(t *testing.T) {
	reg := NewBreakerRegistry(BreakerPolicy{MaxRequests: 1, OpenFor: time.Minute, TripAfter: 2})
	cb := reg.Get("mason")

	boom := errors.New("wall collapsed")
	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(func() (interface{}, error) { return nil, boom }); !errors.Is(err, boom) {
			t.Fatalf("Execute() error = %v, want %v", err, boom)
		}
	}

	if state := cb.State(); state != gobreaker.StateOpen {
		t.Errorf("breaker state = %s, want open", state)
	}
	if _, err := cb.Execute(func() (interface{}, error) { return nil, nil }); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Execute() on open breaker error = %v, want %v", err, gobreaker.ErrOpenState)
	}
}

func TestBreakerIgnoresRunTeardownErrors(t *testing.T) {
	reg := NewBreakerRegistry(BreakerPolicy{TripAfter: 2})
	cb := reg.Get("mason")

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, context.Canceled })
	}

	if state := cb.State(); state != gobreaker.StateClosed {
		t.Errorf("breaker state after cancellations = %s, want closed", state)
	}
}

func TestNewBreakerRegistryFillsDefaults(t *testing.T) {
	reg := NewBreakerRegistry(BreakerPolicy{})

	def := DefaultBreakerPolicy()
	if reg.policy != def {
		t.Errorf("zero policy filled as %+v, want %+v", reg.policy, def)
	}
}
