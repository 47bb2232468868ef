package hardware

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errBoom = errors.New("boom")

// newTestBreaker returns a breaker with a controllable clock.
func newTestBreaker(threshold int, cooldown time.Duration) (*Breaker, *time.Time) {
	b := NewBreaker("test", threshold, cooldown, testLogger())
	now := time.Now()
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		if b.State() != BreakerClosed {
			t.Fatalf("breaker opened early after %d failures", i)
		}
		if err := b.Do(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("expected operation error, got %v", err)
		}
	}

	if b.State() != BreakerOpen {
		t.Errorf("expected open after 3 failures, got %v", b.State())
	}

	// Open breaker short-circuits without invoking the operation.
	called := false
	err := b.Do(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("operation invoked while breaker open")
	}
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	b.Do(func() error { return errBoom })
	b.Do(func() error { return errBoom })
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The counter reset; two more failures must not open the breaker.
	b.Do(func() error { return errBoom })
	b.Do(func() error { return errBoom })
	if b.State() != BreakerClosed {
		t.Errorf("expected closed, got %v", b.State())
	}
}

func TestBreakerHalfOpenAfterCooldown(t *testing.T) {
	b, now := newTestBreaker(1, 30*time.Second)

	b.Do(func() error { return errBoom })
	if b.State() != BreakerOpen {
		t.Fatalf("expected open, got %v", b.State())
	}

	*now = now.Add(31 * time.Second)
	if b.State() != BreakerHalfOpen {
		t.Errorf("expected half-open after cooldown, got %v", b.State())
	}

	// A successful trial call closes the breaker.
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.State() != BreakerClosed {
		t.Errorf("expected closed after recovery, got %v", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(1, 30*time.Second)

	b.Do(func() error { return errBoom })
	*now = now.Add(31 * time.Second)

	if err := b.Do(func() error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("expected trial call to run, got %v", err)
	}
	if b.State() != BreakerOpen {
		t.Errorf("expected reopen after failed trial, got %v", b.State())
	}

	// And the cooldown restarts from the new failure.
	if err := b.Do(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected short-circuit, got %v", err)
	}
}

func TestBreakerTransitionCallback(t *testing.T) {
	b, now := newTestBreaker(1, 30*time.Second)

	type change struct{ from, to BreakerState }
	var seen []change
	b.OnTransition(func(_ string, from, to BreakerState) {
		seen = append(seen, change{from, to})
	})

	b.Do(func() error { return errBoom })
	*now = now.Add(31 * time.Second)
	b.Do(func() error { return nil })

	want := []change{
		{BreakerClosed, BreakerOpen},
		{BreakerOpen, BreakerHalfOpen},
		{BreakerHalfOpen, BreakerClosed},
	}
	if len(seen) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %v", len(want), len(seen), seen)
	}
	for i, w := range want {
		if seen[i] != w {
			t.Errorf("transition %d: expected %v->%v, got %v->%v",
				i, w.from, w.to, seen[i].from, seen[i].to)
		}
	}
}

func TestBreakerStateStrings(t *testing.T) {
	tests := []struct {
		state BreakerState
		want  string
	}{
		{BreakerClosed, "closed"},
		{BreakerOpen, "open"},
		{BreakerHalfOpen, "half-open"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
