package exporters

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/kbglow/internal/events"
	"github.com/smazurov/kbglow/internal/metrics"
)

type mockEventBus struct {
	mu        sync.Mutex
	events    []events.Event
	published chan struct{}
}

func newMockEventBus() *mockEventBus {
	return &mockEventBus{
		events:    make([]events.Event, 0),
		published: make(chan struct{}, 100),
	}
}

func (m *mockEventBus) Publish(ev events.Event) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	select {
	case m.published <- struct{}{}:
	default:
	}
}

func (m *mockEventBus) getEvents() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]events.Event, len(m.events))
	copy(result, m.events)
	return result
}

func TestSSEExporterPublishesMetrics(t *testing.T) {
	effect := "sse-test-effect"
	metrics.DeleteEffectMetrics(effect)

	// Set up metrics
	metrics.SetEffectActive(effect, true)
	for range 30 {
		metrics.RecordEffectFrame(effect)
	}
	metrics.RecordEffectPushFailure(effect)
	metrics.RecordEffectPushFailure(effect)

	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)
	exporter.interval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	exporter.Start(ctx)

	// Wait for at least one publish cycle
	select {
	case <-mock.published:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for metrics publish")
	}

	cancel()
	exporter.Stop()

	evts := mock.getEvents()
	if len(evts) == 0 {
		t.Fatal("expected at least one event")
	}

	var found bool
	for _, ev := range evts {
		if eme, ok := ev.(events.EffectMetricsEvent); ok {
			if eme.Effect == effect {
				found = true
				if eme.Frames != "30" {
					t.Errorf("Frames = %q, want \"30\"", eme.Frames)
				}
				if eme.PushFailures != "2" {
					t.Errorf("PushFailures = %q, want \"2\"", eme.PushFailures)
				}
				break
			}
		}
	}

	if !found {
		t.Error("expected EffectMetricsEvent for test effect")
	}

	metrics.DeleteEffectMetrics(effect)
}

func TestSSEExporterSkipsInactiveEffects(t *testing.T) {
	effect := "sse-inactive-test"
	metrics.DeleteEffectMetrics(effect)
	metrics.RecordEffectFrame(effect)
	metrics.SetEffectActive(effect, false)
	defer metrics.DeleteEffectMetrics(effect)

	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)
	exporter.interval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	exporter.Start(ctx)

	// Wait for at least one publish cycle
	time.Sleep(50 * time.Millisecond)

	cancel()
	exporter.Stop()

	// Verify no events were published for the inactive effect
	for _, ev := range mock.getEvents() {
		if eme, ok := ev.(events.EffectMetricsEvent); ok {
			if eme.Effect == effect {
				t.Error("expected no events for inactive effect")
			}
		}
	}
}

func TestSSEExporterStopIdempotent(t *testing.T) {
	effect := "sse-idempotent-test"
	metrics.SetEffectActive(effect, true)
	defer metrics.DeleteEffectMetrics(effect)

	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)
	exporter.interval = 10 * time.Millisecond

	ctx := context.Background()
	exporter.Start(ctx)

	exporter.Stop()
	exporter.Stop()
}
