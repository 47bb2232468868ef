package effects

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/kbglow/internal/events"
	"github.com/smazurov/kbglow/internal/hardware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingHardware accepts every push and remembers the last frame.
type recordingHardware struct {
	mu     sync.Mutex
	zones  []hardware.Color
	pushes int
	reject bool
}

func newRecordingHardware() *recordingHardware {
	return &recordingHardware{zones: make([]hardware.Color, hardware.NumZones)}
}

func (r *recordingHardware) SetAllColor(_ context.Context, c hardware.Color) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject {
		return false
	}
	for i := range r.zones {
		r.zones[i] = c
	}
	r.pushes++
	return true
}

func (r *recordingHardware) SetZoneColors(_ context.Context, colors []hardware.Color) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject {
		return false
	}
	copy(r.zones, colors)
	r.pushes++
	return true
}

func (r *recordingHardware) ZoneColors() []hardware.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]hardware.Color, len(r.zones))
	copy(out, r.zones)
	return out
}

func (r *recordingHardware) pushCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushes
}

func (r *recordingHardware) setReject(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reject = v
}

func TestManagerStartUnknownEffect(t *testing.T) {
	m := NewManager(newRecordingHardware(), nil, testLogger())
	if m.Start("no-such-effect", Params{}) {
		t.Error("unknown effect must not start")
	}
	if m.IsRunning() {
		t.Error("nothing should be running")
	}
}

func TestManagerSingleActiveEffect(t *testing.T) {
	hw := newRecordingHardware()
	m := NewManager(hw, nil, testLogger())
	defer m.Stop()

	if !m.Start("breathing", Params{Speed: 10, Color: hardware.Color{R: 255}}) {
		t.Fatal("breathing did not start")
	}
	if got := m.ActiveEffect(); got != "breathing" {
		t.Fatalf("expected breathing active, got %q", got)
	}

	// Starting a second effect replaces the first.
	if !m.Start("color_cycle", Params{Speed: 10}) {
		t.Fatal("color_cycle did not start")
	}
	if got := m.ActiveEffect(); got != "color_cycle" {
		t.Errorf("expected color_cycle active, got %q", got)
	}
}

func TestManagerStopJoinsGoroutine(t *testing.T) {
	hw := newRecordingHardware()
	m := NewManager(hw, nil, testLogger())

	if !m.Start("strobe", Params{Speed: 10, Color: hardware.Color{G: 255}}) {
		t.Fatal("strobe did not start")
	}

	// Let a few frames land.
	deadline := time.Now().Add(2 * time.Second)
	for hw.pushCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hw.pushCount() < 3 {
		t.Fatal("effect pushed no frames")
	}

	m.Stop()
	if m.IsRunning() {
		t.Error("effect still running after Stop")
	}

	// No further frames after the join returned.
	count := hw.pushCount()
	time.Sleep(100 * time.Millisecond)
	if hw.pushCount() != count {
		t.Errorf("frames pushed after Stop: %d -> %d", count, hw.pushCount())
	}
}

func TestManagerStopIdempotent(t *testing.T) {
	m := NewManager(newRecordingHardware(), nil, testLogger())
	m.Stop()
	m.Stop()
}

func TestManagerStaticEffectLeavesNoSession(t *testing.T) {
	hw := newRecordingHardware()
	m := NewManager(hw, nil, testLogger())

	want := hardware.Color{R: 0x11, G: 0x22, B: 0x33}
	if !m.Start("static_color", Params{Color: want}) {
		t.Fatal("static_color did not apply")
	}

	if m.IsRunning() {
		t.Error("static apply must not leave a session running")
	}
	for i, c := range hw.ZoneColors() {
		if c != want {
			t.Errorf("zone %d: expected %v, got %v", i, want, c)
		}
	}
}

func TestManagerStaticRejectedByHardware(t *testing.T) {
	hw := newRecordingHardware()
	hw.setReject(true)
	m := NewManager(hw, nil, testLogger())

	if m.Start("static_color", Params{Color: hardware.Color{R: 255}}) {
		t.Error("rejected push must report false")
	}
}

func TestManagerAbortsAfterRepeatedFailures(t *testing.T) {
	hw := newRecordingHardware()
	hw.setReject(true)
	m := NewManager(hw, nil, testLogger())
	defer m.Stop()

	if !m.Start("strobe", Params{Speed: 10, Color: hardware.Color{B: 255}}) {
		t.Fatal("strobe did not start")
	}

	// With every push rejected the loop gives up on its own after the
	// failure limit, pausing between attempts.
	deadline := time.Now().Add(10 * time.Second)
	for m.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if m.IsRunning() {
		t.Error("effect did not abort after repeated push failures")
	}
}

func TestManagerSingleStopEventAfterAbort(t *testing.T) {
	hw := newRecordingHardware()
	hw.setReject(true)
	bus := events.New()
	m := NewManager(hw, bus, testLogger())
	defer m.Stop()

	stopEvents := make(chan events.EffectStoppedEvent, 8)
	unsub := bus.Subscribe(func(e events.EffectStoppedEvent) { stopEvents <- e })
	defer unsub()

	if !m.Start("strobe", Params{Speed: 10, Color: hardware.Color{B: 255}}) {
		t.Fatal("strobe did not start")
	}

	deadline := time.Now().Add(10 * time.Second)
	for m.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if m.IsRunning() {
		t.Fatal("effect did not abort after repeated push failures")
	}

	// Stop after the self-abort must not publish a second stop event
	// for the same session.
	m.Stop()

	select {
	case e := <-stopEvents:
		if e.Reason != "aborted" {
			t.Errorf("reason = %q, want aborted", e.Reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no stop event published")
	}

	select {
	case e := <-stopEvents:
		t.Errorf("unexpected second stop event: %+v", e)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestManagerUpdateSpeed(t *testing.T) {
	hw := newRecordingHardware()
	m := NewManager(hw, nil, testLogger())
	defer m.Stop()

	if !m.Start("breathing", Params{Speed: 3, Color: hardware.Color{R: 255}}) {
		t.Fatal("breathing did not start")
	}
	if !m.UpdateSpeed(8) {
		t.Fatal("update on running effect failed")
	}

	params, running := m.ActiveParams()
	if !running {
		t.Fatal("effect stopped by speed update")
	}
	if params.Speed != 8 {
		t.Errorf("expected speed 8, got %d", params.Speed)
	}
	if got := m.ActiveEffect(); got != "breathing" {
		t.Errorf("effect changed by speed update: %q", got)
	}
}

func TestManagerUpdateWithoutEffect(t *testing.T) {
	m := NewManager(newRecordingHardware(), nil, testLogger())
	if m.UpdateSpeed(5) {
		t.Error("speed update must fail with nothing running")
	}
	if m.UpdateColor(hardware.Color{R: 255}) {
		t.Error("color update must fail with nothing running")
	}
}

func TestManagerActiveParamsCopy(t *testing.T) {
	m := NewManager(newRecordingHardware(), nil, testLogger())
	defer m.Stop()

	if _, running := m.ActiveParams(); running {
		t.Error("no params expected before start")
	}

	m.Start("pulse", Params{Speed: 4, Color: hardware.Color{G: 200}})
	params, running := m.ActiveParams()
	if !running {
		t.Fatal("expected running effect")
	}
	if params.Speed != 4 || params.Color.G != 200 {
		t.Errorf("unexpected params: %+v", params)
	}
}
