package hardware

import (
	"context"
	"sync"
	"testing"
	"time"
)

// scriptedBackend is a configurable in-memory backend for controller
// tests. Zero value supports everything and succeeds.
type scriptedBackend struct {
	mu sync.Mutex

	name       string
	caps       Capabilities
	failZones  map[int]bool
	failAll    bool
	zoneWrites []int
	allWrites  []Color
	brightness int
}

func newScriptedBackend(name string) *scriptedBackend {
	return &scriptedBackend{
		name: name,
		caps: Capabilities{
			OpSetZone:    true,
			OpSetAll:     true,
			OpBrightness: true,
		},
	}
}

func (b *scriptedBackend) Name() string { return b.name }

func (b *scriptedBackend) Probe(_ context.Context) Capabilities {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caps
}

func (b *scriptedBackend) SetZone(_ context.Context, zone int, _ Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failZones[zone] {
		return errBoom
	}
	b.zoneWrites = append(b.zoneWrites, zone)
	return nil
}

func (b *scriptedBackend) SetAll(_ context.Context, c Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failAll {
		return errBoom
	}
	b.allWrites = append(b.allWrites, c)
	return nil
}

func (b *scriptedBackend) SetBrightness(_ context.Context, pct int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.brightness = pct
	return nil
}

func newReadyController(t *testing.T, backends ...Backend) *Controller {
	t.Helper()
	c := NewController(backends, "", nil, testLogger())
	if !c.WaitForDetection(2 * time.Second) {
		t.Fatal("detection did not finish")
	}
	return c
}

func TestControllerSetZoneColorUpdatesCache(t *testing.T) {
	b := newScriptedBackend("fake")
	c := newReadyController(t, b)
	ctx := context.Background()

	red := Color{255, 0, 0}
	if !c.SetZoneColor(ctx, 2, red) {
		t.Fatal("expected write to succeed")
	}

	zones := c.ZoneColors()
	if zones[2] != red {
		t.Errorf("zone 2 cache: expected %v, got %v", red, zones[2])
	}
	for _, i := range []int{0, 1, 3} {
		if zones[i] != (Color{}) {
			t.Errorf("zone %d should stay black, got %v", i, zones[i])
		}
	}
}

func TestControllerRejectsInvalidZone(t *testing.T) {
	b := newScriptedBackend("fake")
	c := newReadyController(t, b)
	ctx := context.Background()

	if c.SetZoneColor(ctx, -1, Color{255, 0, 0}) {
		t.Error("negative zone should fail")
	}
	if c.SetZoneColor(ctx, NumZones, Color{255, 0, 0}) {
		t.Error("zone past the end should fail")
	}
	if len(b.zoneWrites) != 0 {
		t.Errorf("no hardware write expected, got %v", b.zoneWrites)
	}
}

func TestControllerFailedWriteKeepsCache(t *testing.T) {
	b := newScriptedBackend("fake")
	b.failZones = map[int]bool{1: true}
	c := newReadyController(t, b)
	ctx := context.Background()

	if c.SetZoneColor(ctx, 1, Color{255, 0, 0}) {
		t.Fatal("expected write to fail")
	}
	if got := c.ZoneColors()[1]; got != (Color{}) {
		t.Errorf("cache updated despite failed write: %v", got)
	}
}

func TestControllerPartialZoneFailure(t *testing.T) {
	b := newScriptedBackend("fake")
	b.failZones = map[int]bool{2: true}
	c := newReadyController(t, b)
	ctx := context.Background()

	colors := []Color{
		{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {255, 255, 0},
	}
	if c.SetZoneColors(ctx, colors) {
		t.Fatal("expected partial failure to report false")
	}

	// Succeeded zones keep their new colors; the failed one stays.
	zones := c.ZoneColors()
	for _, i := range []int{0, 1, 3} {
		if zones[i] != colors[i] {
			t.Errorf("zone %d: expected %v, got %v", i, colors[i], zones[i])
		}
	}
	if zones[2] != (Color{}) {
		t.Errorf("failed zone 2 should keep old color, got %v", zones[2])
	}
}

func TestControllerSetAllColor(t *testing.T) {
	b := newScriptedBackend("fake")
	c := newReadyController(t, b)
	ctx := context.Background()

	teal := Color{0, 128, 128}
	if !c.SetAllColor(ctx, teal) {
		t.Fatal("expected write to succeed")
	}
	for i, got := range c.ZoneColors() {
		if got != teal {
			t.Errorf("zone %d: expected %v, got %v", i, teal, got)
		}
	}
}

func TestControllerFallsBackToSecondBackend(t *testing.T) {
	broken := newScriptedBackend("broken")
	broken.failAll = true
	working := newScriptedBackend("working")

	c := newReadyController(t, broken, working)
	ctx := context.Background()

	if !c.SetAllColor(ctx, Color{10, 20, 30}) {
		t.Fatal("expected fallback backend to succeed")
	}
	if len(working.allWrites) != 1 {
		t.Errorf("expected 1 write on fallback backend, got %d", len(working.allWrites))
	}
}

func TestControllerPreferredBackendFirst(t *testing.T) {
	first := newScriptedBackend("first")
	second := newScriptedBackend("second")

	c := NewController([]Backend{first, second}, "second", nil, testLogger())
	if !c.WaitForDetection(2 * time.Second) {
		t.Fatal("detection did not finish")
	}

	if !c.SetAllColor(context.Background(), Color{1, 2, 3}) {
		t.Fatal("expected write to succeed")
	}
	if len(second.allWrites) != 1 {
		t.Errorf("preferred backend skipped: %d writes", len(second.allWrites))
	}
	if len(first.allWrites) != 0 {
		t.Errorf("non-preferred backend written first: %d writes", len(first.allWrites))
	}
}

func TestControllerBreakerIsolatesFailingBackend(t *testing.T) {
	failing := newScriptedBackend("failing")
	failing.failAll = true
	backup := newScriptedBackend("backup")

	c := newReadyController(t, failing, backup)
	ctx := context.Background()

	// Push enough failures to open the failing backend's breaker.
	for i := 0; i < defaultBreakerThreshold+2; i++ {
		if !c.SetAllColor(ctx, Color{1, 1, 1}) {
			t.Fatalf("write %d should fall back and succeed", i)
		}
	}

	// The breaker must have stopped handing calls to the dead backend.
	slot := c.slots[0]
	if slot.breaker.State() != BreakerOpen {
		t.Errorf("expected failing backend breaker open, got %v", slot.breaker.State())
	}
}

func TestControllerNotReadyBeforeDetection(t *testing.T) {
	// A probe stuck on a slow backend keeps every operation failing
	// fast instead of blocking.
	slow := &slowBackend{release: make(chan struct{})}
	defer close(slow.release)

	c := NewController([]Backend{slow}, "", nil, testLogger())
	if c.SetAllColor(context.Background(), Color{1, 2, 3}) {
		t.Error("write should fail while detection is running")
	}
	if c.Ready() {
		t.Error("controller ready before probe finished")
	}
}

func TestControllerBrightnessBounds(t *testing.T) {
	b := newScriptedBackend("fake")
	c := newReadyController(t, b)
	ctx := context.Background()

	if c.SetBrightness(ctx, -1) {
		t.Error("negative brightness should fail")
	}
	if c.SetBrightness(ctx, 101) {
		t.Error("brightness above 100 should fail")
	}
	if !c.SetBrightness(ctx, 80) {
		t.Fatal("expected in-range brightness to succeed")
	}
	if b.brightness != 80 {
		t.Errorf("backend received %d, expected 80", b.brightness)
	}

	// No reader backend, so GetBrightness falls back to the cache.
	pct, ok := c.GetBrightness(ctx)
	if !ok || pct != 80 {
		t.Errorf("expected cached 80, got %d ok=%v", pct, ok)
	}
}

func TestControllerNoCapableBackend(t *testing.T) {
	b := newScriptedBackend("none")
	b.caps = Capabilities{}
	c := NewController([]Backend{b}, "", nil, testLogger())
	c.WaitForDetection(2 * time.Second)

	if c.Ready() {
		t.Error("controller should not be ready with zero capabilities")
	}
	if c.SetAllColor(context.Background(), Color{1, 2, 3}) {
		t.Error("write should fail with no capable backend")
	}
}

func TestControllerClearAllIdempotent(t *testing.T) {
	b := newScriptedBackend("fake")
	c := newReadyController(t, b)
	ctx := context.Background()

	if !c.SetAllColor(ctx, Color{255, 136, 0}) {
		t.Fatal("color write failed")
	}
	if !c.ClearAll(ctx) {
		t.Fatal("first clear failed")
	}
	if !c.ClearAll(ctx) {
		t.Fatal("second clear failed")
	}

	for i, z := range c.ZoneColors() {
		if z != (Color{}) {
			t.Errorf("zone %d should be black after clear, got %v", i, z)
		}
	}

	// No batch clear on this backend, so each clear is one SetAll(black).
	b.mu.Lock()
	writes := len(b.allWrites)
	b.mu.Unlock()
	if writes != 3 {
		t.Errorf("SetAll calls = %d, want 3 (color + two clears)", writes)
	}
}

func TestControllerClearAllPrefersBatchClear(t *testing.T) {
	b := &clearingBackend{scriptedBackend: newScriptedBackend("fake")}
	b.caps[OpClear] = true
	c := newReadyController(t, b)
	ctx := context.Background()

	if !c.ClearAll(ctx) || !c.ClearAll(ctx) {
		t.Fatal("clear failed")
	}

	b.mu.Lock()
	clears, alls := b.clearCalls, len(b.allWrites)
	b.mu.Unlock()
	if clears != 2 {
		t.Errorf("batch clear calls = %d, want 2", clears)
	}
	if alls != 0 {
		t.Errorf("batch clear should bypass SetAll, got %d SetAll calls", alls)
	}
	for i, z := range c.ZoneColors() {
		if z != (Color{}) {
			t.Errorf("zone %d should be black after clear, got %v", i, z)
		}
	}
}

func TestControllerClearOnlyBackend(t *testing.T) {
	// A backend that can clear but cannot rewrite zones must still
	// serve ClearAll.
	b := &clearingBackend{scriptedBackend: newScriptedBackend("fake")}
	b.caps = Capabilities{OpClear: true}
	c := newReadyController(t, b)

	if !c.ClearAll(context.Background()) {
		t.Error("clear-capable backend should serve ClearAll")
	}
	b.mu.Lock()
	clears := b.clearCalls
	b.mu.Unlock()
	if clears != 1 {
		t.Errorf("batch clear calls = %d, want 1", clears)
	}
}

func TestControllerStopDemoRunsOnce(t *testing.T) {
	b := &clearingBackend{scriptedBackend: newScriptedBackend("fake")}
	b.caps[OpDemo] = true
	c := newReadyController(t, b)
	ctx := context.Background()

	if !c.StopDemo(ctx) {
		t.Fatal("stop demo failed")
	}
	if !c.StopDemo(ctx) {
		t.Fatal("repeated stop demo should succeed")
	}

	b.mu.Lock()
	calls := b.demoCalls
	b.mu.Unlock()
	if calls != 1 {
		t.Errorf("demo stop calls = %d, want 1", calls)
	}
}

func TestControllerZoneColorAccessor(t *testing.T) {
	b := newScriptedBackend("fake")
	c := newReadyController(t, b)

	red := Color{255, 0, 0}
	if !c.SetZoneColor(context.Background(), 1, red) {
		t.Fatal("write failed")
	}

	if got := c.ZoneColor(1); got != red {
		t.Errorf("zone 1 = %v, want %v", got, red)
	}
	if got := c.ZoneColor(0); got != (Color{}) {
		t.Errorf("zone 0 = %v, want black", got)
	}
	if c.ZoneColor(-1) != (Color{}) || c.ZoneColor(NumZones) != (Color{}) {
		t.Error("out-of-range zones should read black")
	}
}

// clearingBackend adds batch clear and demo stop to the scripted
// backend.
type clearingBackend struct {
	*scriptedBackend
	clearCalls int
	demoCalls  int
}

func (b *clearingBackend) Clear(_ context.Context, _ Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearCalls++
	return nil
}

func (b *clearingBackend) StopDemo(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.demoCalls++
	return nil
}

// slowBackend blocks its probe until released.
type slowBackend struct {
	release chan struct{}
}

func (s *slowBackend) Name() string { return "slow" }

func (s *slowBackend) Probe(ctx context.Context) Capabilities {
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return Capabilities{OpSetAll: true}
}

func (s *slowBackend) SetZone(_ context.Context, _ int, _ Color) error { return nil }
func (s *slowBackend) SetAll(_ context.Context, _ Color) error         { return nil }
func (s *slowBackend) SetBrightness(_ context.Context, _ int) error    { return nil }
