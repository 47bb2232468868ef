package hardware

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/kbglow/internal/events"
	"github.com/smazurov/kbglow/internal/metrics"
)

// ecDirectBreakerThreshold is stricter than the default: register
// writes through debugfs fail hard when ec_sys is absent, no point
// hammering the file twelve times per frame.
const ecDirectBreakerThreshold = 3

// backendSlot binds a backend to its breaker and the optional
// interfaces it implements, resolved once at construction.
type backendSlot struct {
	backend Backend
	breaker *Breaker
	clearer BatchClearer
	demo    DemoStopper
	reader  BrightnessReader
}

// Info is a point-in-time snapshot of hardware state for the API.
type Info struct {
	Ready        bool                    `json:"ready"`
	Backends     map[string]Capabilities `json:"backends"`
	Preferred    string                  `json:"preferred_backend,omitempty"`
	ZoneColors   []Color                 `json:"zone_colors"`
	Brightness   int                     `json:"brightness"`
	DetectTime   time.Duration           `json:"-"`
	DetectTimeMS int64                   `json:"detect_time_ms"`
}

// Controller is the single entry point for hardware mutation. All
// public methods serialize on one mutex, report success as a boolean,
// and never panic; callers treat false as "hardware said no" and keep
// running.
type Controller struct {
	slots      []*backendSlot
	probe      *Probe
	bus        *events.Bus
	logger     *slog.Logger
	detectOnce sync.Once

	// mu guards everything below; it is never held across a frame
	// wait, only across one dispatch.
	mu              sync.Mutex
	preferred       string
	zones           [NumZones]Color
	brightness      int
	brightnessKnown bool
	demoStopped     bool
	capsLoaded      bool
	caps            map[string]Capabilities
}

// NewController builds the controller over the given backends in
// priority order and starts capability detection in the background.
// bus may be nil.
func NewController(backends []Backend, preferred string, bus *events.Bus, logger *slog.Logger) *Controller {
	c := &Controller{
		probe:     NewProbe(backends, logger),
		bus:       bus,
		logger:    logger,
		preferred: preferred,
	}
	for _, b := range backends {
		threshold := 0
		if b.Name() == BackendECDirect {
			threshold = ecDirectBreakerThreshold
		}
		br := NewBreaker(b.Name(), threshold, 0, logger)
		br.OnTransition(func(name string, _, to BreakerState) {
			metrics.RecordBreakerTransition(name, to.String())
		})
		slot := &backendSlot{backend: b, breaker: br}
		if v, ok := b.(BatchClearer); ok {
			slot.clearer = v
		}
		if v, ok := b.(DemoStopper); ok {
			slot.demo = v
		}
		if v, ok := b.(BrightnessReader); ok {
			slot.reader = v
		}
		c.slots = append(c.slots, slot)
	}
	return c
}

// WaitForDetection blocks until capability detection finishes or
// timeout passes. Publishes the detection event on first completion.
func (c *Controller) WaitForDetection(timeout time.Duration) bool {
	ready := c.probe.WaitForDetection(timeout)
	c.publishDetection()
	return ready
}

// Ready reports whether any backend offered a capability. Never
// blocks; false while detection is still running.
func (c *Controller) Ready() bool {
	return c.probe.Ready()
}

// SetZoneColor writes one zone. The cache takes the new color only
// after a backend accepted the write.
func (c *Controller) SetZoneColor(ctx context.Context, zone int, color Color) bool {
	if zone < 0 || zone >= NumZones {
		c.logger.Warn("Zone out of range", "zone", zone)
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ok := c.dispatch(ctx, OpSetZone, func(s *backendSlot) error {
		return s.backend.SetZone(ctx, zone, color)
	})
	if ok {
		c.zones[zone] = color
	}
	return ok
}

// SetZoneColors writes one color per zone. Zones written before a
// failure keep their new cached color; the call reports false and
// does not roll back.
func (c *Controller) SetZoneColors(ctx context.Context, colors []Color) bool {
	if len(colors) != NumZones {
		c.logger.Warn("Zone color count mismatch", "got", len(colors), "want", NumZones)
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	allOK := true
	for zone, color := range colors {
		ok := c.dispatch(ctx, OpSetZone, func(s *backendSlot) error {
			return s.backend.SetZone(ctx, zone, color)
		})
		if ok {
			c.zones[zone] = color
		} else {
			allOK = false
		}
	}
	return allOK
}

// SetAllColor sets every zone to one color.
func (c *Controller) SetAllColor(ctx context.Context, color Color) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok := c.dispatch(ctx, OpSetAll, func(s *backendSlot) error {
		return s.backend.SetAll(ctx, color)
	})
	if ok {
		for i := range c.zones {
			c.zones[i] = color
		}
	}
	return ok
}

// ClearAll turns every LED off. Uses the backend's batch clear when it
// has one, otherwise falls back to SetAll(black). Idempotent.
func (c *Controller) ClearAll(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	black := Color{}
	canClear := func(s *backendSlot) bool {
		return (s.clearer != nil && c.capFor(s, OpClear)) || c.capFor(s, OpSetAll)
	}
	ok := c.dispatchWhere(ctx, OpClear, canClear, func(s *backendSlot) error {
		if s.clearer != nil && c.capFor(s, OpClear) {
			return s.clearer.Clear(ctx, black)
		}
		return s.backend.SetAll(ctx, black)
	})
	if ok {
		for i := range c.zones {
			c.zones[i] = black
		}
	}
	return ok
}

// SetBrightness applies a 0-100 percentage.
func (c *Controller) SetBrightness(ctx context.Context, pct int) bool {
	if pct < 0 || pct > 100 {
		c.logger.Warn("Brightness out of range", "percent", pct)
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var applied string
	ok := c.dispatch(ctx, OpBrightness, func(s *backendSlot) error {
		err := s.backend.SetBrightness(ctx, pct)
		if err == nil {
			applied = s.backend.Name()
		}
		return err
	})
	if ok {
		c.brightness = pct
		c.brightnessKnown = true
		metrics.SetBrightness(pct)
		if c.bus != nil {
			c.bus.Publish(events.BrightnessChangedEvent{
				Percent:   pct,
				Backend:   applied,
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}
	}
	return ok
}

// GetBrightness reads the brightness from the first capable reader,
// falling back to the cached value when no backend can answer.
func (c *Controller) GetBrightness(ctx context.Context) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var pct int
	ok := c.dispatch(ctx, OpGetBright, func(s *backendSlot) error {
		if s.reader == nil {
			return ErrBackendUnavailable
		}
		v, err := s.reader.Brightness(ctx)
		if err == nil {
			pct = v
		}
		return err
	})
	if ok {
		c.brightness = pct
		c.brightnessKnown = true
		return pct, true
	}
	if c.brightnessKnown {
		return c.brightness, true
	}
	return 0, false
}

// StopDemo halts any firmware-builtin pattern so manual zone writes
// take effect. Runs once; later calls are no-ops.
func (c *Controller) StopDemo(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.demoStopped {
		return true
	}
	ok := c.dispatch(ctx, OpDemo, func(s *backendSlot) error {
		if s.demo == nil {
			return ErrBackendUnavailable
		}
		return s.demo.StopDemo(ctx)
	})
	if ok {
		c.demoStopped = true
	}
	return ok
}

// ZoneColor returns the cached color of one zone; black for an
// out-of-range index.
func (c *Controller) ZoneColor(zone int) Color {
	if zone < 0 || zone >= NumZones {
		return Color{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zones[zone]
}

// ZoneColors returns the cached zone colors.
func (c *Controller) ZoneColors() []Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Color, NumZones)
	copy(out, c.zones[:])
	return out
}

// SetPreferredBackend reorders dispatch priority. Callers stop the
// active effect before switching so no animation straddles backends.
func (c *Controller) SetPreferredBackend(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preferred = name
}

// PreferredBackend returns the configured priority override.
func (c *Controller) PreferredBackend() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preferred
}

// Info snapshots hardware state for the API. Blocks until detection
// has finished.
func (c *Controller) Info() Info {
	result := c.probe.Result()

	c.mu.Lock()
	defer c.mu.Unlock()

	info := Info{
		Ready:        result.Ready,
		Backends:     result.PerBackend,
		Preferred:    c.preferred,
		ZoneColors:   make([]Color, NumZones),
		Brightness:   c.brightness,
		DetectTime:   result.Elapsed,
		DetectTimeMS: result.Elapsed.Milliseconds(),
	}
	copy(info.ZoneColors, c.zones[:])
	return info
}

// dispatch tries the operation on each capable backend in priority
// order until one succeeds. Must be called with the lock held.
func (c *Controller) dispatch(ctx context.Context, op Operation, fn func(*backendSlot) error) bool {
	return c.dispatchWhere(ctx, op, func(s *backendSlot) bool { return c.capFor(s, op) }, fn)
}

// dispatchWhere is dispatch with a caller-supplied capability check,
// for operations that more than one capability can serve. op labels
// the metrics only.
func (c *Controller) dispatchWhere(ctx context.Context, op Operation, capable func(*backendSlot) bool, fn func(*backendSlot) error) bool {
	if !c.loadCaps() {
		return false
	}
	for _, slot := range c.ordered() {
		if !capable(slot) {
			continue
		}
		name := slot.backend.Name()
		err := slot.breaker.Do(func() error { return fn(slot) })
		if err == nil {
			metrics.RecordBackendSuccess(name, string(op))
			return true
		}
		if !errors.Is(err, ErrCircuitOpen) {
			metrics.RecordBackendFailure(name, string(op))
		}
		c.logger.Debug("Backend operation failed",
			"backend", name, "operation", string(op), "error", err)
	}
	return false
}

// loadCaps caches the probe result once detection is done. Before
// that, every operation reports failure rather than blocking.
func (c *Controller) loadCaps() bool {
	if c.capsLoaded {
		return true
	}
	if !c.probe.Ready() {
		return false
	}
	c.caps = c.probe.Result().PerBackend
	c.capsLoaded = true
	return true
}

func (c *Controller) capFor(s *backendSlot, op Operation) bool {
	return c.caps[s.backend.Name()][op]
}

// ordered returns slots with the preferred backend first, otherwise
// construction order.
func (c *Controller) ordered() []*backendSlot {
	if c.preferred == "" {
		return c.slots
	}
	out := make([]*backendSlot, 0, len(c.slots))
	for _, s := range c.slots {
		if s.backend.Name() == c.preferred {
			out = append(out, s)
		}
	}
	for _, s := range c.slots {
		if s.backend.Name() != c.preferred {
			out = append(out, s)
		}
	}
	return out
}

func (c *Controller) publishDetection() {
	if c.bus == nil {
		return
	}
	c.detectOnce.Do(func() {
		result := c.probe.Result()
		var capable []string
		for name, caps := range result.PerBackend {
			if caps.Any() {
				capable = append(capable, name)
			}
		}
		c.bus.Publish(events.HardwareDetectedEvent{
			Ready:     result.Ready,
			Backends:  capable,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	})
}
