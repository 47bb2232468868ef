package effects

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/kbglow/internal/events"
	"github.com/smazurov/kbglow/internal/hardware"
	"github.com/smazurov/kbglow/internal/metrics"
)

// joinTimeout bounds how long Stop waits for a dying effect goroutine.
// An effect wedged in a slow hardware call is abandoned, not joined;
// its context is already cancelled so it exits on its next wait.
const joinTimeout = 2 * time.Second

// session is one running dynamic effect. stopped guards the
// EffectStoppedEvent so a self-abort racing Stop publishes it once.
type session struct {
	name    string
	params  Params
	cancel  context.CancelFunc
	done    chan struct{}
	stopped sync.Once
}

// Manager owns the single-effect slot. Starting any effect replaces
// whatever is running; at most one animation goroutine is live after
// any sequence of calls.
type Manager struct {
	hw     Hardware
	bus    *events.Bus
	logger *slog.Logger

	mu      sync.Mutex
	session *session
}

// NewManager creates the manager. bus may be nil.
func NewManager(hw Hardware, bus *events.Bus, logger *slog.Logger) *Manager {
	return &Manager{hw: hw, bus: bus, logger: logger}
}

// Start runs the named effect, stopping any previous session first.
// Static entries apply inline on the caller's goroutine and leave no
// session behind. Unknown names return false.
func (m *Manager) Start(name string, p Params) bool {
	desc, ok := Lookup(name)
	if !ok {
		m.logger.Warn("Unknown effect", "name", name)
		return false
	}
	p = p.normalized()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked("replaced")

	if desc.Apply != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return desc.Apply(ctx, m.hw, p)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		name:   name,
		params: p,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.session = s

	metrics.SetEffectActive(name, true)
	m.publish(events.EffectStartedEvent{
		Name:      name,
		Speed:     p.Speed,
		Rainbow:   p.Rainbow,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	m.logger.Info("Effect started", "name", name, "speed", p.Speed, "rainbow", p.Rainbow)

	go func() {
		defer close(s.done)
		desc.Run(ctx, instrumented{hw: m.hw, name: name}, p)
		metrics.SetEffectActive(name, false)
		if ctx.Err() == nil {
			// The loop gave up on its own, not via Stop.
			s.stopped.Do(func() {
				m.logger.Warn("Effect aborted after repeated push failures", "name", name)
				m.publish(events.EffectStoppedEvent{
					Name:      name,
					Reason:    "aborted",
					Timestamp: time.Now().Format(time.RFC3339),
				})
			})
		}
	}()
	return true
}

// Stop cancels the running effect and waits for its goroutine, up to
// joinTimeout. No-op when nothing runs.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked("stopped")
}

// stopLocked must be called with mu held.
func (m *Manager) stopLocked(reason string) {
	s := m.session
	if s == nil {
		return
	}
	m.session = nil

	s.cancel()
	select {
	case <-s.done:
	case <-time.After(joinTimeout):
		m.logger.Warn("Effect goroutine did not exit in time, abandoning",
			"name", s.name, "timeout", joinTimeout)
	}

	s.stopped.Do(func() {
		metrics.SetEffectActive(s.name, false)
		m.publish(events.EffectStoppedEvent{
			Name:      s.name,
			Reason:    reason,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		m.logger.Info("Effect stopped", "name", s.name, "reason", reason)
	})
}

// IsRunning reports whether a dynamic effect goroutine is live.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runningLocked()
}

func (m *Manager) runningLocked() bool {
	if m.session == nil {
		return false
	}
	select {
	case <-m.session.done:
		return false
	default:
		return true
	}
}

// ActiveEffect returns the running effect's name, or "".
func (m *Manager) ActiveEffect() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.runningLocked() {
		return ""
	}
	return m.session.name
}

// ActiveParams returns the running effect's parameters and whether an
// effect is running.
func (m *Manager) ActiveParams() (Params, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.runningLocked() {
		return Params{}, false
	}
	return m.session.params, true
}

// UpdateSpeed restarts the running effect with a new speed. False when
// nothing runs.
func (m *Manager) UpdateSpeed(speed int) bool {
	name, p, ok := m.snapshot()
	if !ok {
		return false
	}
	p.Speed = speed
	return m.Start(name, p)
}

// UpdateColor restarts the running effect with a new color.
func (m *Manager) UpdateColor(c hardware.Color) bool {
	name, p, ok := m.snapshot()
	if !ok {
		return false
	}
	p.Color = c
	return m.Start(name, p)
}

func (m *Manager) snapshot() (string, Params, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.runningLocked() {
		return "", Params{}, false
	}
	return m.session.name, m.session.params, true
}

func (m *Manager) publish(ev events.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}

// instrumented counts frames and push failures per effect without the
// library knowing its own registry name.
type instrumented struct {
	hw   Hardware
	name string
}

func (i instrumented) SetAllColor(ctx context.Context, c hardware.Color) bool {
	return i.record(i.hw.SetAllColor(ctx, c))
}

func (i instrumented) SetZoneColors(ctx context.Context, colors []hardware.Color) bool {
	return i.record(i.hw.SetZoneColors(ctx, colors))
}

func (i instrumented) ZoneColors() []hardware.Color {
	return i.hw.ZoneColors()
}

func (i instrumented) record(ok bool) bool {
	if ok {
		metrics.RecordEffectFrame(i.name)
	} else {
		metrics.RecordEffectPushFailure(i.name)
	}
	return ok
}
