package hardware

import (
	"context"
	"log/slog"
	"time"
)

// defaultProbeTimeout bounds the whole detection battery.
const defaultProbeTimeout = 15 * time.Second

// CapabilitySet is the immutable outcome of one detection run.
type CapabilitySet struct {
	// PerBackend maps backend name to its probed capabilities.
	PerBackend map[string]Capabilities
	// Ready is true when at least one backend reported any capability.
	Ready bool
	// Elapsed is the total detection time.
	Elapsed time.Duration
}

// Supports reports whether any backend offers op.
func (cs CapabilitySet) Supports(op Operation) bool {
	for _, caps := range cs.PerBackend {
		if caps[op] {
			return true
		}
	}
	return false
}

// Probe runs the capability battery once, on its own goroutine, and
// publishes the result through a done channel. Callers that need the
// result block on WaitForDetection with their own patience.
type Probe struct {
	backends []Backend
	logger   *slog.Logger

	done   chan struct{}
	result CapabilitySet
}

// NewProbe starts detection immediately.
func NewProbe(backends []Backend, logger *slog.Logger) *Probe {
	p := &Probe{
		backends: backends,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Probe) run() {
	defer close(p.done)

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	start := time.Now()
	result := CapabilitySet{PerBackend: make(map[string]Capabilities, len(p.backends))}
	for _, b := range p.backends {
		caps := b.Probe(ctx)
		result.PerBackend[b.Name()] = caps
		if caps.Any() {
			result.Ready = true
		}
		p.logger.Debug("Backend probed", "backend", b.Name(), "capable", caps.Any())
	}
	result.Elapsed = time.Since(start)
	p.result = result

	if result.Ready {
		p.logger.Info("Hardware detection complete", "elapsed", result.Elapsed)
	} else {
		p.logger.Warn("No capable backlight hardware found", "elapsed", result.Elapsed)
	}
}

// WaitForDetection blocks until detection finishes or timeout passes.
// Returns false on timeout or when no hardware was found.
func (p *Probe) WaitForDetection(timeout time.Duration) bool {
	select {
	case <-p.done:
		return p.result.Ready
	case <-time.After(timeout):
		return false
	}
}

// Result returns the capability set, blocking until detection is done.
func (p *Probe) Result() CapabilitySet {
	<-p.done
	return p.result
}

// Ready reports detection outcome without blocking. False while the
// probe is still running.
func (p *Probe) Ready() bool {
	select {
	case <-p.done:
		return p.result.Ready
	default:
		return false
	}
}
