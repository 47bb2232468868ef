package events

// Event type constants for kelindar/event.
const (
	TypeEffectStarted uint32 = iota + 1
	TypeEffectStopped
	TypeBrightnessChanged
	TypeHardwareDetected
	TypeEffectMetrics
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// EffectStartedEvent is published when a lighting effect begins running.
type EffectStartedEvent struct {
	Name      string `json:"name" example:"breathing" doc:"Effect name"`
	Speed     int    `json:"speed" example:"5" doc:"Effect speed (1-10)"`
	Rainbow   bool   `json:"rainbow" example:"false" doc:"Whether rainbow coloring is active"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for EffectStartedEvent.
func (e EffectStartedEvent) Type() uint32 { return TypeEffectStarted }

// EffectStoppedEvent is published when a lighting effect ends, whether
// by request, replacement, or self-abort.
type EffectStoppedEvent struct {
	Name      string `json:"name" example:"breathing" doc:"Effect name"`
	Reason    string `json:"reason" example:"stopped" doc:"Why the effect ended: stopped, replaced, aborted"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for EffectStoppedEvent.
func (e EffectStoppedEvent) Type() uint32 { return TypeEffectStopped }

// BrightnessChangedEvent is published after a successful brightness write.
type BrightnessChangedEvent struct {
	Percent   int    `json:"percent" example:"80" doc:"New brightness percentage"`
	Backend   string `json:"backend" example:"ectool" doc:"Backend that performed the write"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BrightnessChangedEvent.
func (e BrightnessChangedEvent) Type() uint32 { return TypeBrightnessChanged }

// HardwareDetectedEvent is published once when the capability probe
// finishes.
type HardwareDetectedEvent struct {
	Ready     bool     `json:"ready" example:"true" doc:"Whether any capable backend was found"`
	Backends  []string `json:"backends" doc:"Backends that reported at least one capability"`
	Timestamp string   `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for HardwareDetectedEvent.
func (e HardwareDetectedEvent) Type() uint32 { return TypeHardwareDetected }

// EffectMetricsEvent carries periodic frame counters for the running
// effect, for live display.
type EffectMetricsEvent struct {
	EventType    string `json:"type"`
	Effect       string `json:"effect"`
	Frames       string `json:"frames"`
	PushFailures string `json:"push_failures"`
}

// Type returns the event type identifier for EffectMetricsEvent.
func (e EffectMetricsEvent) Type() uint32 { return TypeEffectMetrics }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"api" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
