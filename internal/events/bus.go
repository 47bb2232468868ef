package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(EffectStartedEvent{...})
func (b *Bus) Publish(ev Event) {
	// Use type switch to call the generic Publish with the correct type
	switch e := ev.(type) {
	case EffectStartedEvent:
		event.Publish(b.dispatcher, e)
	case EffectStoppedEvent:
		event.Publish(b.dispatcher, e)
	case BrightnessChangedEvent:
		event.Publish(b.dispatcher, e)
	case HardwareDetectedEvent:
		event.Publish(b.dispatcher, e)
	case EffectMetricsEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives (type inference)
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e EffectStartedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	// For each known event type, check if the handler matches
	switch h := handler.(type) {
	case func(EffectStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(EffectStoppedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BrightnessChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(HardwareDetectedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(EffectMetricsEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}
