package api

import (
	"context"
	"maps"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/kbglow/internal/events"
	"github.com/smazurov/kbglow/internal/metrics/exporters"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	// Register SSE endpoint with event type mapping
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time event stream for effect changes, brightness, and hardware state",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func() map[string]any {
		// Application events
		eventTypes := map[string]any{
			"effect-started":     events.EffectStartedEvent{},
			"effect-stopped":     events.EffectStoppedEvent{},
			"brightness-changed": events.BrightnessChangedEvent{},
			"hardware-detected":  events.HardwareDetectedEvent{},
		}

		// Add metric events for this endpoint
		maps.Copy(eventTypes, exporters.GetEventTypesForEndpoint("events"))

		return eventTypes
	}(), func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Create event channel for this connection
		eventCh := make(chan any, 10)

		// Subscribe to all event types using event bus
		unsubscribers := []func(){
			events.SubscribeToChannel[events.EffectStartedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.EffectStoppedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.BrightnessChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.HardwareDetectedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.EffectMetricsEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Send initial hardware snapshot so clients render without
		// waiting for the next state change.
		info := s.controller.Info()
		backends := make([]string, 0, len(info.Backends))
		for name := range info.Backends {
			backends = append(backends, name)
		}
		if err := send.Data(events.HardwareDetectedEvent{
			Ready:     info.Ready,
			Backends:  backends,
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		// Keep connection alive and forward events
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				// Send event using Huma's SSE sender with error handling
				if err := send.Data(event); err != nil {
					// Connection failed, clean up and exit
					return
				}
			}
		}
	})
}
