// Package metrics provides Prometheus metrics for backlight hardware
// and effect execution.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kbglow",
		Subsystem: "backend",
		Name:      "commands_total",
		Help:      "Backend hardware commands by outcome",
	}, []string{"backend", "operation", "outcome"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kbglow",
		Subsystem: "breaker",
		Name:      "transitions_total",
		Help:      "Circuit breaker state transitions",
	}, []string{"backend", "to"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "kbglow",
		Subsystem: "breaker",
		Name:      "state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"backend"})

	backlightBrightness = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kbglow",
		Subsystem: "backlight",
		Name:      "brightness_percent",
		Help:      "Last successfully applied brightness percentage",
	})
)

// RecordBackendSuccess counts a successful backend command.
func RecordBackendSuccess(backend, operation string) {
	backendCommands.WithLabelValues(backend, operation, "success").Inc()
}

// RecordBackendFailure counts a failed backend command.
func RecordBackendFailure(backend, operation string) {
	backendCommands.WithLabelValues(backend, operation, "failure").Inc()
}

// RecordBreakerTransition counts a breaker transition and updates the
// state gauge.
func RecordBreakerTransition(backend, to string) {
	breakerTransitions.WithLabelValues(backend, to).Inc()
	breakerState.WithLabelValues(backend).Set(breakerStateValue(to))
}

// SetBrightness records the applied brightness percentage.
func SetBrightness(pct int) {
	backlightBrightness.Set(float64(pct))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
