package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	effectFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kbglow",
		Subsystem: "effects",
		Name:      "frames_total",
		Help:      "Frames pushed to hardware per effect",
	}, []string{"effect"})

	effectPushFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kbglow",
		Subsystem: "effects",
		Name:      "push_failures_total",
		Help:      "Frame pushes rejected by the hardware layer",
	}, []string{"effect"})

	effectActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "kbglow",
		Subsystem: "effects",
		Name:      "active",
		Help:      "Whether the effect is currently running (0/1)",
	}, []string{"effect"})

	// Local cache for SSE exporter access.
	effectCache   = make(map[string]*EffectMetrics)
	effectCacheMu sync.RWMutex
)

// EffectMetrics holds current counter values for a running effect.
type EffectMetrics struct {
	Frames       float64
	PushFailures float64
	Active       bool
}

// RecordEffectFrame counts one pushed frame.
func RecordEffectFrame(effect string) {
	effectFrames.WithLabelValues(effect).Inc()
	updateEffectCache(effect, func(m *EffectMetrics) { m.Frames++ })
}

// RecordEffectPushFailure counts one rejected frame push.
func RecordEffectPushFailure(effect string) {
	effectPushFailures.WithLabelValues(effect).Inc()
	updateEffectCache(effect, func(m *EffectMetrics) { m.PushFailures++ })
}

// SetEffectActive marks an effect as running or stopped.
func SetEffectActive(effect string, active bool) {
	v := 0.0
	if active {
		v = 1.0
	}
	effectActive.WithLabelValues(effect).Set(v)
	updateEffectCache(effect, func(m *EffectMetrics) { m.Active = active })
}

// DeleteEffectMetrics removes all metrics for an effect.
func DeleteEffectMetrics(effect string) {
	effectFrames.DeleteLabelValues(effect)
	effectPushFailures.DeleteLabelValues(effect)
	effectActive.DeleteLabelValues(effect)

	effectCacheMu.Lock()
	delete(effectCache, effect)
	effectCacheMu.Unlock()
}

// GetAllEffectMetrics returns a snapshot of cached effect metrics.
func GetAllEffectMetrics() map[string]EffectMetrics {
	effectCacheMu.RLock()
	defer effectCacheMu.RUnlock()

	out := make(map[string]EffectMetrics, len(effectCache))
	for name, m := range effectCache {
		out[name] = *m
	}
	return out
}

func updateEffectCache(effect string, fn func(*EffectMetrics)) {
	effectCacheMu.Lock()
	defer effectCacheMu.Unlock()

	m, ok := effectCache[effect]
	if !ok {
		m = &EffectMetrics{}
		effectCache[effect] = m
	}
	fn(m)
}
