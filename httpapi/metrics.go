package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caivega/cascadelang/graph"
)

// Metrics exposes the run's event log as prometheus counters/histogram
// through /metrics, using a private registry so a `serve` invocation never
// collides with any process-wide default registry.
type Metrics struct {
	registry         *prometheus.Registry
	objectsCreated   prometheus.Counter
	objectsDestroyed prometheus.Counter
	cascadeDeletions prometheus.Counter
	cascadeDepth     prometheus.Histogram
}

// NewMetrics registers a fresh set of collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		objectsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cascadelang_objects_created_total",
			Help: "Objects and arrays allocated during the run.",
		}),
		objectsDestroyed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cascadelang_objects_deleted_total",
			Help: "Objects destroyed during the run, by any cause.",
		}),
		cascadeDeletions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cascadelang_cascade_deletions_total",
			Help: "Object deletions that were part of a cascade (not the direct null write).",
		}),
		cascadeDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cascadelang_cascade_depth",
			Help:    "Number of objects destroyed per triggering mandatory-field null write.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
	m.registry.MustRegister(m.objectsCreated, m.objectsDestroyed, m.cascadeDeletions, m.cascadeDepth)
	return m
}

// Observe populates the collectors from a completed run's event log. It is
// called once, from New, since the report it reads is itself immutable.
func (m *Metrics) Observe(report Report) {
	depth := 0
	flush := func() {
		if depth > 0 {
			m.cascadeDepth.Observe(float64(depth))
		}
		depth = 0
	}
	for _, e := range report.Events {
		switch e.Kind {
		case graph.EventObjectCreated:
			m.objectsCreated.Inc()
		case graph.EventCascadeTriggered:
			flush()
		case graph.EventObjectDestroyed:
			m.objectsDestroyed.Inc()
			// The first object destroyed after a trigger is the holder of
			// the nulled mandatory field; every later one was cascaded.
			if depth > 0 {
				m.cascadeDeletions.Inc()
			}
			depth++
		}
	}
	flush()
}

// Handler returns the promhttp handler bound to this Metrics' private
// registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
