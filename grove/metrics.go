package grove

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics is nil when no registerer was given; every method is nil-safe.
type metrics struct {
	inserts     *prometheus.CounterVec
	queries     prometheus.Counter
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	edges       prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &metrics{
		inserts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "genogrove",
			Subsystem: "grove",
			Name:      "inserted_keys_total",
			Help:      "Number of keys stored, by insertion mode",
		}, []string{"mode"}),
		queries: f.NewCounter(prometheus.CounterOpts{
			Namespace: "genogrove",
			Subsystem: "grove",
			Name:      "intersect_total",
			Help:      "Number of Intersect calls",
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "genogrove",
			Subsystem: "query_cache",
			Name:      "hits_total",
			Help:      "Number of Intersect calls served from the query cache",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "genogrove",
			Subsystem: "query_cache",
			Name:      "misses_total",
			Help:      "Number of Intersect calls that were not served from the query cache",
		}),
		edges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "genogrove",
			Subsystem: "graph",
			Name:      "edges",
			Help:      "Number of edges in the graph overlay",
		}),
	}
}

func (m *metrics) inserted(mode string, n int) {
	if m != nil {
		m.inserts.WithLabelValues(mode).Add(float64(n))
	}
}

func (m *metrics) queried() {
	if m != nil {
		m.queries.Inc()
	}
}

func (m *metrics) cacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *metrics) cacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *metrics) setEdges(n int) {
	if m != nil {
		m.edges.Set(float64(n))
	}
}
