// Package metrics exposes resolution counters for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Resolutions struct {
	total   *prometheus.CounterVec
	latency prometheus.Histogram
}

// NewResolutions registers the collectors on reg.
func NewResolutions(reg prometheus.Registerer) *Resolutions {
	r := &Resolutions{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizsense",
			Name:      "resolutions_total",
			Help:      "Resolved questions by answer source.",
		}, []string{"source"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quizsense",
			Name:      "resolution_seconds",
			Help:      "Time spent resolving one question.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}
	reg.MustRegister(r.total, r.latency)
	return r
}

func (r *Resolutions) ObserveResolution(source string, elapsed time.Duration) {
	r.total.WithLabelValues(source).Inc()
	r.latency.Observe(elapsed.Seconds())
}
