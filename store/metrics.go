package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records commit outcomes.
type Metrics struct {
	commits  *prometheus.CounterVec
	duration prometheus.Histogram
	triples  prometheus.Counter
}

// NewMetrics creates commit metrics and registers them with reg.
// A nil registerer returns nil, which disables recording.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semdossier",
			Subsystem: "store",
			Name:      "commits_total",
			Help:      "Named-graph commits by result",
		}, []string{"result"}),

		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "semdossier",
			Subsystem: "store",
			Name:      "commit_duration_seconds",
			Help:      "Time spent replacing a named graph, retries included",
			Buckets:   prometheus.DefBuckets,
		}),

		triples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semdossier",
			Subsystem: "store",
			Name:      "committed_triples_total",
			Help:      "Triples written by successful commits",
		}),
	}

	for _, c := range []prometheus.Collector{m.commits, m.duration, m.triples} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(ok bool, seconds float64, triples int) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.commits.WithLabelValues(result).Inc()
	m.duration.Observe(seconds)
	if ok {
		m.triples.Add(float64(triples))
	}
}
