package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks saves.
type Metrics struct {
	saves  *prometheus.CounterVec
	issues prometheus.Counter
	typed  prometheus.Counter
}

// NewMetrics creates save metrics and registers them with reg.
// A nil registerer disables recording.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semdossier",
			Subsystem: "pipeline",
			Name:      "saves_total",
			Help:      "Dossier saves by outcome stage",
		}, []string{"result"}),

		issues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semdossier",
			Subsystem: "pipeline",
			Name:      "validation_issues_total",
			Help:      "Document validation issues reported on save",
		}),

		typed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semdossier",
			Subsystem: "pipeline",
			Name:      "typed_literals_total",
			Help:      "Literals typed by reconciliation",
		}),
	}

	for _, c := range []prometheus.Collector{m.saves, m.issues, m.typed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) result(r string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(r).Inc()
}

func (m *Metrics) validated(n int) {
	if m == nil {
		return
	}
	m.issues.Add(float64(n))
}

func (m *Metrics) reconciled(n int) {
	if m == nil {
		return
	}
	m.typed.Add(float64(n))
}
