package workflow

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/EgorLis/hashdrop/internal/domain"
)

const namespace = "hashdrop"

// Metrics — счётчики воркфлоу. nil-значение допустимо: всё молча пропускается.
type Metrics struct {
	issued     *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	commits    prometheus.Counter
	downloads  prometheus.Counter
	ledgerMiss prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capabilities_issued_total",
			Help:      "Presigned transfer capabilities issued, by direction.",
		}, []string{"direction"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_errors_total",
			Help:      "Workflow operations that ended with an error, by operation and kind.",
		}, []string{"op", "kind"}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Objects committed to the store.",
		}),
		downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Objects streamed to clients.",
		}),
		ledgerMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_misses_total",
			Help:      "Downloads of objects without a metadata record.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.issued, m.rejected, m.commits, m.downloads, m.ledgerMiss)
	}
	return m
}

func (m *Metrics) capabilityIssued(dir domain.Direction) {
	if m == nil {
		return
	}
	m.issued.WithLabelValues(string(dir)).Inc()
}

func (m *Metrics) failed(op string, err error) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(op, string(domain.KindOf(err))).Inc()
}

func (m *Metrics) committed() {
	if m == nil {
		return
	}
	m.commits.Inc()
}

func (m *Metrics) downloaded() {
	if m == nil {
		return
	}
	m.downloads.Inc()
}

func (m *Metrics) missedLedger() {
	if m == nil {
		return
	}
	m.ledgerMiss.Inc()
}
