// Package metrics exposes Prometheus collectors for the document session.
//
// Collectors are registered on an explicit registerer rather than the
// global default so several sessions (and tests) can coexist in one process.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	ResultOK          = "ok"
	ResultFocused     = "focused"
	ResultUnsupported = "unsupported"
	ResultFailed      = "failed"
	ResultRejected    = "rejected"
)

// Metrics tracks document session activity.
type Metrics struct {
	DocumentsOpen prometheus.Gauge
	Opens         *prometheus.CounterVec
	Closes        *prometheus.CounterVec
	Saves         *prometheus.CounterVec
	Reloads       *prometheus.CounterVec
	LoadDuration  prometheus.Histogram
	DeferredQueue prometheus.Gauge
}

// New creates the collectors and registers them on reg.
// A nil reg leaves them unregistered, which is handy for tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docshell_documents_open",
			Help: "Number of documents currently open",
		}),
		Opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docshell_document_opens_total",
			Help: "Open requests by outcome",
		}, []string{"result"}),
		Closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docshell_document_closes_total",
			Help: "Close requests by outcome",
		}, []string{"result"}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docshell_document_saves_total",
			Help: "Save requests by outcome",
		}, []string{"result"}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docshell_document_reloads_total",
			Help: "Reloads from disk by outcome",
		}, []string{"result"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docshell_document_load_duration_seconds",
			Help:    "Time spent in backend Load",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}),
		DeferredQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docshell_deferred_disposals",
			Help: "Editor surfaces waiting for deferred disposal",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.DocumentsOpen,
			m.Opens,
			m.Closes,
			m.Saves,
			m.Reloads,
			m.LoadDuration,
			m.DeferredQueue,
		)
	}
	return m
}

// RecordOpen records an open request outcome.
func (m *Metrics) RecordOpen(result string) {
	if m == nil {
		return
	}
	m.Opens.WithLabelValues(result).Inc()
}

// RecordLoad records the duration of a backend load.
func (m *Metrics) RecordLoad(d time.Duration) {
	if m == nil {
		return
	}
	m.LoadDuration.Observe(d.Seconds())
}

// RecordClose records a close request outcome.
func (m *Metrics) RecordClose(result string) {
	if m == nil {
		return
	}
	m.Closes.WithLabelValues(result).Inc()
}

// RecordSave records a save request outcome.
func (m *Metrics) RecordSave(result string) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(result).Inc()
}

// RecordReload records a reload outcome.
func (m *Metrics) RecordReload(result string) {
	if m == nil {
		return
	}
	m.Reloads.WithLabelValues(result).Inc()
}

// SetOpen sets the number of open documents.
func (m *Metrics) SetOpen(n int) {
	if m == nil {
		return
	}
	m.DocumentsOpen.Set(float64(n))
}

// DisposalQueued increments the deferred disposal gauge.
func (m *Metrics) DisposalQueued() {
	if m == nil {
		return
	}
	m.DeferredQueue.Inc()
}

// DisposalDone decrements the deferred disposal gauge.
func (m *Metrics) DisposalDone() {
	if m == nil {
		return
	}
	m.DeferredQueue.Dec()
}
