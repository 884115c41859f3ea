package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service metrics. A nil *Collector records nothing.
type Collector struct {
	registry            *prometheus.Registry
	receivables         *prometheus.CounterVec
	payments            *prometheus.CounterVec
	paymentTotal        prometheus.Histogram
	attachmentsUploaded prometheus.Counter
	exports             *prometheus.CounterVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		receivables: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "receivable_submissions_total",
			Help: "Receivable confirmations by result",
		}, []string{"result"}),
		payments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_submissions_total",
			Help: "Payment confirmations by method and result",
		}, []string{"method", "result"}),
		paymentTotal: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "payment_total_amount",
			Help:    "Charged total including commission",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		}),
		attachmentsUploaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "attachments_uploaded_total",
			Help: "Due-diligence files stored",
		}),
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "receivable_exports_total",
			Help: "Receivable register exports by result",
		}, []string{"result"}),
	}
}

func (m *Collector) RecordReceivable(result string) {
	if m == nil {
		return
	}
	m.receivables.WithLabelValues(result).Inc()
}

func (m *Collector) RecordPayment(method, result string, total float64) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(method, result).Inc()
	if result == ResultAccepted {
		m.paymentTotal.Observe(total)
	}
}

func (m *Collector) RecordAttachment() {
	if m == nil {
		return
	}
	m.attachmentsUploaded.Inc()
}

func (m *Collector) RecordExport(result string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(result).Inc()
}

func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

const (
	ResultAccepted = "accepted"
	ResultInvalid  = "invalid"
	ResultFailed   = "failed"
)
