// Package metrics exposes Prometheus instruments for the concierge
// pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConciergeMetrics exposes counters/histograms for the SMS pipeline.
type ConciergeMetrics struct {
	inboundTotal     *prometheus.CounterVec
	escalationsTotal *prometheus.CounterVec
	repliesTotal     *prometheus.CounterVec
	quotesRecorded   prometheus.Counter
	webhookLatency   *prometheus.HistogramVec
	llmLatency       prometheus.Histogram
}

func NewConciergeMetrics(reg prometheus.Registerer) *ConciergeMetrics {
	m := &ConciergeMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "messaging",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound OpenPhone webhooks",
		}, []string{"event_type", "status"}),
		escalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "conversation",
			Name:      "escalations_total",
			Help:      "Messages left for a human, by gate reason",
		}, []string{"reason"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "conversation",
			Name:      "replies_total",
			Help:      "Auto-reply outcomes",
		}, []string{"status"}),
		quotesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "quotes",
			Name:      "recorded_total",
			Help:      "Quotes recorded in the ledger",
		}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "messaging",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "conversation",
			Name:      "llm_latency_seconds",
			Help:      "Latency of model completions",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.inboundTotal,
		m.escalationsTotal,
		m.repliesTotal,
		m.quotesRecorded,
		m.webhookLatency,
		m.llmLatency,
	)
	return m
}

func (m *ConciergeMetrics) ObserveInbound(eventType, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(eventType, status).Inc()
}

func (m *ConciergeMetrics) ObserveEscalation(reason string) {
	if m == nil {
		return
	}
	m.escalationsTotal.WithLabelValues(reason).Inc()
}

func (m *ConciergeMetrics) ObserveReply(status string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(status).Inc()
}

func (m *ConciergeMetrics) ObserveQuoteRecorded() {
	if m == nil {
		return
	}
	m.quotesRecorded.Inc()
}

func (m *ConciergeMetrics) ObserveWebhookLatency(eventType string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(eventType).Observe(seconds)
}

func (m *ConciergeMetrics) ObserveLLMLatency(seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.Observe(seconds)
}
