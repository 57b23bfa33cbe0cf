// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. All recording
// methods are nil-safe so components can run without metrics in tests.
type Metrics struct {
	// Transport metrics
	BlocksReceived  prometheus.Counter
	WSReconnects    prometheus.Counter
	HighestSlotSeen prometheus.Gauge

	// Processing metrics
	TransactionsSkipped prometheus.Counter
	EventsEmitted       *prometheus.CounterVec
	EventsFiltered      *prometheus.CounterVec
	InstructionsSkipped *prometheus.CounterVec

	// Webhook metrics
	WebhookQueueDepth prometheus.Gauge
	WebhookDelivered  prometheus.Counter
	WebhookRetries    prometheus.Counter
	WebhookExhausted  prometheus.Counter
	WebhookDropped    prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "raydium_alerts"
	}

	return &Metrics{
		BlocksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "blocks_received_total",
			Help:      "Total number of block notifications received",
		}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_reconnects_total",
			Help:      "Total number of WebSocket reconnects",
		}),
		HighestSlotSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "highest_slot_seen",
			Help:      "Highest Solana slot number seen",
		}),

		TransactionsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processing",
			Name:      "transactions_skipped_total",
			Help:      "Total number of failed or undecodable transactions skipped",
		}),
		EventsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processing",
			Name:      "events_emitted_total",
			Help:      "Total number of events emitted by protocol and event type",
		}, []string{"protocol", "event_type"}),
		EventsFiltered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processing",
			Name:      "events_filtered_total",
			Help:      "Total number of events rejected by the allow-list filter",
		}, []string{"protocol"}),
		InstructionsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processing",
			Name:      "instructions_skipped_total",
			Help:      "Total number of instructions skipped by protocol and reason",
		}, []string{"protocol", "reason"}),

		WebhookQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "queue_depth",
			Help:      "Current number of events queued for webhook delivery",
		}),
		WebhookDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "delivered_total",
			Help:      "Total number of events delivered to the webhook",
		}),
		WebhookRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "retries_total",
			Help:      "Total number of webhook delivery retries",
		}),
		WebhookExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "exhausted_total",
			Help:      "Total number of events dropped after exhausting retries",
		}),
		WebhookDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "dropped_total",
			Help:      "Total number of events dropped because the queue was full",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordBlock records one received block and its slot.
func (m *Metrics) RecordBlock(slot uint64) {
	if m == nil {
		return
	}
	m.BlocksReceived.Inc()
	m.HighestSlotSeen.Set(float64(slot))
}

// RecordReconnect increments the WebSocket reconnect counter.
func (m *Metrics) RecordReconnect() {
	if m == nil {
		return
	}
	m.WSReconnects.Inc()
}

// RecordTransactionSkipped increments the skipped transaction counter.
func (m *Metrics) RecordTransactionSkipped() {
	if m == nil {
		return
	}
	m.TransactionsSkipped.Inc()
}

// RecordEventEmitted records one emitted event.
func (m *Metrics) RecordEventEmitted(protocol, eventType string) {
	if m == nil {
		return
	}
	m.EventsEmitted.WithLabelValues(protocol, eventType).Inc()
}

// RecordEventFiltered records one event rejected by the filter.
func (m *Metrics) RecordEventFiltered(protocol string) {
	if m == nil {
		return
	}
	m.EventsFiltered.WithLabelValues(protocol).Inc()
}

// RecordInstructionSkipped records one skipped instruction.
func (m *Metrics) RecordInstructionSkipped(protocol, reason string) {
	if m == nil {
		return
	}
	m.InstructionsSkipped.WithLabelValues(protocol, reason).Inc()
}

// SetWebhookQueueDepth updates the webhook queue depth gauge.
func (m *Metrics) SetWebhookQueueDepth(n int) {
	if m == nil {
		return
	}
	m.WebhookQueueDepth.Set(float64(n))
}

// RecordWebhookDelivered increments the delivered counter.
func (m *Metrics) RecordWebhookDelivered() {
	if m == nil {
		return
	}
	m.WebhookDelivered.Inc()
}

// RecordWebhookRetry increments the retry counter.
func (m *Metrics) RecordWebhookRetry() {
	if m == nil {
		return
	}
	m.WebhookRetries.Inc()
}

// RecordWebhookExhausted increments the exhausted counter.
func (m *Metrics) RecordWebhookExhausted() {
	if m == nil {
		return
	}
	m.WebhookExhausted.Inc()
}

// RecordWebhookDropped increments the queue-full drop counter.
func (m *Metrics) RecordWebhookDropped() {
	if m == nil {
		return
	}
	m.WebhookDropped.Inc()
}
