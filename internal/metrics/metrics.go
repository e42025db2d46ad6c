// Package metrics exposes the Prometheus collectors shared across the
// outbox publisher, consumer handlers, and payment retry scheduler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OutboxEventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_outbox_events_processed_total",
		Help: "Outbox events successfully published, by event type.",
	}, []string{"event_type"})

	OutboxEventsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_outbox_events_failed_total",
		Help: "Outbox publish attempts that failed, by event type.",
	}, []string{"event_type"})

	OutboxEventsPoisoned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_outbox_events_poisoned_total",
		Help: "Outbox events that exhausted their retry budget, by event type.",
	}, []string{"event_type"})

	OutboxPublishDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderflow_outbox_publish_duration_seconds",
		Help:    "Time spent publishing a claimed outbox batch to the broker.",
		Buckets: prometheus.DefBuckets,
	})

	ConsumerDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_consumer_deliveries_total",
		Help: "Consumer deliveries processed, by queue and outcome (ack, nack_requeue, nack_dlq).",
	}, []string{"queue", "outcome"})

	RetryScanOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_retry_scan_outcomes_total",
		Help: "Payment retry scheduler outcomes per run, by kind (timed_out, retried, skipped, failed).",
	}, []string{"kind"})
)
