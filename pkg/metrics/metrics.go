// Package metrics provides Prometheus metrics for the Sentinela service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationsTotal tracks analysis evaluations by source (http, kafka)
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinela",
			Subsystem: "engine",
			Name:      "evaluations_total",
			Help:      "Total number of analysis records evaluated",
		},
		[]string{"tenant_id", "source"},
	)

	// AlertsCreatedTotal tracks alerts created by type and category
	AlertsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinela",
			Subsystem: "engine",
			Name:      "alerts_created_total",
			Help:      "Total number of alerts created",
		},
		[]string{"tenant_id", "type", "category"},
	)

	// RuleInsertFailuresTotal tracks per-rule insert failures during evaluation
	RuleInsertFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinela",
			Subsystem: "engine",
			Name:      "rule_insert_failures_total",
			Help:      "Total number of rule matches whose alert insert failed",
		},
		[]string{"tenant_id", "category"},
	)

	// AlertsResolvedTotal tracks lifecycle transitions to resolved
	AlertsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinela",
			Subsystem: "lifecycle",
			Name:      "alerts_resolved_total",
			Help:      "Total number of alerts marked resolved",
		},
		[]string{"tenant_id"},
	)

	// SummaryDuration tracks the dashboard summary aggregation latency
	SummaryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sentinela",
			Subsystem: "store",
			Name:      "summary_duration_seconds",
			Help:      "Duration of alert summary aggregations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		},
	)

	// DLQMessagesTotal tracks analysis messages routed to the dead letter queue
	DLQMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinela",
			Subsystem: "ingest",
			Name:      "dlq_messages_total",
			Help:      "Total number of analysis messages sent to the DLQ",
		},
		[]string{"reason"},
	)
)
