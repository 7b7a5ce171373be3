package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Evaluación
	EvaluationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_alerts_evaluation_runs_total",
			Help: "Evaluation triggers by outcome",
		},
		[]string{"outcome"}, // admitted, rejected, forced
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stock_alerts_evaluation_duration_seconds",
			Help:    "Time taken by one evaluation pass",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	EvaluationItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_alerts_evaluation_items_total",
			Help: "Snapshot items evaluated by result",
		},
		[]string{"result"}, // alerted, quiet, suppressed, failed
	)

	// Alertas
	AlertsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_alerts_created_total",
			Help: "Alerts created by severity",
		},
		[]string{"severity"},
	)

	AlertsAcknowledgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_alerts_acknowledged_total",
			Help: "Alerts transitioned to acknowledged",
		},
	)

	AlertsEvictedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_alerts_evicted_total",
			Help: "Alerts removed from the store by reason",
		},
		[]string{"reason"}, // capacity, age
	)

	// Notificaciones y persistencia
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_alerts_notifications_total",
			Help: "Critical in-app notifications by status",
		},
		[]string{"status"}, // success, failed
	)

	PersistenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_alerts_persistence_failures_total",
			Help: "Record store failures by record and operation",
		},
		[]string{"record", "op"},
	)

	SettingsUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_alerts_settings_updates_total",
			Help: "Settings mutation attempts by outcome",
		},
		[]string{"outcome"}, // applied, denied, invalid
	)
)
