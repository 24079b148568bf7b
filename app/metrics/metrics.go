// Package metrics provides the Prometheus collectors shared by the API and the scheduler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	// Serving
	DocumentsServed *prometheus.CounterVec

	// Notifications
	PingsReceived *prometheus.CounterVec
	PingsSent     *prometheus.CounterVec

	// Background processing
	TasksTotal    *prometheus.CounterVec
	TaskDuration  *prometheus.HistogramVec
	ItemsFiltered *prometheus.CounterVec
}

// NewWithRegistry creates a collector whose metrics are registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		DocumentsServed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "argot",
				Name:      "documents_served_total",
				Help:      "Total number of syndication documents served",
			},
			[]string{"resource", "format"},
		),
		PingsReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "argot",
				Name:      "pings_received_total",
				Help:      "Total number of Trackback pings received",
			},
			[]string{"resource", "status"},
		),
		PingsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "argot",
				Name:      "pings_sent_total",
				Help:      "Total number of outgoing Trackback and Pingback notifications",
			},
			[]string{"type", "status"},
		),
		TasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "argot",
				Name:      "tasks_total",
				Help:      "Total number of executed background tasks",
			},
			[]string{"type", "result"},
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "argot",
				Name:      "task_duration_seconds",
				Help:      "Background task duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"type"},
		),
		ItemsFiltered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "argot",
				Name:      "items_filtered_total",
				Help:      "Total number of items dropped by resource filters",
			},
			[]string{"resource"},
		),
	}
}
