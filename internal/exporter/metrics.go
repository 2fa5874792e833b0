package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// exportsTotal counts finished export jobs.
	// Labels: result (completed, failed, cancelled)
	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tasktracker",
			Subsystem: "exporter",
			Name:      "exports_total",
			Help:      "Total number of task export jobs by result",
		},
		[]string{"result"},
	)

	exportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tasktracker",
			Subsystem: "exporter",
			Name:      "export_duration_seconds",
			Help:      "Duration of successful task exports in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
