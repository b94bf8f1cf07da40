// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsd_runs_total",
			Help: "Total number of generation runs by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fsd_runs_active",
			Help: "Number of generation runs in progress",
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fsd_stage_duration_seconds",
			Help:    "Duration of workflow stages in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 180},
		},
		[]string{"stage"},
	)

	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsd_stage_transitions_total",
			Help: "Stage state transitions",
		},
		[]string{"stage", "status"},
	)

	SubtasksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsd_subtasks_failed_total",
			Help: "Sub-tasks that could not be created",
		},
		[]string{"role"},
	)

	SinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fsd_event_sink_errors_total",
			Help: "Events an event sink failed to deliver",
		},
		[]string{"sink"},
	)
)
