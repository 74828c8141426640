package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline Metrics
var (
	// PipelineRunsTotal tracks finished analysis runs by final state
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecsa_pipeline_runs_total",
			Help: "Total analysis runs by final state (done/failed/rejected)",
		},
		[]string{"state"},
	)

	// StageOutcomesTotal tracks stage results by stage and outcome
	StageOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecsa_stage_outcomes_total",
			Help: "Pipeline stage results by stage and outcome (success/degraded/fatal)",
		},
		[]string{"stage", "outcome"},
	)

	// StageDuration tracks stage latency in seconds
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecsa_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)
)

// Remote Call Metrics
var (
	// RemoteCallsTotal tracks calls to remote collaborators by target and status
	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecsa_remote_calls_total",
			Help: "Remote collaborator calls by target (llm/classifier/market) and status",
		},
		[]string{"target", "status"},
	)

	// LLMHealthy is 1 while the chat-completion endpoint answers health checks
	LLMHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecsa_llm_healthy",
			Help: "Whether the chat-completion endpoint passed its last health check (1/0)",
		},
	)
)
