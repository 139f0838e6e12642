package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ComplianceRuns counts compliance evaluations by framework and outcome
	ComplianceRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reconrisk",
			Name:      "compliance_runs_total",
			Help:      "Total number of compliance evaluations",
		},
		[]string{"framework", "outcome"},
	)

	// FindingsTotal counts findings emitted per framework and bucket
	FindingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reconrisk",
			Name:      "findings_total",
			Help:      "Total number of compliance findings produced",
		},
		[]string{"framework", "bucket"},
	)

	// CriticalityEvaluations counts asset criticality assessments by resulting level
	CriticalityEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reconrisk",
			Name:      "criticality_evaluations_total",
			Help:      "Total number of asset criticality evaluations",
		},
		[]string{"level"},
	)

	// RiskPrioritizations counts vulnerability prioritizations by resulting priority
	RiskPrioritizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reconrisk",
			Name:      "risk_prioritizations_total",
			Help:      "Total number of vulnerability risk prioritizations",
		},
		[]string{"priority"},
	)

	// EvaluationDuration observes wall time of whole evaluation runs
	EvaluationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reconrisk",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of compliance and risk evaluation runs",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent; registration errors for already-registered collectors are ignored.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(ComplianceRuns)
		prometheus.DefaultRegisterer.Register(FindingsTotal)
		prometheus.DefaultRegisterer.Register(CriticalityEvaluations)
		prometheus.DefaultRegisterer.Register(RiskPrioritizations)
		prometheus.DefaultRegisterer.Register(EvaluationDuration)
	})
}
