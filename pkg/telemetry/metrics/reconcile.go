package metrics

import (
	"time"

	"formation-hq/timeline/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics tracks applying policy plans to volumes.
//
// Metrics:
//   - timeline_snapshot_operations_total: store calls by op and result
//   - timeline_snapshot_reconcile_runs_total: runs by mode and result
//   - timeline_snapshot_reconcile_duration_seconds: run duration by mode
type ReconcileMetrics struct {
	operationsTotal *prometheus.CounterVec
	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
}

// NewReconcileMetrics creates and registers reconcile metrics with the provided registry.
func NewReconcileMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ReconcileMetrics {
	rm := &ReconcileMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "operations_total",
				Help:      "Total number of policy store operations issued by the reconciler",
			},
			[]string{"op", "result"},
		),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reconcile_runs_total",
				Help:      "Total number of reconcile runs",
			},
			[]string{"mode", "result"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reconcile_duration_seconds",
				Help:      "Duration of reconcile runs in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(
		rm.operationsTotal,
		rm.runsTotal,
		rm.runDuration,
	)

	return rm
}

// RecordOperation increments the operation counter.
func (rm *ReconcileMetrics) RecordOperation(op, result string) {
	rm.operationsTotal.WithLabelValues(op, result).Inc()
}

// ObserveRun records one run.
func (rm *ReconcileMetrics) ObserveRun(mode, result string, duration time.Duration) {
	rm.runsTotal.WithLabelValues(mode, result).Inc()
	rm.runDuration.WithLabelValues(mode).Observe(duration.Seconds())
}
