package metrics

import (
	"formation-hq/timeline/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PresetMetrics tracks preset matching and preset file reloads.
type PresetMetrics struct {
	matchesTotal *prometheus.CounterVec
	reloadsTotal *prometheus.CounterVec
	templates    prometheus.Gauge
}

// NewPresetMetrics creates and registers preset metrics with the provided registry.
func NewPresetMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PresetMetrics {
	pm := &PresetMetrics{
		matchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "preset_matches_total",
				Help:      "Total number of policy sets classified, by matched preset label",
			},
			[]string{"label"},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "preset_reloads_total",
				Help:      "Total number of preset file reloads",
			},
			[]string{"result"},
		),

		templates: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "preset_templates",
				Help:      "Number of templates in the active preset library",
			},
		),
	}

	registry.MustRegister(
		pm.matchesTotal,
		pm.reloadsTotal,
		pm.templates,
	)

	return pm
}

// RecordMatch increments the match counter for label.
func (pm *PresetMetrics) RecordMatch(label string) {
	pm.matchesTotal.WithLabelValues(label).Inc()
}

// RecordReload increments the reload counter.
func (pm *PresetMetrics) RecordReload(result string) {
	pm.reloadsTotal.WithLabelValues(result).Inc()
}

// SetTemplates sets the template gauge.
func (pm *PresetMetrics) SetTemplates(n int) {
	pm.templates.Set(float64(n))
}
