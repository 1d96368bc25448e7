package metrics

import (
	"strconv"
	"sync"
	"time"

	"formation-hq/timeline/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values shared by the counters.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// otherLabel replaces label values once a metric hits its cardinality limit.
const otherLabel = "other"

// Collector owns every Prometheus metric of the timeline service and gives
// the reconciler, preset watcher and HTTP server one place to record into.
//
// A disabled collector accepts all calls and records nothing.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	reconcileMetrics *ReconcileMetrics
	presetMetrics    *PresetMetrics
	requestMetrics   *RequestMetrics

	// Preset labels come from user files, so they are bounded.
	presetLabels *CardinalityLimiter
}

// NewCollector creates a collector that registers its metrics with
// registry. If registry is nil a fresh one is created.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:       *cfg,
		registry:     registry,
		presetLabels: NewCardinalityLimiter(64),
	}
	if c.config.Namespace == "" {
		c.config.Namespace = config.DefaultMetricsNamespace
	}
	if c.config.Subsystem == "" {
		c.config.Subsystem = config.DefaultMetricsSubsystem
	}

	c.reconcileMetrics = NewReconcileMetrics(&c.config, registry)
	c.presetMetrics = NewPresetMetrics(&c.config, registry)
	c.requestMetrics = NewRequestMetrics(&c.config, registry)

	return c
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// RecordOperation counts one store call made while applying a plan.
// op is "create", "attach", "edit", "detach" or "delete".
func (c *Collector) RecordOperation(op, result string) {
	if !c.config.Enabled {
		return
	}
	c.reconcileMetrics.RecordOperation(op, result)
}

// ObserveReconcile records a finished reconcile run.
func (c *Collector) ObserveReconcile(mode, result string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.reconcileMetrics.ObserveRun(mode, result, duration)
}

// RecordPresetMatch counts which template a policy set matched.
func (c *Collector) RecordPresetMatch(label string) {
	if !c.config.Enabled {
		return
	}
	if !c.presetLabels.Allow(label) {
		label = otherLabel
	}
	c.presetMetrics.RecordMatch(label)
}

// RecordPresetReload counts a reload of the preset file.
func (c *Collector) RecordPresetReload(err error) {
	if !c.config.Enabled {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	c.presetMetrics.RecordReload(result)
}

// SetPresetTemplates records how many templates the active library holds.
func (c *Collector) SetPresetTemplates(n int) {
	if !c.config.Enabled {
		return
	}
	c.presetMetrics.SetTemplates(n)
}

// RecordHTTPRequest records a served API request. route is the mux
// pattern, not the raw path, to keep volume names out of the labels.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRequest(method, route, strconv.Itoa(status), duration)
}

// Registry returns the Prometheus registry used by the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label value may be used. Known values are always
// allowed; new ones only while the limit has not been reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
