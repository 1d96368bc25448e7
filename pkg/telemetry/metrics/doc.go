// Package metrics provides Prometheus metrics for the timeline service.
//
// # Metrics Categories
//
//   - Reconcile: store operations by kind and result, run count and duration by mode
//   - Presets: match results by label, preset file reloads, library size
//   - HTTP: API request count and duration by route
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordOperation("create", metrics.ResultSuccess)
//	collector.RecordPresetMatch("Standard")
//	mux.Handle("/metrics", collector.Handler())
//
// All names are prefixed with the configured namespace and subsystem,
// "timeline_snapshot_" by default.
package metrics
