// Package telemetry groups the observability packages of the timeline
// service.
//
// # Components
//
//   - logging: slog setup with request, run and volume ids taken from the context
//   - metrics: Prometheus counters and histograms for reconcile runs, preset
//     matching and HTTP requests
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{Level: "info", Format: "json"})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	checker := health.New(0)
//	checker.Register("store", func(ctx context.Context) error {
//		_, err := store.List(ctx)
//		return err
//	})
package telemetry
