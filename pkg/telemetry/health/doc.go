// Package health provides liveness, readiness and version endpoints for the
// timeline service.
//
//   - /health: the process is serving
//   - /ready: every registered component check passes
//   - /version: build information
//
// Components register a CheckFunc with the Checker:
//
//	checker := health.New(0)
//	checker.Register("store", func(ctx context.Context) error {
//	    _, err := backend.List(ctx)
//	    return err
//	})
package health
