// Package logging configures log/slog for the timeline service.
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "Reconcile started")  // includes run_id
//
// Packages log through component loggers derived from the default, e.g.
// slog.Default().With("component", "timeline.reconcile"), so Setup must run
// before they are created.
//
// Values logged under auth_value, token, password or api_key are replaced
// with "***".
package logging
