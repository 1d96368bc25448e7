// Package server exposes a policy store, the preset library and the
// reconciler over HTTP.
//
// # Routes
//
// Policy store, compatible with the rest store backend:
//
//	POST   /api/config/snapshot/policies
//	PUT    /api/config/snapshot/policies
//	GET    /api/config/snapshot/policies
//	DELETE /api/config/snapshot/policies/{id}
//	PUT    /api/config/snapshot/policies/{id}/attach/{volume}
//	PUT    /api/config/snapshot/policies/{id}/detach/{volume}
//	GET    /api/config/volumes/{volume}/snapshot/policies
//
// Presets and reconciliation:
//
//	GET    /api/config/snapshot/presets
//	POST   /api/config/snapshot/presets/match
//	GET    /api/config/volumes/{volume}/snapshot/preset
//	POST   /api/config/volumes/{volume}/snapshot/reconcile
//	DELETE /api/config/volumes/{volume}/snapshot/policies
//
// Operations: /health, /ready, /version and the metrics path.
//
// Errors are returned as {"error": "..."} with 400 for invalid input or
// rules, 404 for unknown policies, 409 for deleting an attached policy and
// 500 otherwise.
//
// # Usage
//
//	srv, err := server.NewServer(&cfg.Server, server.Deps{
//	    Store:      backend,
//	    Reconciler: reconciler,
//	    Presets:    watcher,
//	    Metrics:    collector,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
package server
