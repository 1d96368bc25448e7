// Package middleware provides the HTTP middleware of the timeline API:
// request ids, request logging with metrics, and panic recovery.
//
// Apply them around the mux in this order:
//
//	var h http.Handler = mux
//	h = middleware.Logging(logger, collector)(h)
//	h = middleware.RequestID(h)
//	h = middleware.Recovery(h)
package middleware
