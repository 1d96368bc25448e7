package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for HTTP request IDs.
	RequestIDKey contextKey = "request_id"

	// RunIDKey is the context key for reconcile run IDs.
	RunIDKey contextKey = "run_id"

	// VolumeKey is the context key for the volume being worked on.
	VolumeKey contextKey = "volume_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRunID adds a reconcile run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the reconcile run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithVolume adds a volume ID to the context.
func WithVolume(ctx context.Context, volume string) context.Context {
	return context.WithValue(ctx, VolumeKey, volume)
}

// GetVolume retrieves the volume ID from the context.
func GetVolume(ctx context.Context) string {
	if volume, ok := ctx.Value(VolumeKey).(string); ok {
		return volume
	}
	return ""
}

// contextAttrs returns the non-empty context fields as attributes.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if v := GetRequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(RequestIDKey), v))
	}
	if v := GetRunID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(RunIDKey), v))
	}
	if v := GetVolume(ctx); v != "" {
		attrs = append(attrs, slog.String(string(VolumeKey), v))
	}
	return attrs
}
