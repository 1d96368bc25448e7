package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"formation-hq/timeline/pkg/timeline"
	"formation-hq/timeline/pkg/timeline/storage"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// badRequestError marks malformed client input.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &badRequestError{err: fmt.Errorf(format, args...)}
}

// statusFor maps store and input errors to HTTP status codes. The REST
// store client maps them back.
func statusFor(err error) int {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad), errors.Is(err, timeline.ErrInvalidRule), errors.Is(err, storage.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, timeline.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, timeline.ErrAttached):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeJSON reads a single JSON value from the request body.
func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, timeline.ErrInvalidRule) {
			return err
		}
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

func pathPolicyID(r *http.Request) (timeline.PolicyID, error) {
	id, err := timeline.ParsePolicyID(r.PathValue("id"))
	if err != nil {
		return timeline.NoID, &badRequestError{err: err}
	}
	return id, nil
}

func pathVolume(r *http.Request) (timeline.VolumeID, error) {
	v := r.PathValue("volume")
	if v == "" {
		return "", badRequest("volume id is required")
	}
	return timeline.VolumeID(v), nil
}
