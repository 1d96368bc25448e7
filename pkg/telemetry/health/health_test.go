package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{"default timeout", 0, DefaultCheckTimeout},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if len(checker.Names()) != 0 {
				t.Errorf("expected no checks, got %v", checker.Names())
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{"no checks", nil, StatusReady},
		{
			name: "all pass",
			checks: map[string]CheckFunc{
				"store":   func(context.Context) error { return nil },
				"presets": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "store down",
			checks: map[string]CheckFunc{
				"store":   func(context.Context) error { return errors.New("database is locked") },
				"presets": func(context.Context) error { return nil },
			},
			wantStatus: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.Register(name, check)
			}

			status := checker.Readiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("checks = %d, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	status := checker.Readiness(context.Background())
	res := status.Checks["slow"]
	if res.Status != StatusUnhealthy || res.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow check = %+v, want timeout", res)
	}
}

func TestRegister_Replaces(t *testing.T) {
	checker := New(0)
	checker.Register("store", func(context.Context) error { return errors.New("old") })
	checker.Register("store", func(context.Context) error { return nil })
	checker.Register("presets", func(context.Context) error { return nil })

	if names := checker.Names(); len(names) != 2 || names[0] != "presets" || names[1] != "store" {
		t.Errorf("Names() = %v", names)
	}
	if status := checker.Readiness(context.Background()); status.Status != StatusReady {
		t.Errorf("status = %s, want ready after replacement", status.Status)
	}
}

func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	checker.Register("store", func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		method   string
		wantCode int
	}{
		{"liveness", checker.LivenessHandler(), http.MethodGet, http.StatusOK},
		{"liveness head", checker.LivenessHandler(), http.MethodHead, http.StatusOK},
		{"readiness degraded", checker.ReadinessHandler(), http.MethodGet, http.StatusServiceUnavailable},
		{"version", VersionHandler("1.0.0", "abc", "now"), http.MethodGet, http.StatusOK},
		{"post rejected", checker.LivenessHandler(), http.MethodPost, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(tt.method, "/", nil))
			if w.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestReadinessHandler_Body(t *testing.T) {
	checker := New(time.Second)
	checker.Register("store", func(context.Context) error { return errors.New("down") })

	w := httptest.NewRecorder()
	checker.ReadinessHandler()(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var status Status
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if status.Checks["store"].Message != "down" {
		t.Errorf("store check = %+v", status.Checks["store"])
	}
}
