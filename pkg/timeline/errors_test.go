package timeline

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "store error",
			err:  NewStoreError("sqlite", "attach", cause),
			want: "store error [backend=sqlite, operation=attach]: boom",
		},
		{
			name: "rule error with input",
			err:  NewRuleError("FREQ=HOURLY", cause),
			want: `invalid recurrence rule "FREQ=HOURLY": boom`,
		},
		{
			name: "rule error without input",
			err:  NewRuleError("", cause),
			want: "invalid recurrence rule: boom",
		},
		{
			name: "operation error with id",
			err:  &OperationError{Op: "edit", PolicyID: 7, Name: "daily", VolumeID: "vol-1", Cause: cause},
			want: "edit policy 7 (daily) on volume vol-1: boom",
		},
		{
			name: "operation error without id",
			err:  &OperationError{Op: "create", Name: "daily", VolumeID: "vol-1", Cause: cause},
			want: `create policy "daily" on volume vol-1: boom`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, cause) {
				t.Error("errors.Is(err, cause) = false")
			}
		})
	}
}

func TestRuleErrorMatchesSentinel(t *testing.T) {
	err := NewRuleError("x", errors.New("bad"))
	if !errors.Is(err, ErrInvalidRule) {
		t.Error("RuleError should match ErrInvalidRule")
	}

	wrapped := NewStoreError("rest", "create", err)
	if !errors.Is(wrapped, ErrInvalidRule) {
		t.Error("wrapped RuleError should match ErrInvalidRule")
	}
	var re *RuleError
	if !errors.As(wrapped, &re) || re.Input != "x" {
		t.Errorf("errors.As() = %v, want RuleError with input x", re)
	}
}

func TestStoreErrorWrapsNotFound(t *testing.T) {
	err := NewStoreError("memory", "edit", ErrNotFound)
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false")
	}
	if errors.Is(err, ErrAttached) {
		t.Error("errors.Is(err, ErrAttached) = true")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Error() = %q", err.Error())
	}
}
