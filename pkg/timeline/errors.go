package timeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when a policy or attachment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRule is wrapped by RuleError for malformed recurrence rules.
	ErrInvalidRule = errors.New("invalid recurrence rule")

	// ErrAttached is returned when deleting a policy that is still attached to a volume.
	ErrAttached = errors.New("policy is still attached")
)

// StoreError represents an error from a policy store backend.
type StoreError struct {
	Backend   string // Store backend type ("sqlite", "memory", "rest")
	Operation string // Operation that failed ("create", "attach", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// RuleError represents a recurrence rule that failed to parse or validate.
type RuleError struct {
	Input string // Rule text or description
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%v %q: %v", ErrInvalidRule, e.Input, e.Cause)
	}
	return fmt.Sprintf("%v: %v", ErrInvalidRule, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RuleError) Unwrap() error {
	return e.Cause
}

// Is reports ErrInvalidRule so callers can match any rule failure.
func (e *RuleError) Is(target error) bool {
	return target == ErrInvalidRule
}

// NewRuleError creates a new RuleError.
func NewRuleError(input string, cause error) *RuleError {
	return &RuleError{
		Input: input,
		Cause: cause,
	}
}

// OperationError records a store call that failed while applying a
// reconcile plan.
type OperationError struct {
	Op       string   // "create", "attach", "edit", "detach" or "delete"
	PolicyID PolicyID // NoID for a create that never got an id
	Name     string
	VolumeID VolumeID
	Cause    error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.PolicyID != NoID {
		return fmt.Sprintf("%s policy %d (%s) on volume %s: %v", e.Op, e.PolicyID, e.Name, e.VolumeID, e.Cause)
	}
	return fmt.Sprintf("%s policy %q on volume %s: %v", e.Op, e.Name, e.VolumeID, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *OperationError) Unwrap() error {
	return e.Cause
}
