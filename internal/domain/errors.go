package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyRunning = errors.New("job already running")
)

// ServiceError is an error returned by the external analysis service.
// Transient errors (rate limits, 5xx, network faults) may be retried;
// fatal ones (auth failure, malformed request, exhausted quota) must not be.
type ServiceError struct {
	Op        string
	Status    int
	Message   string
	Transient bool
}

func (e *ServiceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func NewTransientServiceError(op string, status int, msg string) *ServiceError {
	return &ServiceError{Op: op, Status: status, Message: msg, Transient: true}
}

func NewFatalServiceError(op string, status int, msg string) *ServiceError {
	return &ServiceError{Op: op, Status: status, Message: msg}
}

// IsTransient reports whether err may succeed on retry.
func IsTransient(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Transient
	}
	return false
}

// PreconditionError reports a missing prerequisite (no sidecars for a build,
// edit host unreachable). Never retried.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// AssemblyError reports a defective cut in an edit plan: a range that rounds
// to zero frames, a same-track overlap, or a speed ramp on a source below the
// high-frame-rate threshold. CutIndex is the zero-based position in the plan.
type AssemblyError struct {
	CutIndex   int
	SourceFile string
	Reason     string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("cut %d (%s): %s", e.CutIndex, e.SourceFile, e.Reason)
}
