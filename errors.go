// Package vsbench structured error types for harness failures
package vsbench

import (
	"errors"
	"fmt"
)

// ErrorKind represents categories of harness errors
type ErrorKind int

const (
	// Numerical verification failure between candidate and reference
	KindMismatch ErrorKind = iota
	// An optional backend is not available
	KindMissingBackend
	// Mismatched shapes or devices between reference and candidate
	KindShapeOrDevice
	// A backend failed while building or forcing a computation
	KindExecution
)

// String returns the error kind as a string
func (k ErrorKind) String() string {
	switch k {
	case KindMismatch:
		return "Mismatch"
	case KindMissingBackend:
		return "MissingBackend"
	case KindShapeOrDevice:
		return "ShapeOrDevice"
	case KindExecution:
		return "Execution"
	default:
		return "Unknown"
	}
}

// Error represents a structured harness error with context
type Error struct {
	Kind    ErrorKind
	Op      string // Operation or scenario that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vsbench %s error in %s: %s (caused by: %v)",
			e.Kind, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("vsbench %s error in %s: %s", e.Kind, e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// MismatchError reports a numerical verification failure. It records the
// worst-deviating element pair so the failure is actionable without re-running
// the scenario.
type MismatchError struct {
	Scenario string
	Index    int   // Flat index of the worst element
	Coord    []int // Coordinates of the worst element in the output shape
	Got      float32
	Want     float32
	AbsDiff  float64
	Bad      int // Number of elements outside tolerance
	Total    int
}

// Error implements the error interface
func (e *MismatchError) Error() string {
	return fmt.Sprintf("vsbench Mismatch error in %s: %d/%d elements outside tolerance; worst at %v (index %d): got %v, want %v (|diff|=%.3e)",
		e.Scenario, e.Bad, e.Total, e.Coord, e.Index, e.Got, e.Want, e.AbsDiff)
}

// Sentinel errors used by backend op builders. Shape and device misuse in
// scenario composition is a programming error; backends panic with errors
// wrapping these sentinels rather than returning them.
var (
	ErrShape  = errors.New("shape mismatch")
	ErrDevice = errors.New("device mismatch")
)

// Error constructors

// NewMissingBackendError reports an unavailable optional backend
func NewMissingBackendError(name string) error {
	return &Error{
		Kind:    KindMissingBackend,
		Op:      "Open",
		Message: fmt.Sprintf("backend %q is not registered", name),
	}
}

// NewShapeError reports mismatched output shapes between the two backends
func NewShapeError(op string, message string) error {
	return &Error{
		Kind:    KindShapeOrDevice,
		Op:      op,
		Message: message,
	}
}

// NewExecutionError reports a backend failure during build or force
func NewExecutionError(op string, message string, err error) error {
	return &Error{
		Kind:    KindExecution,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsMismatch reports whether err is a numerical verification failure
func IsMismatch(err error) bool {
	var me *MismatchError
	if errors.As(err, &me) {
		return true
	}
	var e *Error
	return errors.As(err, &e) && e.Kind == KindMismatch
}

// IsMissingBackend reports whether err indicates an unavailable backend
func IsMissingBackend(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindMissingBackend
}
