package vsbench

import (
	"errors"
	"strings"
	"testing"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantOp   string
		checkFn  func(error) bool
	}{
		{
			name:     "MissingBackend",
			err:      NewMissingBackendError("opencl"),
			wantKind: KindMissingBackend,
			wantOp:   "Open",
			checkFn:  IsMissingBackend,
		},
		{
			name:     "ShapeOrDevice",
			err:      NewShapeError("gemm", "output length mismatch"),
			wantKind: KindShapeOrDevice,
			wantOp:   "gemm",
			checkFn:  func(err error) bool { return !IsMismatch(err) && !IsMissingBackend(err) },
		},
		{
			name:     "Execution",
			err:      NewExecutionError("Measure", "build failed", errors.New("boom")),
			wantKind: KindExecution,
			wantOp:   "Measure",
			checkFn:  func(err error) bool { return !IsMismatch(err) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e *Error
			if !errors.As(tt.err, &e) {
				t.Fatalf("Expected *Error, got %T", tt.err)
			}
			if e.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.wantKind)
			}
			if e.Op != tt.wantOp {
				t.Errorf("Op = %v, want %v", e.Op, tt.wantOp)
			}
			if !tt.checkFn(tt.err) {
				t.Error("Kind check function returned false")
			}
			if !strings.Contains(tt.err.Error(), tt.wantKind.String()) {
				t.Errorf("Error string %q does not name kind %v", tt.err.Error(), tt.wantKind)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	baseErr := errors.New("base error")
	wrapped := NewExecutionError("Test", "wrapped error", baseErr)

	var e *Error
	if !errors.As(wrapped, &e) {
		t.Fatal("Expected *Error")
	}
	if e.Unwrap() != baseErr {
		t.Errorf("Unwrap() = %v, want %v", e.Unwrap(), baseErr)
	}
	if !errors.Is(wrapped, baseErr) {
		t.Error("errors.Is() should return true for wrapped error")
	}
}

func TestMismatchErrorMessage(t *testing.T) {
	err := &MismatchError{
		Scenario: "gemm",
		Index:    7,
		Coord:    []int{1, 3},
		Got:      1.5,
		Want:     1.0,
		AbsDiff:  0.5,
		Bad:      1,
		Total:    16,
	}
	msg := err.Error()
	for _, want := range []string{"gemm", "1/16", "[1 3]", "index 7"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q: %s", want, msg)
		}
	}
	if !IsMismatch(err) {
		t.Error("IsMismatch = false")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindMismatch, "Mismatch"},
		{KindMissingBackend, "MissingBackend"},
		{KindShapeOrDevice, "ShapeOrDevice"},
		{KindExecution, "Execution"},
		{ErrorKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
