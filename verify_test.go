package vsbench

import (
	"errors"
	"math"
	"testing"
)

func TestAllCloseToleranceLaw(t *testing.T) {
	tests := []struct {
		name string
		got  float32
		want float32
		ok   bool
	}{
		{name: "Exact", got: 1.0, want: 1.0, ok: true},
		{name: "WithinAbs", got: 5e-5, want: 0, ok: true},
		{name: "OutsideAbs", got: 2e-4, want: 0, ok: false},
		{name: "WithinRel", got: 100.05, want: 100, ok: true},
		{name: "OutsideRel", got: 100.2, want: 100, ok: false},
		{name: "NegativeWithinRel", got: -100.05, want: -100, ok: true},
		{name: "NaNFails", got: float32(math.NaN()), want: 0, ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := AllClose("law", []float32{tc.got}, []float32{tc.want}, []int{1},
				DefaultAtol, DefaultRtol)
			if tc.ok && err != nil {
				t.Errorf("AllClose(%v, %v) = %v, want pass", tc.got, tc.want, err)
			}
			if !tc.ok && err == nil {
				t.Errorf("AllClose(%v, %v) passed, want Mismatch", tc.got, tc.want)
			}
		})
	}
}

func TestAllCloseReportsWorstElement(t *testing.T) {
	want := []float32{0, 0, 0, 0, 0, 0}
	got := []float32{0, 0.001, 0, 0, 0.5, 0}
	err := AllClose("worst", got, want, []int{2, 3}, DefaultAtol, DefaultRtol)
	if err == nil {
		t.Fatal("expected Mismatch, got nil")
	}
	var me *MismatchError
	if !errors.As(err, &me) {
		t.Fatalf("error %T is not a MismatchError", err)
	}
	if me.Index != 4 {
		t.Errorf("worst index = %d, want 4", me.Index)
	}
	if len(me.Coord) != 2 || me.Coord[0] != 1 || me.Coord[1] != 1 {
		t.Errorf("worst coord = %v, want [1 1]", me.Coord)
	}
	if me.Bad != 2 {
		t.Errorf("bad count = %d, want 2", me.Bad)
	}
	if !IsMismatch(err) {
		t.Error("IsMismatch = false for MismatchError")
	}
}

func TestAllCloseLengthMismatch(t *testing.T) {
	err := AllClose("len", []float32{1, 2}, []float32{1}, []int{1}, DefaultAtol, DefaultRtol)
	if err == nil {
		t.Fatal("expected ShapeOrDevice error, got nil")
	}
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindShapeOrDevice {
		t.Errorf("error %v, want ShapeOrDevice kind", err)
	}
}

func TestAllCloseScenarioOverride(t *testing.T) {
	// A looser per-scenario tolerance accepts what the defaults reject.
	got, want := []float32{1.01}, []float32{1.0}
	if err := AllClose("tight", got, want, []int{1}, DefaultAtol, DefaultRtol); err == nil {
		t.Error("default tolerance accepted 1% error")
	}
	if err := AllClose("loose", got, want, []int{1}, 1e-4, 2e-2); err != nil {
		t.Errorf("loose tolerance rejected 1%% error: %v", err)
	}
}
