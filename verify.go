// Package vsbench tolerance-based verification of candidate outputs
package vsbench

import (
	"fmt"
	"math"
)

// Default tolerances for candidate-versus-reference comparison. Individual
// harnesses may override them for scenarios with looser numerics.
const (
	DefaultAtol = 1e-4
	DefaultRtol = 1e-3
)

// AllClose asserts that every element pair satisfies
//
//	|got - want| <= atol + rtol*|want|
//
// treating want as ground truth. shape describes the logical layout of both
// slices and is used only to report coordinates of the worst deviation. On
// violation it returns a *MismatchError naming scenario, the count of
// out-of-tolerance elements, and the maximal deviating pair.
func AllClose(scenario string, got, want []float32, shape []int, atol, rtol float64) error {
	if len(got) != len(want) {
		return NewShapeError(scenario,
			fmt.Sprintf("output length mismatch: candidate %d, reference %d", len(got), len(want)))
	}

	bad := 0
	worst := -1
	var worstDiff float64
	for i := range want {
		diff := math.Abs(float64(got[i]) - float64(want[i]))
		if diff > atol+rtol*math.Abs(float64(want[i])) || math.IsNaN(diff) {
			bad++
			if worst == -1 || diff > worstDiff || math.IsNaN(diff) {
				worstDiff = diff
				worst = i
			}
		}
	}
	if bad == 0 {
		return nil
	}
	return &MismatchError{
		Scenario: scenario,
		Index:    worst,
		Coord:    unflatten(worst, shape),
		Got:      got[worst],
		Want:     want[worst],
		AbsDiff:  worstDiff,
		Bad:      bad,
		Total:    len(want),
	}
}

// unflatten converts a flat row-major index into coordinates within shape.
func unflatten(idx int, shape []int) []int {
	if len(shape) == 0 {
		return nil
	}
	coord := make([]int, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] > 0 {
			coord[i] = idx % shape[i]
			idx /= shape[i]
		}
	}
	return coord
}
