package tensor

// Shape and stride helpers shared by views and kernels.

func numel(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func cloneInts(s []int) []int {
	return append([]int(nil), s...)
}

func shapeEq(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func rowMajorStrides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for d := len(shape) - 1; d >= 0; d-- {
		st[d] = acc
		acc *= shape[d]
	}
	return st
}

func isContiguous(shape, st []int) bool {
	acc := 1
	for d := len(shape) - 1; d >= 0; d-- {
		if shape[d] != 1 && st[d] != acc {
			return false
		}
		acc *= shape[d]
	}
	return true
}

// reshapeStrides attempts to express a reshape of a strided view without
// copying. It reports false when the view's memory layout cannot satisfy
// the new shape, in which case the caller must materialize first.
func reshapeStrides(oldShape, oldSt, newShape []int) ([]int, bool) {
	// Ignore size-1 dimensions of the old view; they contribute nothing to
	// the layout.
	var os, ot []int
	for i := range oldShape {
		if oldShape[i] != 1 {
			os = append(os, oldShape[i])
			ot = append(ot, oldSt[i])
		}
	}

	newSt := make([]int, len(newShape))
	oi := 0
	ni := 0
	for ni < len(newShape) {
		if newShape[ni] == 1 {
			newSt[ni] = 0
			ni++
			continue
		}
		if oi >= len(os) {
			return nil, false
		}

		// Grow matching groups of old and new dimensions until their
		// element products agree.
		oj, nj := oi+1, ni+1
		op, np := os[oi], newShape[ni]
		for op != np {
			if op < np {
				if oj >= len(os) {
					return nil, false
				}
				op *= os[oj]
				oj++
			} else {
				if nj >= len(newShape) {
					return nil, false
				}
				if newShape[nj] != 1 {
					np *= newShape[nj]
				}
				nj++
			}
		}

		// The old group must be internally contiguous to be reinterpreted.
		for k := oi; k < oj-1; k++ {
			if ot[k] != ot[k+1]*os[k+1] {
				return nil, false
			}
		}

		// Assign new strides within the group from the innermost out.
		acc := ot[oj-1]
		for k := nj - 1; k >= ni; k-- {
			if newShape[k] == 1 {
				newSt[k] = 0
				continue
			}
			newSt[k] = acc
			acc *= newShape[k]
		}

		oi, ni = oj, nj
	}
	if oi != len(os) {
		return nil, false
	}
	return newSt, true
}
