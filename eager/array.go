package eager

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/LynnColeArt/vsbench"
)

// Array is a dense row-major float32 array on an eager device. Operations
// execute immediately (host) or in submission order (accel); either way the
// output buffer is valid once the device has synchronized.
type Array struct {
	dev   *Device
	shape []int
	data  []float32
}

// FromSlice copies data into a new array on dev. The copy is taken
// synchronously, so callers may reuse or mutate data afterwards.
func FromSlice(dev *Device, data []float32, shape ...int) *Array {
	n := numel(shape)
	if n != len(data) {
		panic(fmt.Errorf("eager: FromSlice: %w: %d elements for shape %v", vsbench.ErrShape, len(data), shape))
	}
	a := newArray(dev, shape)
	copy(a.data, data)
	return a
}

func newArray(dev *Device, shape []int) *Array {
	return &Array{
		dev:   dev,
		shape: append([]int(nil), shape...),
		data:  make([]float32, numel(shape)),
	}
}

func numel(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Harness handle implementation. Eager execution has no deferred graph, so
// Force is a no-op; Host synchronizes the device and copies the data out.

func (a *Array) Force() error { return nil }

func (a *Array) Host() ([]float32, error) {
	a.dev.SyncTransfer()
	out := make([]float32, len(a.data))
	copy(out, a.data)
	return out, nil
}

func (a *Array) Shape() []int {
	return append([]int(nil), a.shape...)
}

func (a *Array) Device() vsbench.Device {
	return a.dev
}

func (a *Array) sameDevice(b *Array) {
	if a.dev != b.dev {
		panic(fmt.Errorf("eager: %w: arrays on different devices", vsbench.ErrDevice))
	}
}

func (a *Array) sameShape(op string, b *Array) {
	if !shapeEq(a.shape, b.shape) {
		panic(fmt.Errorf("eager: %s: %w: %v vs %v", op, vsbench.ErrShape, a.shape, b.shape))
	}
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

// Elementwise operations

func (a *Array) binary(op string, b *Array, f func(x, y float32) float32) *Array {
	a.sameDevice(b)
	a.sameShape(op, b)
	out := newArray(a.dev, a.shape)
	a.dev.do(func() {
		for i := range out.data {
			out.data[i] = f(a.data[i], b.data[i])
		}
	})
	return out
}

func (a *Array) unary(f func(x float32) float32) *Array {
	out := newArray(a.dev, a.shape)
	a.dev.do(func() {
		for i := range out.data {
			out.data[i] = f(a.data[i])
		}
	})
	return out
}

// Add returns a + b elementwise.
func (a *Array) Add(b *Array) *Array {
	return a.binary("Add", b, func(x, y float32) float32 { return x + y })
}

// Mul returns a * b elementwise.
func (a *Array) Mul(b *Array) *Array {
	return a.binary("Mul", b, func(x, y float32) float32 { return x * y })
}

// Neg returns -a elementwise.
func (a *Array) Neg() *Array {
	return a.unary(func(x float32) float32 { return -x })
}

// Exp returns e**a elementwise.
func (a *Array) Exp() *Array {
	return a.unary(func(x float32) float32 { return float32(math.Exp(float64(x))) })
}

// Relu returns max(a, 0) elementwise.
func (a *Array) Relu() *Array {
	return a.unary(func(x float32) float32 {
		if x < 0 {
			return 0
		}
		return x
	})
}

// Reductions. Results are rank-1 single-element arrays so that scalar
// outputs flow through the same handle path as tensors.

// Sum reduces all elements. Accumulation is in float64 to keep large
// reductions order-insensitive at float32 tolerance.
func (a *Array) Sum() *Array {
	out := newArray(a.dev, []int{1})
	a.dev.do(func() {
		var acc float64
		for _, v := range a.data {
			acc += float64(v)
		}
		out.data[0] = float32(acc)
	})
	return out
}

// Max reduces all elements to their maximum.
func (a *Array) Max() *Array {
	out := newArray(a.dev, []int{1})
	a.dev.do(func() {
		m := float32(math.Inf(-1))
		for _, v := range a.data {
			if v > m {
				m = v
			}
		}
		out.data[0] = m
	})
	return out
}

// Movement operations

// Reshape reinterprets the array with a new shape of equal element count.
// The result shares the underlying data.
func (a *Array) Reshape(dims ...int) *Array {
	if numel(dims) != numel(a.shape) {
		panic(fmt.Errorf("eager: Reshape: %w: %v to %v", vsbench.ErrShape, a.shape, dims))
	}
	return &Array{dev: a.dev, shape: append([]int(nil), dims...), data: a.data}
}

// Permute reorders axes, materializing a new dense array.
func (a *Array) Permute(order ...int) *Array {
	if len(order) != len(a.shape) {
		panic(fmt.Errorf("eager: Permute: %w: order %v for shape %v", vsbench.ErrShape, order, a.shape))
	}
	outShape := make([]int, len(order))
	for i, o := range order {
		outShape[i] = a.shape[o]
	}
	out := newArray(a.dev, outShape)

	// Row-major strides of the input, gathered in output axis order.
	inSt := rowMajorStrides(a.shape)
	gather := make([]int, len(order))
	for i, o := range order {
		gather[i] = inSt[o]
	}

	a.dev.do(func() {
		n := len(out.data)
		for i := 0; i < n; i++ {
			rem := i
			src := 0
			for d := len(outShape) - 1; d >= 0; d-- {
				src += (rem % outShape[d]) * gather[d]
				rem /= outShape[d]
			}
			out.data[i] = a.data[src]
		}
	})
	return out
}

// T transposes a 2-D array.
func (a *Array) T() *Array {
	if len(a.shape) != 2 {
		panic(fmt.Errorf("eager: T: %w: shape %v is not 2-D", vsbench.ErrShape, a.shape))
	}
	return a.Permute(1, 0)
}

// Contiguous is a no-op: eager arrays are always dense row-major.
func (a *Array) Contiguous() *Array {
	return a
}

// MatMul multiplies two 2-D arrays through blas32.
func (a *Array) MatMul(b *Array) *Array {
	a.sameDevice(b)
	if len(a.shape) != 2 || len(b.shape) != 2 || a.shape[1] != b.shape[0] {
		panic(fmt.Errorf("eager: MatMul: %w: %v x %v", vsbench.ErrShape, a.shape, b.shape))
	}
	m, k, n := a.shape[0], a.shape[1], b.shape[1]
	out := newArray(a.dev, []int{m, n})
	a.dev.do(func() {
		ga := blas32.General{Rows: m, Cols: k, Stride: k, Data: a.data}
		gb := blas32.General{Rows: k, Cols: n, Stride: n, Data: b.data}
		gc := blas32.General{Rows: m, Cols: n, Stride: n, Data: out.data}
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, ga, gb, 0, gc)
	})
	return out
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
