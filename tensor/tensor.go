package tensor

import (
	"fmt"
	"math"

	"github.com/LynnColeArt/vsbench"
)

// Tensor is a deferred computation result. It is in one of three states:
//
//   - stored: buf is set (a source or the output of a kernel, possibly not
//     yet filled because the kernel is still queued); shape, strides and
//     offset describe a view over it
//   - fused: eval is set; the tensor is a per-element closure over its
//     sources and owns no storage until a kernel consumes or materializes it
//   - view: buf shared with a parent tensor under different strides
//
// Building tensors performs no computation. Realize schedules the kernel
// graph onto the device stream exactly once; Host drains the stream and
// copies the result out row-major.
type Tensor struct {
	dev   *Device
	shape []int
	st    []int
	off   int
	buf   *buffer

	eval     func(i int) float32
	srcs     []*Tensor
	run      func()
	sched    bool
	chainOps uint64 // per-element fused operations
	chainMem uint64 // per-element reads from stored buffers
}

type buffer struct {
	data []float32
}

// FromSlice copies data into a new stored tensor on dev.
func FromSlice(dev *Device, data []float32, shape ...int) *Tensor {
	if numel(shape) != len(data) {
		panic(fmt.Errorf("tensor: FromSlice: %w: %d elements for shape %v", vsbench.ErrShape, len(data), shape))
	}
	return &Tensor{
		dev:   dev,
		shape: cloneInts(shape),
		st:    rowMajorStrides(shape),
		buf:   &buffer{data: append([]float32(nil), data...)},
		sched: true,
	}
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() []int {
	return cloneInts(t.shape)
}

// Device returns the tensor's device.
func (t *Tensor) Device() vsbench.Device {
	return t.dev
}

// at reads the element at flat row-major index i. For fused tensors this
// runs the per-element closure; for stored tensors it resolves the strided
// offset. Called only from kernels executing on the stream, after every
// producing kernel has run.
func (t *Tensor) at(i int) float32 {
	if t.eval != nil {
		return t.eval(i)
	}
	off := t.off
	for d := len(t.shape) - 1; d >= 0; d-- {
		off += (i % t.shape[d]) * t.st[d]
		i /= t.shape[d]
	}
	return t.buf.data[off]
}

// perElem returns the per-element cost of pulling one value out of t:
// fused operations and stored-buffer reads.
func (t *Tensor) perElem() (ops, mem uint64) {
	if t.eval != nil {
		return t.chainOps, t.chainMem
	}
	return 0, 1
}

// schedule enqueues the tensor's kernel graph depth-first onto the stream.
// Idempotent; a tensor is scheduled at most once.
func (t *Tensor) schedule() {
	if t.sched {
		return
	}
	t.sched = true
	for _, s := range t.srcs {
		s.schedule()
	}
	if t.run != nil {
		t.dev.stream.Submit(t.run)
	}
}

// Realize forces the tensor: a fused tensor gains a materialization kernel,
// and the whole graph is scheduled onto the stream. It does not wait for
// execution; use Host or the device barrier for that.
func (t *Tensor) Realize() *Tensor {
	t.ensureKernel()
	t.schedule()
	return t
}

// Force implements the harness handle contract.
func (t *Tensor) Force() error {
	t.Realize()
	return nil
}

// Host schedules the tensor, drains the device stream and returns the
// result as a dense row-major slice.
func (t *Tensor) Host() ([]float32, error) {
	t.Realize()
	if err := t.dev.Drain(); err != nil {
		return nil, err
	}
	n := numel(t.shape)
	out := make([]float32, n)
	if t.off == 0 && isContiguous(t.shape, t.st) {
		copy(out, t.buf.data[:n])
		return out, nil
	}
	for i := range out {
		out[i] = t.at(i)
	}
	return out, nil
}

// ensureKernel converts a fused tensor into a stored tensor whose kernel
// materializes the closure. Stored tensors and views are left untouched.
func (t *Tensor) ensureKernel() {
	if t.eval == nil {
		return
	}
	ev := t.eval
	n := numel(t.shape)
	ops, mem := t.chainOps, t.chainMem
	buf := &buffer{}
	dev := t.dev

	t.eval = nil
	t.buf = buf
	t.st = rowMajorStrides(t.shape)
	t.off = 0
	t.chainOps, t.chainMem = 0, 0
	t.run = func() {
		data := make([]float32, n)
		for i := range data {
			data[i] = ev(i)
		}
		buf.data = data
		dev.count(uint64(n)*ops, uint64(n)*mem+uint64(n))
	}
}

func (t *Tensor) sameDevice(u *Tensor) {
	if t.dev != u.dev {
		panic(fmt.Errorf("tensor: %w: tensors on different devices", vsbench.ErrDevice))
	}
}

// Elementwise operations: deferred, fused into per-element closures. No
// kernel exists until a consumer reduces, materializes or forces the chain.

func (t *Tensor) binary(op string, u *Tensor, f func(x, y float32) float32) *Tensor {
	t.sameDevice(u)
	if !shapeEq(t.shape, u.shape) {
		panic(fmt.Errorf("tensor: %s: %w: %v vs %v", op, vsbench.ErrShape, t.shape, u.shape))
	}
	to, tm := t.perElem()
	uo, um := u.perElem()
	return &Tensor{
		dev:      t.dev,
		shape:    cloneInts(t.shape),
		eval:     func(i int) float32 { return f(t.at(i), u.at(i)) },
		srcs:     []*Tensor{t, u},
		chainOps: to + uo + 1,
		chainMem: tm + um,
	}
}

func (t *Tensor) unary(f func(x float32) float32) *Tensor {
	to, tm := t.perElem()
	return &Tensor{
		dev:      t.dev,
		shape:    cloneInts(t.shape),
		eval:     func(i int) float32 { return f(t.at(i)) },
		srcs:     []*Tensor{t},
		chainOps: to + 1,
		chainMem: tm,
	}
}

// Add returns t + u elementwise.
func (t *Tensor) Add(u *Tensor) *Tensor {
	return t.binary("Add", u, func(x, y float32) float32 { return x + y })
}

// Sub returns t - u elementwise.
func (t *Tensor) Sub(u *Tensor) *Tensor {
	return t.binary("Sub", u, func(x, y float32) float32 { return x - y })
}

// Mul returns t * u elementwise.
func (t *Tensor) Mul(u *Tensor) *Tensor {
	return t.binary("Mul", u, func(x, y float32) float32 { return x * y })
}

// Neg returns -t elementwise.
func (t *Tensor) Neg() *Tensor {
	return t.unary(func(x float32) float32 { return -x })
}

// Exp returns e**t elementwise.
func (t *Tensor) Exp() *Tensor {
	return t.unary(func(x float32) float32 { return float32(math.Exp(float64(x))) })
}

// Relu returns max(t, 0) elementwise.
func (t *Tensor) Relu() *Tensor {
	return t.unary(func(x float32) float32 {
		if x < 0 {
			return 0
		}
		return x
	})
}

// Movement operations: zero-copy strided views over stored tensors. A fused
// input is materialized first, since a closure has no memory layout to view.

func (t *Tensor) view(shape, st []int, off int) *Tensor {
	return &Tensor{
		dev:   t.dev,
		shape: shape,
		st:    st,
		off:   off,
		buf:   t.buf,
		srcs:  []*Tensor{t},
	}
}

// Reshape reinterprets the tensor under a new shape of equal element count.
// Stride-compatible reshapes are views; others materialize first.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	if numel(dims) != numel(t.shape) {
		panic(fmt.Errorf("tensor: Reshape: %w: %v to %v", vsbench.ErrShape, t.shape, dims))
	}
	if t.eval != nil {
		t.ensureKernel()
	}
	if st, ok := reshapeStrides(t.shape, t.st, dims); ok {
		return t.view(cloneInts(dims), st, t.off)
	}
	return t.Contiguous().Reshape(dims...)
}

// Permute reorders axes as a view.
func (t *Tensor) Permute(order ...int) *Tensor {
	if len(order) != len(t.shape) {
		panic(fmt.Errorf("tensor: Permute: %w: order %v for shape %v", vsbench.ErrShape, order, t.shape))
	}
	if t.eval != nil {
		t.ensureKernel()
	}
	shape := make([]int, len(order))
	st := make([]int, len(order))
	seen := make([]bool, len(order))
	for i, o := range order {
		if o < 0 || o >= len(t.shape) || seen[o] {
			panic(fmt.Errorf("tensor: Permute: %w: invalid order %v", vsbench.ErrShape, order))
		}
		seen[o] = true
		shape[i] = t.shape[o]
		st[i] = t.st[o]
	}
	return t.view(shape, st, t.off)
}

// T transposes a 2-D tensor.
func (t *Tensor) T() *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Errorf("tensor: T: %w: shape %v is not 2-D", vsbench.ErrShape, t.shape))
	}
	return t.Permute(1, 0)
}

// Expand broadcasts size-1 axes to the given sizes as a stride-0 view.
func (t *Tensor) Expand(dims ...int) *Tensor {
	if len(dims) != len(t.shape) {
		panic(fmt.Errorf("tensor: Expand: %w: %v to %v", vsbench.ErrShape, t.shape, dims))
	}
	if t.eval != nil {
		t.ensureKernel()
	}
	st := make([]int, len(dims))
	for d := range dims {
		switch {
		case t.shape[d] == dims[d]:
			st[d] = t.st[d]
		case t.shape[d] == 1:
			st[d] = 0
		default:
			panic(fmt.Errorf("tensor: Expand: %w: %v to %v", vsbench.ErrShape, t.shape, dims))
		}
	}
	return t.view(cloneInts(dims), st, t.off)
}
