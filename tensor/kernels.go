package tensor

import (
	"fmt"
	"math"

	"github.com/LynnColeArt/vsbench"
)

// Kernel-backed operations. Each returns a stored tensor whose kernel is
// enqueued on the device stream when the result is scheduled. Kernels
// report their work to the device counters as they execute.

// kernelOut allocates the stored result tensor for a kernel over srcs.
func kernelOut(dev *Device, shape []int, srcs ...*Tensor) *Tensor {
	return &Tensor{
		dev:   dev,
		shape: cloneInts(shape),
		st:    rowMajorStrides(shape),
		buf:   &buffer{},
		srcs:  srcs,
	}
}

// Contiguous materializes the tensor into a dense row-major buffer. A
// stored tensor that is already dense is returned unchanged.
func (t *Tensor) Contiguous() *Tensor {
	if t.eval == nil && t.off == 0 && isContiguous(t.shape, t.st) {
		return t
	}
	n := numel(t.shape)
	po, pm := t.perElem()
	out := kernelOut(t.dev, t.shape, t)
	src := t
	out.run = func() {
		data := make([]float32, n)
		for i := range data {
			data[i] = src.at(i)
		}
		out.buf.data = data
		// One move per element plus whatever the fused chain costs.
		out.dev.count(uint64(n)*(po+1), uint64(n)*pm+uint64(n))
	}
	return out
}

// Sum reduces all elements to a single-element tensor. Accumulation is in
// float64 so large reductions stay order-insensitive at float32 tolerance.
func (t *Tensor) Sum() *Tensor {
	n := numel(t.shape)
	po, pm := t.perElem()
	out := kernelOut(t.dev, []int{1}, t)
	src := t
	out.run = func() {
		var acc float64
		for i := 0; i < n; i++ {
			acc += float64(src.at(i))
		}
		out.buf.data = []float32{float32(acc)}
		out.dev.count(uint64(n)*(po+1), uint64(n)*pm+1)
	}
	return out
}

// Max reduces all elements to their maximum.
func (t *Tensor) Max() *Tensor {
	n := numel(t.shape)
	po, pm := t.perElem()
	out := kernelOut(t.dev, []int{1}, t)
	src := t
	out.run = func() {
		m := float32(math.Inf(-1))
		for i := 0; i < n; i++ {
			if v := src.at(i); v > m {
				m = v
			}
		}
		out.buf.data = []float32{m}
		out.dev.count(uint64(n)*(po+1), uint64(n)*pm+1)
	}
	return out
}

// SumAxis reduces along one axis, dropping it from the shape.
func (t *Tensor) SumAxis(axis int) *Tensor {
	if axis < 0 || axis >= len(t.shape) {
		panic(fmt.Errorf("tensor: SumAxis: %w: axis %d for shape %v", vsbench.ErrShape, axis, t.shape))
	}
	kept := make([]int, 0, len(t.shape)-1)
	kept = append(kept, t.shape[:axis]...)
	kept = append(kept, t.shape[axis+1:]...)
	outShape := kept
	if len(outShape) == 0 {
		outShape = []int{1}
	}

	inShape := cloneInts(t.shape)
	k := inShape[axis]
	n := numel(outShape)
	po, pm := t.perElem()
	out := kernelOut(t.dev, outShape, t)
	src := t

	// Row-major multipliers of the input flat index, split around the
	// reduced axis so the inner loop advances only that axis.
	rs := rowMajorStrides(inShape)
	axStep := rs[axis]
	outerMul := make([]int, 0, len(inShape)-1)
	for d := range inShape {
		if d != axis {
			outerMul = append(outerMul, rs[d])
		}
	}

	out.run = func() {
		data := make([]float32, n)
		for o := 0; o < n; o++ {
			base := 0
			rem := o
			for d := len(kept) - 1; d >= 0; d-- {
				base += (rem % kept[d]) * outerMul[d]
				rem /= kept[d]
			}
			var acc float64
			for j := 0; j < k; j++ {
				acc += float64(src.at(base + j*axStep))
			}
			data[o] = float32(acc)
		}
		out.buf.data = data
		total := uint64(n) * uint64(k)
		out.dev.count(total*(po+1), total*pm+uint64(n))
	}
	return out
}

// MatMul multiplies two 2-D tensors.
func (t *Tensor) MatMul(u *Tensor) *Tensor {
	t.sameDevice(u)
	if len(t.shape) != 2 || len(u.shape) != 2 || t.shape[1] != u.shape[0] {
		panic(fmt.Errorf("tensor: MatMul: %w: %v x %v", vsbench.ErrShape, t.shape, u.shape))
	}
	m, kk, n := t.shape[0], t.shape[1], u.shape[1]
	out := kernelOut(t.dev, []int{m, n}, t, u)
	a, b := t, u
	out.run = func() {
		ad := a.denseData()
		bd := b.denseData()
		acc := make([]float64, m*n)
		for i := 0; i < m; i++ {
			arow := ad[i*kk : (i+1)*kk]
			crow := acc[i*n : (i+1)*n]
			for k2 := 0; k2 < kk; k2++ {
				av := float64(arow[k2])
				brow := bd[k2*n : (k2+1)*n]
				for j := 0; j < n; j++ {
					crow[j] += av * float64(brow[j])
				}
			}
		}
		data := make([]float32, m*n)
		for i, v := range acc {
			data[i] = float32(v)
		}
		out.buf.data = data
		out.dev.count(2*uint64(m)*uint64(n)*uint64(kk),
			uint64(m*kk)+uint64(kk*n)+uint64(m*n))
	}
	return out
}

// Conv2D performs 2D cross-correlation with no bias.
// Input shape: [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
func (t *Tensor) Conv2D(w *Tensor, stride, pad int) *Tensor {
	t.sameDevice(w)
	if len(t.shape) != 4 || len(w.shape) != 4 || t.shape[1] != w.shape[1] {
		panic(fmt.Errorf("tensor: Conv2D: %w: input %v, weight %v", vsbench.ErrShape, t.shape, w.shape))
	}
	if stride <= 0 || pad < 0 {
		panic(fmt.Errorf("tensor: Conv2D: %w: stride %d, pad %d", vsbench.ErrShape, stride, pad))
	}

	bs, ci, ih, iw := t.shape[0], t.shape[1], t.shape[2], t.shape[3]
	co, kh, kw := w.shape[0], w.shape[2], w.shape[3]
	oh := (ih+2*pad-kh)/stride + 1
	ow := (iw+2*pad-kw)/stride + 1
	if oh <= 0 || ow <= 0 {
		panic(fmt.Errorf("tensor: Conv2D: %w: empty output for input %v, weight %v", vsbench.ErrShape, t.shape, w.shape))
	}

	out := kernelOut(t.dev, []int{bs, co, oh, ow}, t, w)
	in, wt := t, w
	out.run = func() {
		id := in.denseData()
		wd := wt.denseData()
		data := make([]float32, bs*co*oh*ow)
		for b := 0; b < bs; b++ {
			for oc := 0; oc < co; oc++ {
				for oy := 0; oy < oh; oy++ {
					for ox := 0; ox < ow; ox++ {
						var acc float64
						for ic := 0; ic < ci; ic++ {
							for ky := 0; ky < kh; ky++ {
								iy := oy*stride + ky - pad
								if iy < 0 || iy >= ih {
									continue
								}
								for kx := 0; kx < kw; kx++ {
									ix := ox*stride + kx - pad
									if ix < 0 || ix >= iw {
										continue
									}
									acc += float64(id[((b*ci+ic)*ih+iy)*iw+ix]) *
										float64(wd[((oc*ci+ic)*kh+ky)*kw+kx])
								}
							}
						}
						data[((b*co+oc)*oh+oy)*ow+ox] = float32(acc)
					}
				}
			}
		}
		out.buf.data = data
		out.dev.count(2*uint64(bs*co*oh*ow)*uint64(ci*kh*kw),
			uint64(bs*ci*ih*iw)+uint64(co*ci*kh*kw)+uint64(bs*co*oh*ow))
	}
	return out
}

// denseData returns the tensor's elements row-major. Contiguous stored
// tensors are returned without copying; strided views and fused chains are
// gathered. Called only from kernels on the stream.
func (t *Tensor) denseData() []float32 {
	n := numel(t.shape)
	if t.eval == nil && t.off == 0 && isContiguous(t.shape, t.st) {
		return t.buf.data[:n]
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = t.at(i)
	}
	return data
}
