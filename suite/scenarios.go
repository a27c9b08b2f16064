package suite

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/LynnColeArt/vsbench"
	"github.com/LynnColeArt/vsbench/eager"
	"github.com/LynnColeArt/vsbench/tensor"
)

// The scenario set. Each function is one scenario group: it begins a report
// group and runs its comparisons, returning the first verification error.

// Sum reduces a 4096x4096 matrix to a scalar.
func Sum(h *vsbench.Harness, d *Devices) error {
	h.Group()
	return Square(h, d, "sum", 4096,
		func(a, b *eager.Array) *eager.Array { return a.Sum() },
		func(a, b *tensor.Tensor) *tensor.Tensor { return a.Sum() })
}

// ArrayPacking rearranges a matrix into 32-wide column panels.
func ArrayPacking(h *vsbench.Harness, d *Devices) error {
	h.Group()
	const n = 2048
	return Square(h, d, "array_packing", n,
		func(a, b *eager.Array) *eager.Array {
			return a.Reshape(n, n/32, 32).Permute(1, 0, 2).Contiguous()
		},
		func(a, b *tensor.Tensor) *tensor.Tensor {
			return a.Reshape(n, n/32, 32).Permute(1, 0, 2).Contiguous()
		})
}

// Permute transposes matrices large enough to spill every cache level.
func Permute(h *vsbench.Harness, d *Devices) error {
	h.Group()
	for _, n := range []int{1024, 4096} {
		err := Square(h, d, "permute", n,
			func(a, b *eager.Array) *eager.Array { return a.Permute(1, 0).Contiguous() },
			func(a, b *tensor.Tensor) *tensor.Tensor { return a.Permute(1, 0).Contiguous() })
		if err != nil {
			return err
		}
	}
	return nil
}

// Neg negates a 4096x4096 matrix.
func Neg(h *vsbench.Harness, d *Devices) error {
	h.Group()
	return Square(h, d, "neg", 4096,
		func(a, b *eager.Array) *eager.Array { return a.Neg() },
		func(a, b *tensor.Tensor) *tensor.Tensor { return a.Neg() })
}

// Exp exponentiates a 2048x2048 matrix.
func Exp(h *vsbench.Harness, d *Devices) error {
	h.Group()
	return Square(h, d, "exp", 2048,
		func(a, b *eager.Array) *eager.Array { return a.Exp() },
		func(a, b *tensor.Tensor) *tensor.Tensor { return a.Exp() })
}

// Relu rectifies a 4096x4096 matrix.
func Relu(h *vsbench.Harness, d *Devices) error {
	h.Group()
	return Square(h, d, "relu", 4096,
		func(a, b *eager.Array) *eager.Array { return a.Relu() },
		func(a, b *tensor.Tensor) *tensor.Tensor { return a.Relu() })
}

// MaxReduce takes the maximum of a 4096x4096 matrix.
func MaxReduce(h *vsbench.Harness, d *Devices) error {
	h.Group()
	return Square(h, d, "max", 4096,
		func(a, b *eager.Array) *eager.Array { return a.Max() },
		func(a, b *tensor.Tensor) *tensor.Tensor { return a.Max() })
}

// MulSum is a dot product phrased as multiply then reduce.
func MulSum(h *vsbench.Harness, d *Devices) error {
	h.Group()
	return Square(h, d, "mul_sum", 4096,
		func(a, b *eager.Array) *eager.Array { return a.Mul(b).Sum() },
		func(a, b *tensor.Tensor) *tensor.Tensor { return a.Mul(b).Sum() })
}

// Add sums two matrices at two sizes.
func Add(h *vsbench.Harness, d *Devices) error {
	h.Group()
	for _, n := range []int{1024, 4096} {
		err := Square(h, d, "add", n,
			func(a, b *eager.Array) *eager.Array { return a.Add(b) },
			func(a, b *tensor.Tensor) *tensor.Tensor { return a.Add(b) })
		if err != nil {
			return err
		}
	}
	return nil
}

// AddSq computes a*a + b*b elementwise.
func AddSq(h *vsbench.Harness, d *Devices) error {
	h.Group()
	return Square(h, d, "add_sq", 4096,
		func(a, b *eager.Array) *eager.Array { return a.Mul(a).Add(b.Mul(b)) },
		func(a, b *tensor.Tensor) *tensor.Tensor { return a.Mul(a).Add(b.Mul(b)) })
}

// Gemm multiplies two 512x512 matrices through each backend's native
// primitive.
func Gemm(h *vsbench.Harness, d *Devices) error {
	h.Group()
	return Square(h, d, "gemm", 512,
		func(a, b *eager.Array) *eager.Array { return a.MatMul(b) },
		func(a, b *tensor.Tensor) *tensor.Tensor { return a.MatMul(b) })
}

// GemmUnrolled compares the native matrix multiply against a manually
// unrolled broadcast-multiply-and-reduce formulation of the same product,
// in all four transpose arrangements. The two sides report different
// operation counts but must agree numerically.
func GemmUnrolled(h *vsbench.Harness, d *Devices) error {
	const n = 512

	unroll := func(a, b *tensor.Tensor) *tensor.Tensor {
		return a.Reshape(n, 1, n).Expand(n, n, n).
			Mul(b.Reshape(1, n, n).Expand(n, n, n)).
			SumAxis(2)
	}

	cases := []struct {
		name string
		ref  func(a, b *eager.Array) *eager.Array
		cand func(a, b *tensor.Tensor) *tensor.Tensor
	}{
		{
			name: "gemm_unrolled",
			ref:  func(a, b *eager.Array) *eager.Array { return a.MatMul(b.T()) },
			cand: func(a, b *tensor.Tensor) *tensor.Tensor { return unroll(a, b) },
		},
		{
			name: "gemm_unrolled_permute_l",
			ref:  func(a, b *eager.Array) *eager.Array { return a.T().MatMul(b.T()) },
			cand: func(a, b *tensor.Tensor) *tensor.Tensor { return unroll(a.Permute(1, 0), b) },
		},
		{
			name: "gemm_unrolled_permute_r",
			ref:  func(a, b *eager.Array) *eager.Array { return a.MatMul(b) },
			cand: func(a, b *tensor.Tensor) *tensor.Tensor { return unroll(a, b.Permute(1, 0)) },
		},
		{
			name: "gemm_unrolled_permute_lr",
			ref:  func(a, b *eager.Array) *eager.Array { return a.T().MatMul(b) },
			cand: func(a, b *tensor.Tensor) *tensor.Tensor { return unroll(a.Permute(1, 0), b.Permute(1, 0)) },
		},
	}

	for _, c := range cases {
		h.Group()
		if err := Square(h, d, c.name, n, c.ref, c.cand); err != nil {
			return err
		}
	}
	return nil
}

// Conv sweeps convolution over the configured input-channel counts:
// batch 32, 32 output channels, 3x3 kernel, 34x34 images, no bias.
func Conv(h *vsbench.Harness, d *Devices, cfg vsbench.Config) error {
	h.Group()
	const (
		bs      = 32
		oc      = 32
		k       = 3
		imgSize = 34
	)
	rng := rand.New(rand.NewSource(seed))
	for _, ci := range cfg.InChans {
		dat := randValues(rng, bs*ci*imgSize*imgSize, 0.5)
		// Weights scaled like a fan-in uniform init so outputs stay O(1).
		bound := float32(1 / math.Sqrt(float64(ci*k*k)))
		wts := randValues(rng, oc*ci*k*k, bound)

		ed := eager.FromSlice(d.Ref, dat, bs, ci, imgSize, imgSize)
		ew := eager.FromSlice(d.Ref, wts, oc, ci, k, k)
		td := tensor.FromSlice(d.Cand, dat, bs, ci, imgSize, imgSize)
		tw := tensor.FromSlice(d.Cand, wts, oc, ci, k, k)

		name := fmt.Sprintf("conv bs:%3d chans:%3d -> %3d", bs, ci, oc)
		err := Generic(h, name,
			func() (vsbench.Handle, error) { return ed.Conv2D(ew, 1, 0), nil },
			func() (vsbench.Handle, error) { return td.Conv2D(tw, 1, 0), nil })
		if err != nil {
			return err
		}
	}
	return nil
}

// Run executes every scenario group in order. Scenarios keep running after
// a verification failure so a full report is always printed; the combined
// error is returned at the end.
func Run(h *vsbench.Harness, d *Devices, cfg vsbench.Config) error {
	groups := []func() error{
		func() error { return Sum(h, d) },
		func() error { return ArrayPacking(h, d) },
		func() error { return Permute(h, d) },
		func() error { return Neg(h, d) },
		func() error { return Exp(h, d) },
		func() error { return Relu(h, d) },
		func() error { return MaxReduce(h, d) },
		func() error { return MulSum(h, d) },
		func() error { return Add(h, d) },
		func() error { return AddSq(h, d) },
		func() error { return Gemm(h, d) },
		func() error { return GemmUnrolled(h, d) },
		func() error { return Conv(h, d, cfg) },
	}
	var errs []error
	for _, g := range groups {
		if err := g(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
