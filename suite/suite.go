// Package suite composes the concrete benchmark scenarios: it constructs
// matching input tensors for the reference and candidate backends and hands
// the paired closures to the harness.
package suite

import (
	"fmt"
	"math/rand"

	"github.com/LynnColeArt/vsbench"
	"github.com/LynnColeArt/vsbench/eager"
	"github.com/LynnColeArt/vsbench/tensor"
)

// Devices bundles the two backends of a run.
type Devices struct {
	Ref  *eager.Device
	Cand *tensor.Device
}

// Open selects the backends from configuration. The candidate is always the
// stream tensor engine. The reference runs on the host device unless
// cfg.Accel asks for the accel device; a missing accel backend degrades to
// host rather than failing.
func Open(cfg vsbench.Config) (*Devices, error) {
	d := &Devices{
		Ref:  eager.Host(),
		Cand: tensor.New(),
	}
	if cfg.Accel {
		dev, err := vsbench.Open("accel")
		switch {
		case err == nil:
			d.Ref = dev.(*eager.Device)
		case vsbench.IsMissingBackend(err):
			// Accel backend unavailable; host execution is the fallback.
		default:
			return nil, err
		}
	}
	return d, nil
}

// seed for all deterministic input generation. Running a scenario twice
// produces bit-identical inputs.
const seed = 0

func randValues(rng *rand.Rand, n int, scale float32) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = (rng.Float32() - 0.5) * 2 * scale
	}
	return v
}

// Generic runs a named scenario from two already-bound closures.
func Generic(h *vsbench.Harness, name string, ref, cand vsbench.BuildFunc) error {
	return h.Compare(name, ref, cand)
}

// Square runs a named scenario over one deterministically seeded N×N matrix
// pair. Identical copies of the host data are materialized into both
// backends, so any numerical difference reflects backend computation alone.
func Square(h *vsbench.Harness, d *Devices, name string, n int,
	ref func(a, b *eager.Array) *eager.Array,
	cand func(a, b *tensor.Tensor) *tensor.Tensor) error {

	rng := rand.New(rand.NewSource(seed))
	ad := randValues(rng, n*n, 0.5)
	bd := randValues(rng, n*n, 0.5)

	ea := eager.FromSlice(d.Ref, ad, n, n)
	eb := eager.FromSlice(d.Ref, bd, n, n)
	ta := tensor.FromSlice(d.Cand, ad, n, n)
	tb := tensor.FromSlice(d.Cand, bd, n, n)

	label := fmt.Sprintf("%-30s %4dx%4d", name, n, n)
	return Generic(h, label,
		func() (vsbench.Handle, error) { return ref(ea, eb), nil },
		func() (vsbench.Handle, error) { return cand(ta, tb), nil })
}
