package eager

import (
	"math"
	"math/rand"
	"testing"
)

func TestConv2DKnownValues(t *testing.T) {
	dev := Host()

	// 1x1x3x3 input, single 2x2 averaging-like kernel.
	in := FromSlice(dev, []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, 1, 1, 3, 3)
	w := FromSlice(dev, []float32{1, 0, 0, 1}, 1, 1, 2, 2)

	out := hostData(t, in.Conv2D(w, 1, 0))
	want := []float32{1 + 5, 2 + 6, 4 + 8, 5 + 9}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("element %d: got %v, want %v", i, out[i], want[i])
		}
	}
}

func TestConv2DStrideAndPad(t *testing.T) {
	dev := Host()
	in := FromSlice(dev, []float32{
		1, 2,
		3, 4,
	}, 1, 1, 2, 2)
	w := FromSlice(dev, []float32{1}, 1, 1, 1, 1)

	t.Run("Stride2", func(t *testing.T) {
		out := in.Conv2D(w, 2, 0)
		if sh := out.Shape(); sh[2] != 1 || sh[3] != 1 {
			t.Fatalf("shape %v", sh)
		}
		if got := hostData(t, out); got[0] != 1 {
			t.Errorf("got %v, want 1", got[0])
		}
	})

	t.Run("Pad1", func(t *testing.T) {
		out := in.Conv2D(w, 1, 1)
		sh := out.Shape()
		if sh[2] != 4 || sh[3] != 4 {
			t.Fatalf("shape %v", sh)
		}
		got := hostData(t, out)
		// Padded border contributes zeros with a 1x1 identity kernel.
		if got[0] != 0 || got[5] != 1 || got[10] != 4 {
			t.Errorf("padded output %v", got)
		}
	})
}

func TestConv2DMultiChannel(t *testing.T) {
	dev := Host()
	rng := rand.New(rand.NewSource(9))
	const bs, ci, co, ih, iw, k = 2, 3, 4, 5, 5, 3
	id := randSlice(rng, bs*ci*ih*iw)
	wd := randSlice(rng, co*ci*k*k)
	in := FromSlice(dev, id, bs, ci, ih, iw)
	w := FromSlice(dev, wd, co, ci, k, k)

	const oh, ow = ih - k + 1, iw - k + 1
	got := hostData(t, in.Conv2D(w, 1, 0))
	for b := 0; b < bs; b++ {
		for oc := 0; oc < co; oc++ {
			for oy := 0; oy < oh; oy++ {
				for ox := 0; ox < ow; ox++ {
					var acc float64
					for ic := 0; ic < ci; ic++ {
						for ky := 0; ky < k; ky++ {
							for kx := 0; kx < k; kx++ {
								acc += float64(id[((b*ci+ic)*ih+oy+ky)*iw+ox+kx]) *
									float64(wd[((oc*ci+ic)*k+ky)*k+kx])
							}
						}
					}
					v := got[((b*co+oc)*oh+oy)*ow+ox]
					if math.Abs(float64(v)-acc) > 1e-5 {
						t.Fatalf("out[%d][%d][%d][%d] = %v, want %v", b, oc, oy, ox, v, acc)
					}
				}
			}
		}
	}
}
