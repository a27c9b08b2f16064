package eager

import (
	"fmt"

	"github.com/LynnColeArt/vsbench"
)

// Conv2D performs 2D cross-correlation with no bias.
// Input shape: [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
func (a *Array) Conv2D(w *Array, stride, pad int) *Array {
	a.sameDevice(w)
	if len(a.shape) != 4 || len(w.shape) != 4 || a.shape[1] != w.shape[1] {
		panic(fmt.Errorf("eager: Conv2D: %w: input %v, weight %v", vsbench.ErrShape, a.shape, w.shape))
	}
	if stride <= 0 || pad < 0 {
		panic(fmt.Errorf("eager: Conv2D: %w: stride %d, pad %d", vsbench.ErrShape, stride, pad))
	}

	bs, ci, ih, iw := a.shape[0], a.shape[1], a.shape[2], a.shape[3]
	co, kh, kw := w.shape[0], w.shape[2], w.shape[3]
	oh := (ih+2*pad-kh)/stride + 1
	ow := (iw+2*pad-kw)/stride + 1
	if oh <= 0 || ow <= 0 {
		panic(fmt.Errorf("eager: Conv2D: %w: empty output for input %v, weight %v", vsbench.ErrShape, a.shape, w.shape))
	}

	out := newArray(a.dev, []int{bs, co, oh, ow})
	a.dev.do(func() {
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
									in := a.data[((b*ci+ic)*ih+iy)*iw+ix]
									wt := w.data[((oc*ci+ic)*kh+ky)*kw+kx]
									acc += float64(in) * float64(wt)
								}
							}
						}
						out.data[((b*co+oc)*oh+oy)*ow+ox] = float32(acc)
					}
				}
			}
		}
	})
	return out
}
