// Package vsbench comparative reporting of reference versus candidate runs
package vsbench

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Report is the derived record of one comparison. It exists for the duration
// of formatting and logging only.
type Report struct {
	Name   string
	RefMs  float64
	CandMs float64
	Ops    uint64
	Mem    uint64 // float32 elements
	Passed bool
}

// Ratio returns candidate latency over reference latency.
func (r Report) Ratio() float64 {
	return r.CandMs / r.RefMs
}

// Harness drives comparisons between a reference and a candidate backend.
// The zero value is not usable; construct with New.
type Harness struct {
	Trials   int
	Atol     float64
	Rtol     float64
	Counters Counters  // candidate engine's work counters
	Out      io.Writer // report destination, default os.Stdout
	Log      *RunLog   // optional JSON session log

	first bool // next line starts a scenario group
}

// New returns a Harness reading work counters from the given device, when it
// provides them, with default trial count and tolerances.
func New(candidate Device) *Harness {
	var ctrs Counters = NopCounters{}
	if c, ok := candidate.(Counters); ok {
		ctrs = c
	}
	return &Harness{
		Trials:   DefaultTrials,
		Atol:     DefaultAtol,
		Rtol:     DefaultRtol,
		Counters: ctrs,
		Out:      os.Stdout,
	}
}

// Group marks the start of a scenario group. The first report line after
// Group carries a one-space prefix as a visual grouping cue; subsequent
// lines in the group do not.
func (h *Harness) Group() {
	h.first = true
}

// Compare measures the reference and candidate computations, prints one
// formatted comparison line, and verifies the candidate output against the
// reference within the harness tolerances. The candidate is measured with
// the harness counters so the reported throughput reflects its work; the
// reference run is not counted.
func (h *Harness) Compare(name string, ref, cand BuildFunc) error {
	return h.CompareTol(name, ref, cand, h.Atol, h.Rtol)
}

// CompareTol is Compare with per-scenario tolerance overrides.
func (h *Harness) CompareTol(name string, ref, cand BuildFunc, atol, rtol float64) error {
	refRes, refDev, err := h.measure(ref, NopCounters{})
	if err != nil {
		return err
	}
	candRes, candDev, err := h.measure(cand, h.Counters)
	if err != nil {
		return err
	}

	verr := AllClose(name, candRes.Out, refRes.Out, refRes.Shape, atol, rtol)

	rep := Report{
		Name:   name,
		RefMs:  refRes.MinMs,
		CandMs: candRes.MinMs,
		Ops:    candRes.Ops,
		Mem:    candRes.Mem,
		Passed: verr == nil,
	}
	h.print(rep, refDev, candDev)
	if h.Log != nil {
		h.Log.Record(rep)
	}
	return verr
}

func (h *Harness) measure(build BuildFunc, ctrs Counters) (*Result, string, error) {
	var devName string
	// Capture the device name from the first built handle.
	wrapped := func() (Handle, error) {
		hd, err := build()
		if err == nil && devName == "" {
			devName = hd.Device().Name()
		}
		return hd, err
	}
	res, err := Measure(wrapped, h.Trials, ctrs)
	return res, devName, err
}

func (h *Harness) print(r Report, refDev, candDev string) {
	// Counters are raw op units and float32 elements; scaled to millions of
	// ops and megabytes. Per-millisecond throughput then reads as GFLOPS
	// and GB/s.
	flops := float64(r.Ops) * 1e-6
	mem := float64(r.Mem) * 4 * 1e-6

	prefix := ""
	if h.first {
		prefix = " "
		h.first = false
	}
	fmt.Fprintf(h.Out, "%s%-40s %7.2f ms (%7.2f GFLOPS %7.2f GB/s) in %s, %7.2f ms (%7.2f GFLOPS %7.2f GB/s) in %s, %s slower %7.2f MOPS %7.2f MB\n",
		prefix, r.Name,
		r.RefMs, flops/r.RefMs, mem/r.RefMs, refDev,
		r.CandMs, flops/r.CandMs, mem/r.CandMs, candDev,
		colorizeRatio(r.Ratio()), flops, mem)
}

// colorizeRatio formats the speed ratio color-coded by classification:
// green below 0.75, red above 1.5, yellow in between (boundaries are
// yellow). Color is dropped automatically when the output is not a
// terminal.
func colorizeRatio(x float64) string {
	s := fmt.Sprintf("%7.2fx", x)
	return color.New(ratioAttr(x)).Sprint(s)
}

func ratioAttr(x float64) color.Attribute {
	switch {
	case x < 0.75:
		return color.FgGreen
	case x > 1.5:
		return color.FgRed
	default:
		return color.FgYellow
	}
}
