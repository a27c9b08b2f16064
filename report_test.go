package vsbench

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestRatioClassification(t *testing.T) {
	tests := []struct {
		ratio float64
		want  color.Attribute
	}{
		{0.10, color.FgGreen},
		{0.74, color.FgGreen},
		{0.75, color.FgYellow}, // boundary is yellow
		{1.00, color.FgYellow},
		{1.50, color.FgYellow}, // boundary is yellow
		{1.51, color.FgRed},
		{9.99, color.FgRed},
	}
	for _, tc := range tests {
		if got := ratioAttr(tc.ratio); got != tc.want {
			t.Errorf("ratioAttr(%v) = %v, want %v", tc.ratio, got, tc.want)
		}
	}
}

// compareHarness builds a harness over fake backends whose outputs and
// counters are fixed, capturing report lines in a buffer.
func compareHarness(buf *bytes.Buffer, candOut []float32) (*Harness, BuildFunc, BuildFunc) {
	refDev := &fakeDevice{name: "refdev"}
	candDev := &fakeDevice{name: "canddev"}
	ref := func() (Handle, error) {
		return &fakeHandle{dev: refDev, out: []float32{1, 2}, shape: []int{2}}, nil
	}
	cand := func() (Handle, error) {
		return &fakeHandle{dev: candDev, out: candOut, shape: []int{2}}, nil
	}
	h := &Harness{
		Trials:   2,
		Atol:     DefaultAtol,
		Rtol:     DefaultRtol,
		Counters: &scriptCounters{script: [][2]uint64{{1000, 500}, {1000, 500}}},
		Out:      buf,
	}
	return h, ref, cand
}

func TestCompareFormatsOneLine(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var buf bytes.Buffer
	h, ref, cand := compareHarness(&buf, []float32{1, 2})
	if err := h.Compare("scenario_a", ref, cand); err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	line := buf.String()
	for _, want := range []string{"scenario_a", "ms", "GFLOPS", "GB/s", "refdev", "canddev", "MOPS", "MB", "x slower"} {
		if !strings.Contains(line, want) {
			t.Errorf("report line missing %q: %s", want, line)
		}
	}
	if strings.Count(line, "\n") != 1 {
		t.Errorf("expected exactly one line, got: %q", line)
	}
}

func TestCompareGroupPrefix(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var buf bytes.Buffer
	h, ref, cand := compareHarness(&buf, []float32{1, 2})
	h.Counters = NopCounters{}

	h.Group()
	if err := h.Compare("first", ref, cand); err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if err := h.Compare("second", ref, cand); err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	lines := strings.SplitN(buf.String(), "\n", 3)
	if !strings.HasPrefix(lines[0], " first") {
		t.Errorf("first line of group should carry a one-space prefix: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "second") {
		t.Errorf("later lines of group should carry no prefix: %q", lines[1])
	}
}

func TestCompareVerifiesOutputs(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var buf bytes.Buffer
	h, ref, cand := compareHarness(&buf, []float32{1, 3}) // second element off by 1
	err := h.Compare("mismatch", ref, cand)
	if err == nil {
		t.Fatal("expected Mismatch, got nil")
	}
	if !IsMismatch(err) {
		t.Errorf("error %v is not a Mismatch", err)
	}
	// The line is still printed before verification fails.
	if !strings.Contains(buf.String(), "mismatch") {
		t.Error("report line not printed on verification failure")
	}
}

func TestReportRatio(t *testing.T) {
	r := Report{RefMs: 2, CandMs: 3}
	if got := r.Ratio(); got != 1.5 {
		t.Errorf("Ratio() = %v, want 1.5", got)
	}
}
