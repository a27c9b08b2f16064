package vsbench

import (
	"strings"
	"testing"
)

func TestRunLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rl, err := NewRunLog(dir, "unit")
	if err != nil {
		t.Fatalf("NewRunLog: %v", err)
	}
	if !strings.Contains(rl.File(), "unit_") {
		t.Errorf("session file %q not named after session", rl.File())
	}

	rl.Record(Report{
		Name:   "gemm 512",
		RefMs:  2.0,
		CandMs: 3.0,
		Ops:    100,
		Mem:    50,
		Passed: true,
	})
	rl.Record(Report{
		Name:   "sum 4096",
		RefMs:  1.0,
		CandMs: 4.0,
		Passed: false,
	})

	records, err := ReadRunLog(rl.File())
	if err != nil {
		t.Fatalf("ReadRunLog: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Name != "gemm 512" || first.Status != "pass" {
		t.Errorf("first record = %+v", first)
	}
	if first.Ratio != 1.5 {
		t.Errorf("Ratio = %v, want 1.5", first.Ratio)
	}
	if first.Operations != 100 || first.MemElements != 50 {
		t.Errorf("counters = (%d, %d), want (100, 50)", first.Operations, first.MemElements)
	}
	if records[1].Status != "fail" {
		t.Errorf("second status = %q, want fail", records[1].Status)
	}
}

func TestRunLogFlushPerRecord(t *testing.T) {
	rl, err := NewRunLog(t.TempDir(), "flush")
	if err != nil {
		t.Fatalf("NewRunLog: %v", err)
	}

	// The file exists and parses even before any record is written.
	records, err := ReadRunLog(rl.File())
	if err != nil {
		t.Fatalf("ReadRunLog on empty session: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}

	rl.Record(Report{Name: "relu 4096", Passed: true})
	records, err = ReadRunLog(rl.File())
	if err != nil {
		t.Fatalf("ReadRunLog: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}
