package vsbench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunRecord is the persisted form of one comparison report.
type RunRecord struct {
	Name        string    `json:"name"`
	Status      string    `json:"status"` // "pass" or "fail"
	RefMs       float64   `json:"ref_ms"`
	CandMs      float64   `json:"cand_ms"`
	Ratio       float64   `json:"ratio"`
	Operations  uint64    `json:"operations,omitempty"`
	MemElements uint64    `json:"mem_elements,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// RunLog appends comparison reports to a per-session JSON file. It is
// optional; a nil RunLog on the harness disables logging.
type RunLog struct {
	mu          sync.Mutex
	records     []RunRecord
	sessionFile string
}

// NewRunLog creates the log directory if needed and starts a session file
// named after the session and the current time.
func NewRunLog(logDir, session string) (*RunLog, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	stamp := time.Now().Format("20060102_150405")
	rl := &RunLog{
		sessionFile: filepath.Join(logDir, fmt.Sprintf("%s_%s.json", session, stamp)),
	}
	return rl, rl.flush()
}

// Record appends one report and flushes to disk immediately so a crashed
// run still leaves a usable log.
func (rl *RunLog) Record(r Report) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	status := "pass"
	if !r.Passed {
		status = "fail"
	}
	rl.records = append(rl.records, RunRecord{
		Name:        r.Name,
		Status:      status,
		RefMs:       r.RefMs,
		CandMs:      r.CandMs,
		Ratio:       r.Ratio(),
		Operations:  r.Ops,
		MemElements: r.Mem,
		Timestamp:   time.Now(),
	})
	rl.flush()
}

// File returns the session file path.
func (rl *RunLog) File() string {
	return rl.sessionFile
}

func (rl *RunLog) flush() error {
	data, err := json.MarshalIndent(rl.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	return os.WriteFile(rl.sessionFile, data, 0644)
}

// ReadRunLog loads the records of a previous session file.
func ReadRunLog(path string) ([]RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []RunRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
