// Package status emits machine-readable run status for external observers.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Run states.
const (
	StatePending   = "pending"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateError     = "error"
)

// secondsPerEntity is the fixed duration estimate used for the remaining-time
// figure.
const secondsPerEntity = 20

// Snapshot is the single status record, fully overwritten on every report.
type Snapshot struct {
	Status                    string  `json:"status"`
	CurrentCompetitor         string  `json:"current_competitor,omitempty"`
	Processed                 int     `json:"processed"`
	Total                     int     `json:"total"`
	PercentComplete           int     `json:"percent_complete"`
	EstimatedSecondsRemaining int     `json:"estimated_seconds_remaining"`
	StartedAt                 *string `json:"started_at"`
	CompletedAt               *string `json:"completed_at"`
	Error                     string  `json:"error,omitempty"`
}

// Reporter writes the status document to a well-known path with an
// atomic-replace discipline so readers never observe a partial document.
type Reporter struct {
	path string

	mu            sync.Mutex
	lastProcessed int
}

// NewReporter creates a reporter writing to path.
func NewReporter(path string) *Reporter {
	return &Reporter{path: path}
}

// Report overwrites the status record. Processed counts are clamped to be
// monotonically non-decreasing within a run; a new running report with
// processed=0 resets the run.
func (r *Reporter) Report(state, currentCompetitor string, processed, total int, runErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state == StateRunning && processed == 0 && currentCompetitor == "" {
		r.lastProcessed = 0
	}
	if processed < r.lastProcessed {
		processed = r.lastProcessed
	}
	r.lastProcessed = processed

	snap := Snapshot{
		Status:            state,
		CurrentCompetitor: currentCompetitor,
		Processed:         processed,
		Total:             total,
	}
	if total > 0 {
		snap.PercentComplete = processed * 100 / total
	}
	snap.EstimatedSecondsRemaining = (total - processed) * secondsPerEntity
	if snap.EstimatedSecondsRemaining < 0 {
		snap.EstimatedSecondsRemaining = 0
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if state == StateRunning && processed == 0 {
		snap.StartedAt = &now
	}
	if state == StateCompleted {
		snap.CompletedAt = &now
	}
	if runErr != nil {
		snap.Error = runErr.Error()
	}

	return r.write(snap)
}

// Read returns the last written snapshot. Used by tests and the serve loop.
func (r *Reporter) Read() (*Snapshot, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode status file: %w", err)
	}
	return &snap, nil
}

func (r *Reporter) write(snap Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create status dir: %w", err)
	}

	// Write to a temp file in the same directory, then rename over the
	// target so readers see either the old or the new full document.
	tmp, err := os.CreateTemp(dir, ".refresh_status-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp status file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp status file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace status file: %w", err)
	}
	return nil
}
