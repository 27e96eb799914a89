package monitor

import (
	"encoding/json"
	"fmt"
	"os"
)

// StatusWriter persists the latest status report to a JSON file for
// external UIs to poll. It also implements Observer, refreshing the file on
// every cycle.
type StatusWriter struct {
	NoopObserver
	path string
}

var _ Observer = (*StatusWriter)(nil)

// NewStatusWriter creates a StatusWriter that writes to the given path.
func NewStatusWriter(path string) *StatusWriter {
	return &StatusWriter{path: path}
}

// Write updates the status file with the given report.
func (w *StatusWriter) Write(report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}

	// Write atomically: write to temp file, then rename.
	tmpPath := w.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Clear removes the status file.
func (w *StatusWriter) Clear() error {
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove status file: %w", err)
	}
	return nil
}

// OnCycle refreshes the status file. Best effort; a failed write never
// disturbs the monitoring loop.
func (w *StatusWriter) OnCycle(status BuildStatus) {
	_ = w.Write(status.Report())
}

// OnDone writes the final report so pollers observe the terminal state.
func (w *StatusWriter) OnDone(result *Result) {
	_ = w.Write(result.Status.Report())
}
