package monitor

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// LogObserver writes human-readable delta lines to an io.Writer as the
// monitor loop progresses, and a summary when it finishes.
type LogObserver struct {
	NoopObserver
	out    io.Writer
	styles Styles
}

var _ Observer = (*LogObserver)(nil)

// NewLogObserver creates a LogObserver writing to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{out: w, styles: DefaultStyles()}
}

// OnProgress prints a progress line for each new progress value.
func (o *LogObserver) OnProgress(progress int, activity string) {
	writef(o.out, "%s %s\n",
		o.styles.Progress.Render(progressLabel(progress)), activity)
}

// OnTargetBuilt prints a completion line for a newly built target.
func (o *LogObserver) OnTargetBuilt(name string) {
	writef(o.out, "%s\n", o.styles.Success.Render(
		IconSuccess+" "+strings.ToUpper(name)+" package built"))
}

// OnCriticalError prints newly recorded critical errors immediately.
func (o *LogObserver) OnCriticalError(sig Signal) {
	writef(o.out, "%s %s\n", o.styles.Error.Render(IconFailed+" critical:"), sig.Message)
}

// OnDone prints the end-of-session summary.
func (o *LogObserver) OnDone(result *Result) {
	st := result.Status
	writef(o.out, "\n")
	switch {
	case result.Interrupted:
		writef(o.out, "%s\n", o.styles.Warning.Render(
			"monitoring interrupted after "+formatDuration(result.Duration)))
	case st.Phase == PhaseCompleted:
		writef(o.out, "%s\n", o.styles.Success.Render(
			IconSuccess+" build completed in "+formatDuration(result.Duration)))
		if len(st.BuiltTargets) > 0 {
			writef(o.out, "  packages built: %s\n", strings.Join(st.BuiltTargets, ", "))
		}
	case st.Phase == PhaseFailed:
		writef(o.out, "%s\n", o.styles.Error.Render(
			IconFailed+" build failed after "+formatDuration(result.Duration)))
		writef(o.out, "  %d error(s) found\n", len(st.Errors))
	case st.Phase == PhaseTimedOut:
		writef(o.out, "%s\n", o.styles.Warning.Render(
			IconTimeout+" monitoring timed out after "+formatDuration(result.Duration)))
	}
	if len(st.Warnings) > 0 {
		writef(o.out, "  %d warning(s)\n", len(st.Warnings))
	}
}

// progressLabel renders "[ 42%]" with the same fixed width the build tools
// themselves use.
func progressLabel(progress int) string {
	return fmt.Sprintf("[%3d%%]", progress)
}

// formatDuration formats a duration in a human-readable way (e.g. "2m34s",
// "1h12m").
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
