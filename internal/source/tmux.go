package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// captureLines is how far back each capture-pane reaches. Deep enough that
// two polls a few minutes apart still overlap on a busy build.
const captureLines = 2000

// TmuxSource polls an existing tmux pane for build output via capture-pane.
// Successive captures overlap, so Fetch trims the portion already returned
// before handing the chunk to the caller.
type TmuxSource struct {
	target string

	mu   sync.Mutex
	prev string

	// run is a test hook; defaults to executing tmux.
	run func(ctx context.Context, args ...string) (string, error)
}

// NewTmuxSource watches the pane identified by target, in any form tmux
// accepts (pane ID like %3, or session:window.pane).
func NewTmuxSource(target string) *TmuxSource {
	return &TmuxSource{target: target, run: runTmux}
}

func runTmux(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tmux %s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}

// Fetch implements monitor.Source. It captures the pane's recent scrollback,
// returns the part not seen on the previous poll, and reports completion when
// the pane's process has exited.
func (t *TmuxSource) Fetch(ctx context.Context) (string, bool, error) {
	capture, err := t.run(ctx, "capture-pane", "-p", "-t", t.target, "-S", fmt.Sprintf("-%d", captureLines))
	if err != nil {
		return "", false, err
	}

	t.mu.Lock()
	chunk := trimOverlap(t.prev, capture)
	t.prev = capture
	t.mu.Unlock()

	dead, err := t.run(ctx, "display-message", "-p", "-t", t.target, "#{pane_dead}")
	if err != nil {
		if paneGone(err) {
			// A vanished pane means the build process is gone too.
			return chunk, true, nil
		}
		// Anything else (timeout, busy server) is a transport failure, not
		// a completion signal. The chunk is still good.
		return chunk, false, err
	}
	return chunk, strings.TrimSpace(dead) == "1", nil
}

// paneGone reports whether the error is tmux telling us the pane (or the
// whole server) no longer exists, as opposed to a transient failure.
// runTmux folds tmux's stderr into the error text.
func paneGone(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "can't find pane") ||
		strings.Contains(msg, "no server running")
}

// trimOverlap returns the suffix of cur that was not present at the end of
// prev. It finds the longest suffix of prev that is a prefix of cur and
// cuts it off, aligning on line boundaries. When no overlap exists (pane
// cleared, first poll) the whole capture is returned; downstream
// classification deduplicates, so occasional repeats are harmless.
func trimOverlap(prev, cur string) string {
	if prev == "" || cur == "" {
		return cur
	}
	prevLines := strings.Split(strings.TrimRight(prev, "\n"), "\n")
	curLines := strings.Split(strings.TrimRight(cur, "\n"), "\n")

	max := len(prevLines)
	if len(curLines) < max {
		max = len(curLines)
	}
	for n := max; n > 0; n-- {
		if linesEqual(prevLines[len(prevLines)-n:], curLines[:n]) {
			return strings.Join(curLines[n:], "\n")
		}
	}
	return cur
}

func linesEqual(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
