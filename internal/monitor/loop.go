package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single fetch from the process output source.
const DefaultFetchTimeout = 10 * time.Second

// Source provides the incrementally available output of the monitored
// process. Fetch returns the text produced since the previous call (which
// may overlap or repeat earlier content; the tracker's dedup tolerates
// this) and whether the process has fully finished. Implementations must
// honor ctx and return within a bounded time; an error must be
// distinguishable from "no new output" (which is "", false, nil).
type Source interface {
	Fetch(ctx context.Context) (text string, completed bool, err error)
}

// Config configures a monitoring session.
type Config struct {
	// Source supplies process output. Required.
	Source Source

	// Targets are the tracked target names (default: http, rest, openapi).
	Targets []string

	// MaxDuration is the monitoring deadline. Zero means
	// DefaultMaxDuration (1h).
	MaxDuration time.Duration

	// FetchTimeout bounds each Source.Fetch call. Zero means
	// DefaultFetchTimeout (10s).
	FetchTimeout time.Duration

	// SingleCheck performs exactly one cycle and returns without sleeping.
	SingleCheck bool

	// Observer receives delta notifications. Nil means no notifications.
	Observer Observer

	// Output is where human-readable session banners go. Nil discards.
	Output io.Writer

	// Milestones overrides the classifier's milestone ladder floors.
	Milestones Milestones

	// NoisePatterns are extra suppression rules appended to the defaults.
	NoisePatterns []string

	// Intervals overrides the backoff ladder. InactivityThreshold overrides
	// how many quiet checks advance it (default 2).
	Intervals           []time.Duration
	InactivityThreshold int

	// Test hooks. Nil means real implementations.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Result summarizes a finished monitoring session.
type Result struct {
	// Status is the final snapshot. Always reflects the best-known
	// cumulative state, abnormal exits included.
	Status BuildStatus

	// Interrupted is true when the session was cancelled externally before
	// reaching a terminal phase.
	Interrupted bool

	// Cycles is the number of polling cycles performed.
	Cycles int

	// Duration is the total wall-clock time of the session.
	Duration time.Duration
}

// ExitCode maps the session outcome to a process exit code: 0 for a
// completed build, 130 for external interruption, 1 otherwise.
func (r *Result) ExitCode() int {
	if r.Interrupted {
		return 130
	}
	if r.Status.Phase == PhaseCompleted {
		return 0
	}
	return 1
}

// writef writes formatted output, ignoring errors. Use for non-critical
// output where write failures are acceptable.
func writef(w io.Writer, format string, args ...interface{}) {
	if w == nil {
		return
	}
	_, _ = fmt.Fprintf(w, format, args...)
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run monitors the build to completion: each cycle fetches a chunk from the
// source, advances the state machine, reports deltas through the observer,
// and asks the scheduler how long to wait. It returns when a terminal phase
// is reached, after one cycle in single-check mode, or early with
// Interrupted set when ctx is cancelled. State accumulation is append-only
// and max-based, so an interrupted cycle still leaves a valid snapshot.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("monitor: no output source configured")
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	var obs Observer = NoopObserver{}
	if cfg.Observer != nil {
		obs = cfg.Observer
	}

	tracker := NewTracker(TrackerConfig{
		Targets:       cfg.Targets,
		MaxDuration:   cfg.MaxDuration,
		Milestones:    cfg.Milestones,
		NoisePatterns: cfg.NoisePatterns,
		Now:           cfg.Now,
	})
	sched := NewScheduler(cfg.Intervals, cfg.InactivityThreshold)

	targets := cfg.Targets
	if len(targets) == 0 {
		targets = DefaultTargets
	}
	maxDur := cfg.MaxDuration
	if maxDur <= 0 {
		maxDur = DefaultMaxDuration
	}
	writef(cfg.Output, "monitoring build (targets: %s, max duration %s)\n",
		strings.Join(targets, ", "), maxDur)

	start := time.Now()
	if cfg.Now != nil {
		start = cfg.Now()
	}

	result := &Result{}
	lastProgress := -1
	reportedBuilt := 0
	reportedCritical := 0

	finish := func(status BuildStatus, interrupted bool) *Result {
		result.Status = status
		result.Interrupted = interrupted
		if cfg.Now != nil {
			result.Duration = cfg.Now().Sub(start)
		} else {
			result.Duration = time.Since(start)
		}
		obs.OnDone(result)
		return result
	}

	for {
		if ctx.Err() != nil {
			return finish(tracker.Status(), true), nil
		}

		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		chunk, completed, err := cfg.Source.Fetch(fetchCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return finish(tracker.Status(), true), nil
			}
			tracker.RecordTransportError(err.Error())
		}

		status := tracker.Advance(chunk, completed)
		result.Cycles++

		// Delta reporting: progress rises, new target completions, new
		// critical errors.
		if status.Progress > lastProgress {
			obs.OnProgress(status.Progress, status.Activity)
			lastProgress = status.Progress
		}
		for ; reportedBuilt < len(status.BuiltTargets); reportedBuilt++ {
			obs.OnTargetBuilt(status.BuiltTargets[reportedBuilt])
		}
		critical := status.CriticalErrors()
		for ; reportedCritical < len(critical); reportedCritical++ {
			obs.OnCriticalError(critical[reportedCritical])
		}
		obs.OnCycle(status)

		if status.Phase.Terminal() || cfg.SingleCheck {
			return finish(status, false), nil
		}

		wait := sched.Next(tracker.DetectActivity(chunk))
		if err := sleep(ctx, wait); err != nil {
			return finish(tracker.Status(), true), nil
		}
	}
}
