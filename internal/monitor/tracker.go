package monitor

import (
	"strings"
	"time"
)

// DefaultMaxDuration bounds a monitoring session when the caller does not
// set one. An hour covers a cold full build with headroom.
const DefaultMaxDuration = time.Hour

// Signal is one retained error or warning line from the build output.
type Signal struct {
	Message       string `json:"message"`
	TargetRelated bool   `json:"target_related"`
	Critical      bool   `json:"critical,omitempty"`
}

// BuildStatus is the snapshot returned to the caller after each Advance.
// It is a derived, read-only view recomputed from tracker state on every
// call; mutating it has no effect on subsequent snapshots.
type BuildStatus struct {
	Phase          Phase
	Progress       int
	Activity       string
	BuiltTargets   []string
	TrackedTargets []string
	Errors         []Signal
	Warnings       []Signal
	Elapsed        time.Duration
	LastActivity   string
}

// Success reports whether the build finished cleanly.
func (s BuildStatus) Success() bool { return s.Phase == PhaseCompleted }

// CriticalErrors returns the retained signals marked critical.
func (s BuildStatus) CriticalErrors() []Signal {
	var out []Signal
	for _, e := range s.Errors {
		if e.Critical {
			out = append(out, e)
		}
	}
	return out
}

// TrackerConfig configures a Tracker. Zero values fall back to defaults.
type TrackerConfig struct {
	// Targets are the tracked target names (default: http, rest, openapi).
	Targets []string

	// MaxDuration is the monitoring deadline. Once elapsed time exceeds it,
	// Advance returns PhaseTimedOut without further classification.
	// Zero means DefaultMaxDuration.
	MaxDuration time.Duration

	// Milestones overrides the milestone ladder floors. Zero value means
	// DefaultMilestones.
	Milestones Milestones

	// NoisePatterns are extra suppression rules appended to the defaults.
	NoisePatterns []string

	// Now is a test hook for the clock. Nil means time.Now.
	Now func() time.Time
}

// DefaultTargets are the tracked targets when the caller supplies none.
var DefaultTargets = []string{"http", "rest", "openapi"}

// Tracker is the progress state machine. It consumes output chunks one at a
// time and maintains cumulative, monotonic build state: progress only ever
// rises, built targets only accumulate, and retained signals are unique per
// run. A single Tracker serves a single monitoring session and is not safe
// for concurrent use; the monitor loop is its only mutator.
type Tracker struct {
	classifier *Classifier
	filter     *NoiseFilter
	targets    []string

	maxDuration time.Duration
	start       time.Time
	now         func() time.Time

	progress     int
	built        map[string]bool
	builtOrder   []string
	errors       []Signal
	warnings     []Signal
	seen         map[string]bool
	finalSeen    bool
	advanced     bool
	activity     string
	lastActivity string
}

// NewTracker creates a Tracker for one monitoring session. The session
// clock starts immediately.
func NewTracker(cfg TrackerConfig) *Tracker {
	targets := cfg.Targets
	if len(targets) == 0 {
		targets = DefaultTargets
	}
	ms := cfg.Milestones
	if ms == (Milestones{}) {
		ms = DefaultMilestones()
	}
	maxDur := cfg.MaxDuration
	if maxDur <= 0 {
		maxDur = DefaultMaxDuration
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		classifier:  NewClassifier(targets, ms),
		filter:      NewNoiseFilter(cfg.NoisePatterns...),
		targets:     targets,
		maxDuration: maxDur,
		start:       now(),
		now:         now,
		built:       make(map[string]bool),
		seen:        make(map[string]bool),
		activity:    "Starting...",
	}
}

// Advance folds one output chunk into the cumulative state and returns a
// fresh snapshot. completed indicates the monitored process has fully
// finished. Empty or malformed chunks are treated as no-signal. The returned
// phase can be terminal; callers stop polling on terminal phases by
// contract, but a subsequent Advance remains valid and keeps accumulating.
func (t *Tracker) Advance(chunk string, completed bool) BuildStatus {
	elapsed := t.now().Sub(t.start)

	// Deadline check comes first: a timed-out session classifies nothing.
	if elapsed > t.maxDuration {
		t.activity = "Timed out"
		t.lastActivity = "Timeout reached"
		return t.snapshot(PhaseTimedOut, elapsed)
	}

	t.advanced = true
	chunk = t.filter.Apply(chunk)

	// Progress only ratchets forward.
	t.progress = t.classifier.ExtractProgress(chunk, t.progress)
	if t.classifier.FinalTargetBuilt(chunk) {
		t.finalSeen = true
	}

	for _, name := range t.classifier.ExtractCompletions(chunk, t.built) {
		t.built[name] = true
		t.builtOrder = append(t.builtOrder, name)
	}

	errs, warns := t.classifier.ExtractSignals(chunk, t.seen)
	t.errors = append(t.errors, errs...)
	t.warnings = append(t.warnings, warns...)

	if act := t.classifier.Activity(chunk); act != "" {
		t.activity = act
		if act != "Processing..." {
			t.lastActivity = act
		}
	}

	return t.snapshot(t.derivePhase(chunk, completed), elapsed)
}

// RecordTransportError retains a failure to fetch output from the process
// source. It is a non-critical diagnostic unless the error text itself
// carries a critical-error marker, in which case it forces PhaseFailed on
// the next derivation.
func (t *Tracker) RecordTransportError(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" || t.seen[msg] {
		return
	}
	t.seen[msg] = true
	t.errors = append(t.errors, Signal{Message: msg, Critical: t.classifier.Critical(msg)})
}

// DetectActivity reports whether the chunk (after noise filtering) carries
// build activity. Exposed for the loop's scheduler decision.
func (t *Tracker) DetectActivity(chunk string) bool {
	return t.classifier.DetectActivity(t.filter.Apply(chunk))
}

// Status returns the current snapshot without consuming a chunk.
func (t *Tracker) Status() BuildStatus {
	elapsed := t.now().Sub(t.start)
	if elapsed > t.maxDuration {
		return t.snapshot(PhaseTimedOut, elapsed)
	}
	if !t.advanced {
		return t.snapshot(PhaseStarting, elapsed)
	}
	return t.snapshot(t.derivePhase("", false), elapsed)
}

// derivePhase maps accumulated state (and the current chunk's configuration
// marker) to a phase. First match wins. The progress bands can re-derive an
// earlier band than a previous call if textual signals regress, but never
// below what the retained maximum progress implies.
func (t *Tracker) derivePhase(chunk string, completed bool) Phase {
	if completed {
		if t.progress >= 100 || t.finalSeen {
			return PhaseCompleted
		}
		if t.anyCritical() {
			return PhaseFailed
		}
		return PhaseCompleted
	}

	if t.anyCritical() {
		return PhaseFailed
	}

	switch {
	case strings.Contains(strings.ToLower(chunk), "cmake") && t.progress < 30:
		return PhaseConfiguring
	case t.progress < 50:
		return PhaseCompilingCore
	case t.progress < 80:
		return PhaseCompilingPackages
	case t.progress < 100:
		return PhaseLinking
	default:
		return PhaseCompleted
	}
}

func (t *Tracker) anyCritical() bool {
	for _, e := range t.errors {
		if e.Critical {
			return true
		}
	}
	return false
}

// snapshot copies the accumulated state into a fresh BuildStatus so the
// caller can hold it across subsequent Advance calls.
func (t *Tracker) snapshot(phase Phase, elapsed time.Duration) BuildStatus {
	built := make([]string, len(t.builtOrder))
	copy(built, t.builtOrder)
	errs := make([]Signal, len(t.errors))
	copy(errs, t.errors)
	warns := make([]Signal, len(t.warnings))
	copy(warns, t.warnings)
	targets := make([]string, len(t.targets))
	copy(targets, t.targets)

	return BuildStatus{
		Phase:          phase,
		Progress:       t.progress,
		Activity:       t.activity,
		BuiltTargets:   built,
		TrackedTargets: targets,
		Errors:         errs,
		Warnings:       warns,
		Elapsed:        elapsed,
		LastActivity:   t.lastActivity,
	}
}
