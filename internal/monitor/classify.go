// Package monitor infers structured build status from the unstructured text
// stream of a long-running compilation. It classifies raw output into
// activity, progress, target-completion, and error/warning signals, folds
// them into a monotonic state machine, and paces polling with a progressive
// backoff schedule.
package monitor

import (
	"regexp"
	"strconv"
	"strings"
)

// Pattern categories for output classification. Each category groups the
// regexes that identify one kind of signal.
var (
	// activityPatterns detect that the build is making progress of any kind.
	// Used only as a boolean signal for the backoff scheduler.
	activityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\[\s*\d+%\]`),             // [ 42%] progress markers
		regexp.MustCompile(`(?i)Building.*\.o`),       // object compilation
		regexp.MustCompile(`(?i)Linking.*executable`), // linking
		regexp.MustCompile(`(?i)Built target`),        // target completion
		regexp.MustCompile(`(?i)make.*:`),             // make activity
		regexp.MustCompile(`(?i)cmake`),               // cmake activity
	}

	// criticalPatterns detect hard build failures.
	criticalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)error:`),
		regexp.MustCompile(`(?i)fatal error:`),
		regexp.MustCompile(`(?i)compilation failed`),
		regexp.MustCompile(`(?i)build failed`),
		regexp.MustCompile(`(?i)make.*error`),
		regexp.MustCompile(`(?i)cmake.*error`),
	}

	// percentRe extracts explicit numeric progress markers.
	percentRe = regexp.MustCompile(`\[\s*(\d+)%\]`)

	// objectFileRe extracts the file name from an object compilation line.
	objectFileRe = regexp.MustCompile(`Building.*?([^/]+\.cc|[^/]+\.c)\.o`)

	// linkNameRe extracts the name being linked.
	linkNameRe = regexp.MustCompile(`(?i)Linking.*?(\w+)`)
)

// Milestones maps textual build markers to minimum progress percentages,
// used when no explicit [NN%] marker is present. The values are heuristic
// floors, not hard law; tune them per build tool if needed.
type Milestones struct {
	ConfigureStart int // cmake configuration begins
	ConfigureDone  int // generation finished
	CoreStart      int // first core object compiled
	PackagesStart  int // tracked-package compilation begins
	LinkingStart   int // executable linking begins
	Complete       int // final target built
}

// DefaultMilestones returns the default milestone ladder.
func DefaultMilestones() Milestones {
	return Milestones{
		ConfigureStart: 10,
		ConfigureDone:  20,
		CoreStart:      30,
		PackagesStart:  50,
		LinkingStart:   80,
		Complete:       100,
	}
}

// Classifier turns a chunk of build output into discrete signals. It holds
// only compiled patterns, no observation history; all cumulative state lives
// in the caller's Tracker so the same methods are safely re-runnable over
// repeated or overlapping chunks.
type Classifier struct {
	targets    []string
	milestones Milestones

	completionRe map[string]*regexp.Regexp // "Built target package_<name>"
	targetToken  map[string]string         // lowercase "package_<name>"
	pathFragment map[string]string         // "packages/<name>"
}

// NewClassifier compiles the per-target patterns for the given tracked
// target names.
func NewClassifier(targets []string, milestones Milestones) *Classifier {
	c := &Classifier{
		targets:      targets,
		milestones:   milestones,
		completionRe: make(map[string]*regexp.Regexp, len(targets)),
		targetToken:  make(map[string]string, len(targets)),
		pathFragment: make(map[string]string, len(targets)),
	}
	for _, t := range targets {
		c.completionRe[t] = regexp.MustCompile(`(?i)Built target package_` + regexp.QuoteMeta(t))
		c.targetToken[t] = "package_" + strings.ToLower(t)
		c.pathFragment[t] = "packages/" + t
	}
	return c
}

// DetectActivity reports whether the chunk contains any build-activity
// marker. This feeds the scheduler only; it never contributes to the
// progress value.
func (c *Classifier) DetectActivity(chunk string) bool {
	for _, re := range activityPatterns {
		if re.MatchString(chunk) {
			return true
		}
	}
	return false
}

// ExtractProgress returns a progress estimate for the chunk, never below
// prior. Explicit [NN%] markers win; otherwise the milestone ladder supplies
// a floor. Values are clamped to [0,100].
func (c *Classifier) ExtractProgress(chunk string, prior int) int {
	if matches := percentRe.FindAllStringSubmatch(chunk, -1); len(matches) > 0 {
		best := prior
		for _, m := range matches {
			v, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if v > best {
				best = v
			}
		}
		if best > 100 {
			best = 100
		}
		return best
	}

	lower := strings.ToLower(chunk)
	floor := prior
	switch {
	case strings.Contains(lower, "cmake") && strings.Contains(lower, "configuring"):
		floor = maxInt(prior, c.milestones.ConfigureStart)
	case strings.Contains(lower, "generating done"):
		floor = maxInt(prior, c.milestones.ConfigureDone)
	case strings.Contains(lower, "building cxx object"):
		floor = maxInt(prior, c.milestones.CoreStart)
	case c.containsTargetToken(lower):
		floor = maxInt(prior, c.milestones.PackagesStart)
	case strings.Contains(lower, "linking") && strings.Contains(lower, "executable"):
		floor = maxInt(prior, c.milestones.LinkingStart)
	case c.FinalTargetBuilt(chunk):
		floor = maxInt(prior, c.milestones.Complete)
	}
	if floor > 100 {
		floor = 100
	}
	return floor
}

// containsTargetToken reports whether the lowercased chunk mentions any
// tracked target's build token.
func (c *Classifier) containsTargetToken(lower string) bool {
	for _, t := range c.targets {
		if strings.Contains(lower, c.targetToken[t]) {
			return true
		}
	}
	return false
}

// FinalTargetBuilt reports whether the chunk announces the final build
// target (the driver executable, or an explicit 100% marker alongside a
// target completion).
func (c *Classifier) FinalTargetBuilt(chunk string) bool {
	lower := strings.ToLower(chunk)
	if !strings.Contains(lower, "built target") {
		return false
	}
	return strings.Contains(lower, "driver") || strings.Contains(chunk, "100%")
}

// ExtractCompletions returns the tracked targets newly reported built in
// this chunk. Targets already present in built are never re-reported.
func (c *Classifier) ExtractCompletions(chunk string, built map[string]bool) []string {
	var newly []string
	for _, t := range c.targets {
		if built[t] {
			continue
		}
		if c.completionRe[t].MatchString(chunk) {
			newly = append(newly, t)
		}
	}
	return newly
}

// TargetRelated reports whether the line names a tracked target's source
// path.
func (c *Classifier) TargetRelated(line string) bool {
	for _, t := range c.targets {
		if strings.Contains(line, c.pathFragment[t]) {
			return true
		}
	}
	return false
}

// Critical reports whether the line matches a hard-failure pattern.
func (c *Classifier) Critical(line string) bool {
	for _, re := range criticalPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// ExtractSignals scans the chunk line by line and returns the retained
// error and warning signals, in order of appearance. Lines whose normalized
// text is already present in seen are skipped; seen is updated for every
// retained signal, so overlapping reads of the same output never duplicate
// a signal. Retention rules:
//
//   - critical lines are retained as errors
//   - target-related warnings are promoted to errors (they threaten the
//     caller's focus area)
//   - remaining warnings are retained only when target-related
func (c *Classifier) ExtractSignals(chunk string, seen map[string]bool) (errs, warns []Signal) {
	for _, raw := range strings.Split(chunk, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		critical := c.Critical(line)
		related := c.TargetRelated(line)
		warning := strings.Contains(strings.ToLower(line), "warning:")

		switch {
		case critical || (related && warning):
			if seen[line] {
				continue
			}
			seen[line] = true
			errs = append(errs, Signal{Message: line, TargetRelated: related, Critical: critical})
		case warning && related:
			if seen[line] {
				continue
			}
			seen[line] = true
			warns = append(warns, Signal{Message: line, TargetRelated: related})
		}
	}
	return errs, warns
}

// Activity derives a human-readable description of what the build is doing
// from the most recent lines of the chunk, scanned newest to oldest. Purely
// informational; never used in decision logic.
func (c *Classifier) Activity(chunk string) string {
	lines := strings.Split(chunk, "\n")
	if len(lines) > 10 {
		lines = lines[len(lines)-10:]
	}
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if m := objectFileRe.FindStringSubmatch(line); m != nil {
			return "Compiling " + m[1]
		}
		lower := strings.ToLower(line)
		for _, t := range c.targets {
			if strings.Contains(lower, c.targetToken[t]) {
				return "Building " + strings.ToUpper(t) + " package"
			}
		}
		if strings.Contains(lower, "linking") {
			if m := linkNameRe.FindStringSubmatch(line); m != nil {
				return "Linking " + m[1]
			}
		}
	}
	return "Processing..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
