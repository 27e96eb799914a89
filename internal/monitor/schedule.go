package monitor

import "time"

// DefaultIntervals is the progressive wait ladder between polls: quick
// checks while the build is chatty, stretching to fifteen minutes for a
// stalled or very slow build.
var DefaultIntervals = []time.Duration{
	30 * time.Second,
	60 * time.Second,
	120 * time.Second,
	240 * time.Second,
	480 * time.Second,
	900 * time.Second,
}

// DefaultInactivityThreshold is how many consecutive inactive checks are
// tolerated before the scheduler slows down by one step.
const DefaultInactivityThreshold = 2

// Scheduler decides how long the monitor loop waits before its next poll.
// Detected activity snaps it back to the fastest interval; sustained
// inactivity walks it up the ladder one step at a time. Owned and mutated
// exclusively by the loop.
type Scheduler struct {
	intervals []time.Duration
	threshold int

	index    int
	inactive int
}

// NewScheduler builds a scheduler from the given ladder and inactivity
// threshold. A nil ladder or non-positive threshold uses the defaults.
func NewScheduler(intervals []time.Duration, threshold int) *Scheduler {
	if len(intervals) == 0 {
		intervals = DefaultIntervals
	}
	if threshold <= 0 {
		threshold = DefaultInactivityThreshold
	}
	return &Scheduler{intervals: intervals, threshold: threshold}
}

// Next records whether the latest check saw activity and returns the wait
// before the next poll. Activity resets to the fastest interval; once the
// consecutive-inactive count exceeds the threshold, each further inactive
// check advances one step, capped at the slowest interval.
func (s *Scheduler) Next(active bool) time.Duration {
	if active {
		s.index = 0
		s.inactive = 0
		return s.intervals[0]
	}

	s.inactive++
	if s.inactive > s.threshold && s.index < len(s.intervals)-1 {
		s.index++
	}
	return s.intervals[s.index]
}
