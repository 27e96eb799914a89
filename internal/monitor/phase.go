package monitor

import (
	"encoding/json"
	"fmt"
)

// Phase is the coarse stage of a monitored build. The ordering follows the
// typical progression of a CMake-driven build, but transitions are derived
// from the retained maximum progress rather than enforced as a strict
// sequence.
type Phase int

const (
	PhaseStarting          Phase = iota // No signals observed yet.
	PhaseConfiguring                    // Configuration (cmake) output seen, progress < 30.
	PhaseCompilingCore                  // Core object compilation, progress < 50.
	PhaseCompilingPackages              // Tracked-package compilation, progress < 80.
	PhaseLinking                        // Linking executables, progress < 100.
	PhaseCompleted                      // Build finished successfully. Terminal.
	PhaseFailed                         // Critical error recorded. Terminal.
	PhaseTimedOut                       // Monitoring deadline exceeded. Terminal.
)

// String returns the wire name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseConfiguring:
		return "configuring"
	case PhaseCompilingCore:
		return "compiling_core"
	case PhaseCompilingPackages:
		return "compiling_packages"
	case PhaseLinking:
		return "linking"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	case PhaseTimedOut:
		return "timeout"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends a monitoring session. Callers must
// stop polling once a terminal phase is returned; the tracker does not
// enforce this.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed || p == PhaseTimedOut
}

// MarshalJSON implements json.Marshaler.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "starting":
		*p = PhaseStarting
	case "configuring":
		*p = PhaseConfiguring
	case "compiling_core":
		*p = PhaseCompilingCore
	case "compiling_packages":
		*p = PhaseCompilingPackages
	case "linking":
		*p = PhaseLinking
	case "completed":
		*p = PhaseCompleted
	case "failed":
		*p = PhaseFailed
	case "timeout":
		*p = PhaseTimedOut
	default:
		return fmt.Errorf("unknown Phase: %s", s)
	}
	return nil
}
