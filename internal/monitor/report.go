package monitor

// Report is the JSON status document exposed to external consumers (the
// --output-format json CLI mode and the polled status file).
type Report struct {
	Phase           string   `json:"phase"`
	Progress        int      `json:"progress"`
	CurrentActivity string   `json:"currentActivity"`
	BuiltTargets    []string `json:"builtTargets"`
	TrackedTargets  []string `json:"trackedTargets"`
	ErrorCount      int      `json:"errorCount"`
	WarningCount    int      `json:"warningCount"`
	ElapsedSeconds  float64  `json:"elapsedSeconds"`
	Success         bool     `json:"success"`
}

// Report converts the snapshot into its external JSON shape.
func (s BuildStatus) Report() Report {
	built := s.BuiltTargets
	if built == nil {
		built = []string{}
	}
	tracked := s.TrackedTargets
	if tracked == nil {
		tracked = []string{}
	}
	return Report{
		Phase:           s.Phase.String(),
		Progress:        s.Progress,
		CurrentActivity: s.Activity,
		BuiltTargets:    built,
		TrackedTargets:  tracked,
		ErrorCount:      len(s.Errors),
		WarningCount:    len(s.Warnings),
		ElapsedSeconds:  s.Elapsed.Seconds(),
		Success:         s.Success(),
	}
}
