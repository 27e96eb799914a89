package monitor

import (
	"regexp"
	"strings"
)

// defaultNoisePatterns match known-benign build output: third-party library
// warnings, deprecation notices, and compiler flag chatter. They are scoped
// to specific identifiers rather than generic words so genuine issues in
// tracked packages are never suppressed.
var defaultNoisePatterns = []string{
	`(?i)warning.*third.*party`,
	`(?i)warning.*libwebsockets`,
	`(?i)warning.*libevent`,
	`(?i)warning.*crypt`,
	`(?i)note: unrecognized command-line option`,
	`(?i)warning.*stringop-overflow`,
	`(?i)warning.*deprecated`,
}

// NoiseFilter suppresses known-benign lines before any classification step.
// A dropped line never reaches activity detection, progress extraction, or
// signal extraction.
type NoiseFilter struct {
	rules []*regexp.Regexp
}

// NewNoiseFilter builds a filter from the default rule set plus any extra
// patterns. Extra patterns that fail to compile are ignored rather than
// aborting the run; a malformed suppression rule should never take the
// monitor down.
func NewNoiseFilter(extra ...string) *NoiseFilter {
	f := &NoiseFilter{rules: make([]*regexp.Regexp, 0, len(defaultNoisePatterns)+len(extra))}
	for _, p := range defaultNoisePatterns {
		f.rules = append(f.rules, regexp.MustCompile(p))
	}
	for _, p := range extra {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		f.rules = append(f.rules, re)
	}
	return f
}

// Drop reports whether the line matches a suppression rule.
func (f *NoiseFilter) Drop(line string) bool {
	for _, re := range f.rules {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Apply returns chunk with suppressed lines removed. Line boundaries of the
// surviving content are preserved.
func (f *NoiseFilter) Apply(chunk string) string {
	if chunk == "" {
		return chunk
	}
	lines := strings.Split(chunk, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if f.Drop(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
