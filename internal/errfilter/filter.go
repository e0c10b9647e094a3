// Package errfilter reduces a failed step's log content to the lines
// most likely to explain the failure. It is presentation-level trimming
// only; whether a step failed is always decided by its API status.
package errfilter

import "strings"

// DefaultMarkers flag a line as likely error output. Matching is
// case-insensitive substring containment.
var DefaultMarkers = []string{
	"error",
	"fail",
	"exception",
	"traceback",
	"panic:",
	"assert",
	"exit code",
	"exited with",
	"✗",
	"❌",
}

const (
	// ContextBefore lines preceding a match are kept, since root causes
	// usually sit right after the command that triggered them.
	ContextBefore = 2
	// FallbackTail is how many trailing lines to show when a caller asks
	// for a tail summary of content with no recognizable markers.
	FallbackTail = 10
)

// Filter selects likely error lines plus leading context.
type Filter struct {
	markers []string
	before  int
}

// New returns a filter using the default marker list.
func New() *Filter {
	return &Filter{markers: lowerAll(DefaultMarkers), before: ContextBefore}
}

// NewWithMarkers returns a filter with a caller-supplied marker list.
// An empty list falls back to the defaults.
func NewWithMarkers(markers []string, contextBefore int) *Filter {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	if contextBefore < 0 {
		contextBefore = 0
	}
	return &Filter{markers: lowerAll(markers), before: contextBefore}
}

// lowerAll normalizes markers so matching against lowercased lines stays
// case-insensitive regardless of how the caller spelled them.
func lowerAll(markers []string) []string {
	out := make([]string, len(markers))
	for i, m := range markers {
		out[i] = strings.ToLower(m)
	}
	return out
}

// Apply returns the subset of lines worth showing, preserving original
// order and deduplicating overlapping context windows. If nothing
// matches any marker the full input is returned untouched: hiding
// everything would be worse than showing too much. Apply is idempotent.
func (f *Filter) Apply(lines []string) []string {
	keep := make([]bool, len(lines))
	matched := false

	for i, line := range lines {
		if !f.matches(line) {
			continue
		}
		matched = true
		start := i - f.before
		if start < 0 {
			start = 0
		}
		for j := start; j <= i; j++ {
			keep[j] = true
		}
	}

	if !matched {
		return lines
	}

	var out []string
	for i, line := range lines {
		if keep[i] {
			out = append(out, line)
		}
	}
	return out
}

// Tail returns the last FallbackTail non-blank lines, used when a failed
// step's filtered content comes back empty.
func Tail(lines []string) []string {
	var nonBlank []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonBlank = append(nonBlank, l)
		}
	}
	if len(nonBlank) > FallbackTail {
		nonBlank = nonBlank[len(nonBlank)-FallbackTail:]
	}
	return nonBlank
}

func (f *Filter) matches(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range f.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
