// Package logs reconstructs the foldable group structure GitHub Actions
// embeds in raw job logs via ##[group]/##[endgroup] markers.
package logs

import "strings"

const (
	groupStartMarker = "##[group]"
	groupEndMarker   = "##[endgroup]"

	// MaxIndentDepth caps indentation when rendering. Parse depth itself
	// is unbounded; deeper groups keep their data and render at this cap.
	MaxIndentDepth = 8
)

// Group is a named, possibly nested section of a job log. Lines and
// Children preserve original stream order. The root group returned by
// Parse has an empty name and depth 0.
type Group struct {
	Name     string
	Depth    int
	Lines    []string
	Children []*Group

	// offset is how many of the parent's Lines precede this group in the
	// stream, so traversal can re-interleave lines and subgroups.
	offset int
}

// Parse builds the group tree for one job's raw log. Timestamps are
// stripped before classification. Parse never fails: stray end markers
// are dropped, unterminated groups are closed at end of stream, and a
// log with no markers at all comes back as a single flat root group.
func Parse(raw string) *Group {
	root := &Group{}
	raw = strings.TrimSuffix(raw, "\n")
	if raw == "" {
		return root
	}
	stack := []*Group{root}

	for _, line := range strings.Split(raw, "\n") {
		line = StripTimestamp(line)
		top := stack[len(stack)-1]

		switch {
		case strings.HasPrefix(line, groupStartMarker):
			child := &Group{
				Name:   strings.TrimSpace(strings.TrimPrefix(line, groupStartMarker)),
				Depth:  len(stack),
				offset: len(top.Lines),
			}
			top.Children = append(top.Children, child)
			stack = append(stack, child)
		case strings.HasPrefix(line, groupEndMarker):
			// An end marker with nothing open is malformed input; drop it.
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		default:
			top.Lines = append(top.Lines, line)
		}
	}

	return root
}

// StripTimestamp removes the ISO-8601 prefix GitHub puts on every log
// line ("2025-08-26T12:00:00.1234567Z content"). Lines without a
// recognizable prefix are returned unchanged.
func StripTimestamp(line string) string {
	sp := strings.IndexByte(line, ' ')
	if sp < 0 {
		if looksLikeTimestamp(line) {
			return ""
		}
		return line
	}
	if looksLikeTimestamp(line[:sp]) {
		return line[sp+1:]
	}
	return line
}

// looksLikeTimestamp reports whether s has the shape of an RFC 3339
// UTC timestamp: digits and date/time punctuation, starting with a
// 4-digit year and ending in Z.
func looksLikeTimestamp(s string) bool {
	if len(s) < 20 || s[len(s)-1] != 'Z' {
		return false
	}
	if s[4] != '-' || s[7] != '-' || s[10] != 'T' {
		return false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// TopLevel returns the root's direct children. A leading block of
// ungrouped root lines, if any, is wrapped in an unnamed pseudo-group so
// positional alignment can still count it.
func (g *Group) TopLevel() []*Group {
	if len(g.Lines) == 0 {
		return g.Children
	}
	pseudo := &Group{Lines: g.Lines, Depth: 1}
	return append([]*Group{pseudo}, g.Children...)
}

// CountGroups returns the number of named groups in the tree rooted at g,
// excluding g itself.
func (g *Group) CountGroups() int {
	n := 0
	for _, c := range g.Children {
		n += 1 + c.CountGroups()
	}
	return n
}

// AllLines returns every content line in the tree rooted at g, in
// original stream order, re-interleaving lines with nested subgroups.
func (g *Group) AllLines() []string {
	var out []string
	i := 0
	for _, c := range g.Children {
		if p := min(c.offset, len(g.Lines)); p > i {
			out = append(out, g.Lines[i:p]...)
			i = p
		}
		out = append(out, c.AllLines()...)
	}
	return append(out, g.Lines[i:]...)
}

// Flatten renders the tree as indented text, two spaces per depth level,
// capped at MaxIndentDepth.
func (g *Group) Flatten() []string {
	var out []string
	g.flattenInto(&out)
	return out
}

func (g *Group) flattenInto(out *[]string) {
	indent := strings.Repeat("  ", min(g.Depth, MaxIndentDepth))
	if g.Name != "" {
		*out = append(*out, indent+"> "+g.Name)
	}
	i := 0
	for _, c := range g.Children {
		for p := min(c.offset, len(g.Lines)); i < p; i++ {
			*out = append(*out, indent+g.Lines[i])
		}
		c.flattenInto(out)
	}
	for ; i < len(g.Lines); i++ {
		*out = append(*out, indent+g.Lines[i])
	}
}
