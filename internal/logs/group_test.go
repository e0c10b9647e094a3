package logs

import (
	"strings"
	"testing"
)

const ts = "2025-08-26T12:00:01.1234567Z "

func TestParseWellFormedGroups(t *testing.T) {
	raw := strings.Join([]string{
		ts + "##[group]Set up job",
		ts + "runner image: ubuntu-24.04",
		ts + "##[endgroup]",
		ts + "##[group]Run tests",
		ts + "##[group]Install deps",
		ts + "pip install -r requirements.txt",
		ts + "##[endgroup]",
		ts + "collected 42 items",
		ts + "##[endgroup]",
	}, "\n")

	root := Parse(raw)

	if got := root.CountGroups(); got != 3 {
		t.Fatalf("CountGroups() = %d, want 3", got)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root has %d top-level groups, want 2", len(root.Children))
	}
	if root.Children[0].Name != "Set up job" {
		t.Errorf("first group name = %q, want %q", root.Children[0].Name, "Set up job")
	}

	tests := root.Children[1]
	if tests.Name != "Run tests" {
		t.Errorf("second group name = %q", tests.Name)
	}
	if len(tests.Children) != 1 || tests.Children[0].Name != "Install deps" {
		t.Fatalf("nested group missing: %+v", tests.Children)
	}
	if tests.Children[0].Depth != 2 {
		t.Errorf("nested depth = %d, want 2", tests.Children[0].Depth)
	}
	if len(tests.Lines) != 1 || tests.Lines[0] != "collected 42 items" {
		t.Errorf("content after nested close landed wrong: %v", tests.Lines)
	}
}

func TestParseUnterminatedGroup(t *testing.T) {
	raw := strings.Join([]string{
		ts + "##[group]Build",
		ts + "compiling main.go",
		ts + "truncated mid-flight",
	}, "\n")

	root := Parse(raw)

	if len(root.Children) != 1 {
		t.Fatalf("root has %d groups, want 1", len(root.Children))
	}
	got := root.Children[0].Lines
	if len(got) != 2 || got[1] != "truncated mid-flight" {
		t.Errorf("trailing content lost: %v", got)
	}
}

func TestParseStrayEndMarker(t *testing.T) {
	raw := strings.Join([]string{
		ts + "##[endgroup]",
		ts + "orphan content",
	}, "\n")

	root := Parse(raw)

	if len(root.Children) != 0 {
		t.Errorf("stray endgroup created a group: %+v", root.Children)
	}
	if len(root.Lines) != 1 || root.Lines[0] != "orphan content" {
		t.Errorf("root lines = %v", root.Lines)
	}
}

func TestParseNoMarkersFallsBackFlat(t *testing.T) {
	raw := ts + "line one\n" + ts + "line two"

	root := Parse(raw)

	if len(root.Children) != 0 {
		t.Fatalf("expected flat root, got %d groups", len(root.Children))
	}
	if len(root.Lines) != 2 {
		t.Errorf("root lines = %v", root.Lines)
	}
	top := root.TopLevel()
	if len(top) != 1 || len(top[0].Lines) != 2 {
		t.Errorf("TopLevel() pseudo-group = %+v", top)
	}
}

func TestInterleavedContentKeepsStreamOrder(t *testing.T) {
	raw := strings.Join([]string{
		ts + "##[group]Outer",
		ts + "before nested",
		ts + "##[group]Inner",
		ts + "inner line",
		ts + "##[endgroup]",
		ts + "after nested",
		ts + "##[endgroup]",
		ts + "trailing root line",
	}, "\n")

	root := Parse(raw)
	outer := root.Children[0]

	want := []string{"before nested", "inner line", "after nested"}
	if got := outer.AllLines(); !equalLines(got, want) {
		t.Errorf("AllLines() = %v, want %v", got, want)
	}

	wantAll := []string{"before nested", "inner line", "after nested", "trailing root line"}
	if got := root.AllLines(); !equalLines(got, wantAll) {
		t.Errorf("root AllLines() = %v, want %v", got, wantAll)
	}

	flat := outer.Flatten()
	wantFlat := []string{
		"  > Outer",
		"  before nested",
		"    > Inner",
		"    inner line",
		"  after nested",
	}
	if !equalLines(flat, wantFlat) {
		t.Errorf("Flatten() = %v, want %v", flat, wantFlat)
	}
}

func equalLines(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestStripTimestamp(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "standard prefix",
			line: "2025-08-26T12:00:01.1234567Z hello",
			want: "hello",
		},
		{
			name: "no fractional seconds",
			line: "2025-08-26T12:00:01Z hello",
			want: "hello",
		},
		{
			name: "bare timestamp",
			line: "2025-08-26T12:00:01.1234567Z",
			want: "",
		},
		{
			name: "no timestamp",
			line: "plain content",
			want: "plain content",
		},
		{
			name: "timestamp-ish word mid-line untouched",
			line: "deployed at 2025-08-26T12:00:01Z ok",
			want: "deployed at 2025-08-26T12:00:01Z ok",
		},
		{
			name: "empty",
			line: "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTimestamp(tt.line); got != tt.want {
				t.Errorf("StripTimestamp(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestFlattenIndentCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString(ts + "##[group]level\n")
	}
	b.WriteString(ts + "deep content")

	root := Parse(b.String())

	lines := root.Flatten()
	last := lines[len(lines)-1]
	wantIndent := strings.Repeat("  ", MaxIndentDepth)
	if !strings.HasPrefix(last, wantIndent+"deep content") {
		t.Errorf("deep line not capped at MaxIndentDepth: %q", last)
	}
	if strings.HasPrefix(last, wantIndent+"  ") {
		t.Errorf("indentation exceeds cap: %q", last)
	}
}
