package errfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyKeepsMarkersAndContext(t *testing.T) {
	lines := []string{
		"setting up",
		"running go test ./...",
		"--- FAIL: TestThing (0.02s)",
		"unrelated chatter",
		"even more chatter",
		"still more",
		"process exited with code 1",
	}

	f := New()
	got := f.Apply(lines)

	assert.Equal(t, []string{
		"setting up",
		"running go test ./...",
		"--- FAIL: TestThing (0.02s)",
		"even more chatter",
		"still more",
		"process exited with code 1",
	}, got)
}

func TestApplyNoMatchReturnsEverything(t *testing.T) {
	lines := []string{"all good", "nothing to see", "done"}

	got := New().Apply(lines)

	assert.Equal(t, lines, got)
}

func TestApplyIsIdempotent(t *testing.T) {
	lines := []string{
		"a", "b", "c",
		"Error: something broke",
		"d", "e", "f", "g",
		"panic: runtime error",
		"h",
	}

	f := New()
	once := f.Apply(lines)
	twice := f.Apply(once)

	assert.Equal(t, once, twice)
}

func TestApplyCaseInsensitive(t *testing.T) {
	lines := []string{"ok", "FATAL ERROR IN WORKER", "ok2"}

	got := New().Apply(lines)

	assert.Contains(t, got, "FATAL ERROR IN WORKER")
	assert.NotContains(t, got, "ok2")
}

func TestCustomMarkers(t *testing.T) {
	lines := []string{"warning: deprecated call", "error: real problem"}

	f := NewWithMarkers([]string{"warning"}, 0)
	got := f.Apply(lines)

	assert.Equal(t, []string{"warning: deprecated call"}, got)
}

func TestCustomMarkersMixedCase(t *testing.T) {
	lines := []string{"all fine", "Error: boom", "also fine"}

	f := NewWithMarkers([]string{"Error"}, 0)
	got := f.Apply(lines)

	assert.Equal(t, []string{"Error: boom"}, got)
}

func TestTail(t *testing.T) {
	var lines []string
	for i := 0; i < 15; i++ {
		lines = append(lines, "line")
		lines = append(lines, "   ")
	}

	got := Tail(lines)

	assert.Len(t, got, FallbackTail)
	for _, l := range got {
		assert.Equal(t, "line", l)
	}
}
