package correlate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irskep/cimonitor/internal/logs"
	"github.com/irskep/cimonitor/internal/model"
)

func parseLog(t *testing.T, lines ...string) *logs.Group {
	t.Helper()
	return logs.Parse(strings.Join(lines, "\n"))
}

func step(n int, name string, conclusion model.RunConclusion) model.Step {
	return model.Step{
		Number:     n,
		Name:       name,
		Status:     model.RunStatusCompleted,
		Conclusion: conclusion,
	}
}

func TestCorrelatePositionalAlignment(t *testing.T) {
	root := parseLog(t,
		"##[group]Checkout",
		"cloning repo",
		"##[endgroup]",
		"##[group]Build",
		"compiling",
		"##[endgroup]",
		"##[group]Test",
		"1 test failed",
		"##[endgroup]",
	)
	steps := []model.Step{
		step(1, "Checkout", model.ConclusionSuccess),
		step(2, "Build", model.ConclusionSuccess),
		step(3, "Test", model.ConclusionFailure),
	}

	res := Correlate(root, steps, Options{})

	require.Len(t, res.Steps, 3)
	assert.False(t, res.BestEffort)
	assert.Equal(t, []string{"cloning repo"}, res.Steps[0].Lines)
	assert.Equal(t, []string{"compiling"}, res.Steps[1].Lines)
	assert.Equal(t, []string{"1 test failed"}, res.Steps[2].Lines)
	assert.True(t, res.Steps[2].IsFailure())
}

func TestCorrelateOrderFollowsMetadata(t *testing.T) {
	root := parseLog(t,
		"##[group]A",
		"first output",
		"##[endgroup]",
		"##[group]B",
		"second output",
		"##[endgroup]",
	)
	// Metadata reordered: content maps by position, so the step now
	// listed first receives the first group regardless of its name.
	steps := []model.Step{
		step(2, "B", model.ConclusionSuccess),
		step(1, "A", model.ConclusionSuccess),
	}

	res := Correlate(root, steps, Options{})

	require.Len(t, res.Steps, 2)
	assert.Equal(t, "B", res.Steps[0].Name)
	assert.Equal(t, []string{"first output"}, res.Steps[0].Lines)
	assert.Equal(t, []string{"second output"}, res.Steps[1].Lines)
}

func TestCorrelateTruncatedLogBestEffort(t *testing.T) {
	root := parseLog(t,
		"##[group]Checkout",
		"cloning",
		"assertion failed: want 2 got 3",
	)
	steps := []model.Step{
		step(1, "Checkout", model.ConclusionSuccess),
		step(2, "Test", model.ConclusionFailure),
	}

	res := Correlate(root, steps, Options{})

	require.Len(t, res.Steps, 2)
	assert.True(t, res.BestEffort)
	// The failing step gets the log tail instead of nothing.
	assert.Contains(t, res.Steps[1].Lines, "assertion failed: want 2 got 3")
}

func TestCorrelateSurplusGroupsFoldIntoFailingStep(t *testing.T) {
	root := parseLog(t,
		"##[group]Setup",
		"ok",
		"##[endgroup]",
		"##[group]Test",
		"boom",
		"##[endgroup]",
		"##[group]Post cleanup",
		"tearing down",
		"##[endgroup]",
	)
	steps := []model.Step{
		step(1, "Setup", model.ConclusionSuccess),
		step(2, "Test", model.ConclusionFailure),
	}

	res := Correlate(root, steps, Options{})

	require.Len(t, res.Steps, 2)
	assert.True(t, res.BestEffort)
	assert.Contains(t, res.Steps[1].Lines, "boom")
	assert.Contains(t, res.Steps[1].Lines, "tearing down")
}

func TestCorrelateFailuresOnlySkipsPassingContent(t *testing.T) {
	root := parseLog(t,
		"##[group]Build",
		"compiling",
		"##[endgroup]",
		"##[group]Test",
		"failed",
		"##[endgroup]",
	)
	steps := []model.Step{
		step(1, "Build", model.ConclusionSuccess),
		step(2, "Test", model.ConclusionFailure),
	}

	res := Correlate(root, steps, Options{FailuresOnly: true})

	require.Len(t, res.Steps, 2)
	assert.Empty(t, res.Steps[0].Lines)
	assert.Equal(t, []string{"failed"}, res.Steps[1].Lines)
}

func TestCorrelateStepFilter(t *testing.T) {
	root := parseLog(t,
		"##[group]Build",
		"compiling",
		"##[endgroup]",
		"##[group]Run unit tests",
		"ok",
		"##[endgroup]",
	)
	steps := []model.Step{
		step(1, "Build", model.ConclusionSuccess),
		step(2, "Run unit tests", model.ConclusionSuccess),
	}

	res := Correlate(root, steps, Options{StepFilter: "UNIT"})

	require.Len(t, res.Steps, 1)
	assert.Equal(t, "Run unit tests", res.Steps[0].Name)
}

func TestCorrelateGroupFilterAndNoGroups(t *testing.T) {
	root := parseLog(t,
		"##[group]Install deps",
		"installing",
		"##[endgroup]",
	)
	steps := []model.Step{step(1, "Install deps", model.ConclusionSuccess)}

	filtered := Correlate(root, steps, Options{GroupFilter: "nothing-matches"})
	require.Len(t, filtered.Steps, 1)
	assert.Empty(t, filtered.Steps[0].Lines)

	noGroups := Correlate(root, steps, Options{NoGroups: true})
	require.Len(t, noGroups.Steps, 1)
	assert.Nil(t, noGroups.Steps[0].Groups)
	assert.Equal(t, []string{"installing"}, noGroups.Steps[0].Lines)
}

func TestCorrelateSkippedStepHasNoContent(t *testing.T) {
	root := parseLog(t, "no markers at all")
	steps := []model.Step{step(1, "Deploy", model.ConclusionSkipped)}

	res := Correlate(root, steps, Options{FailuresOnly: true})

	require.Len(t, res.Steps, 1)
	assert.Empty(t, res.Steps[0].Lines)
}
