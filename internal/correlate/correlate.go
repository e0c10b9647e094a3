// Package correlate maps parsed log groups onto a job's step metadata.
// Step order and status always come from the API; log text is only used
// to attach content, never to decide what ran or how it ended.
package correlate

import (
	"strings"
	"time"

	"github.com/irskep/cimonitor/internal/logs"
	"github.com/irskep/cimonitor/internal/model"
)

// StepRecord is one step of a job with whatever log content could be
// matched to it. Index is the metadata ordinal and is the source of
// truth for ordering.
type StepRecord struct {
	Index      int
	Name       string
	Status     model.RunStatus
	Conclusion model.RunConclusion
	Took       time.Duration
	Groups     []*logs.Group
	Lines      []string
}

func (r StepRecord) IsFailure() bool {
	return r.Conclusion == model.ConclusionFailure || r.Conclusion == model.ConclusionTimedOut
}

// Result is the correlation output for one job. BestEffort is set when
// positional alignment could not be trusted (group/step counts disagree
// or the log was truncated) and the content attachment is approximate.
type Result struct {
	Steps      []StepRecord
	BestEffort bool
}

// Options restricts which steps and groups appear in the result. Filters
// are case-insensitive substring matches; empty means include everything.
type Options struct {
	StepFilter  string
	GroupFilter string
	// NoGroups drops matched group trees from the result, leaving only
	// flattened content lines.
	NoGroups bool
	// FailuresOnly resolves content only for failing steps. Successful,
	// skipped, and cancelled steps keep empty content, which avoids
	// walking large logs nobody asked about.
	FailuresOnly bool
}

// Correlate aligns the Nth top-level log group with the Nth step. CI
// emits step output in execution order, so position is a more reliable
// join key than matching group names against step names. When the counts
// disagree the remaining content is attached to the first failing step
// still unmatched and the result is flagged best-effort.
func Correlate(root *logs.Group, steps []model.Step, opts Options) Result {
	groups := root.TopLevel()
	res := Result{BestEffort: len(groups) != len(steps)}

	tailClaimed := false
	for i, st := range steps {
		rec := StepRecord{
			Index:      st.Number,
			Name:       st.Name,
			Status:     st.Status,
			Conclusion: st.Conclusion,
			Took:       st.Duration(),
		}
		if wantContent(st, opts) {
			if i < len(groups) {
				attach(&rec, groups[i], opts)
			} else if st.Failed() && len(groups) > 0 && !tailClaimed {
				// The log ran out before this step, which happens with
				// truncated streams. The tail group is the closest thing
				// to the failure's output, so hand it over rather than
				// reporting nothing.
				attach(&rec, groups[len(groups)-1], opts)
				tailClaimed = true
			}
		}
		res.Steps = append(res.Steps, rec)
	}

	// More groups than steps: fold the surplus into the last failing
	// step so no content silently disappears.
	if len(groups) > len(steps) {
		if idx := lastFailing(res.Steps); idx >= 0 && wantContent(steps[idx], opts) {
			for _, g := range groups[len(steps):] {
				attach(&res.Steps[idx], g, opts)
			}
		}
	}

	res.Steps = filterSteps(res.Steps, opts)
	return res
}

func wantContent(st model.Step, opts Options) bool {
	if !opts.FailuresOnly {
		return true
	}
	return st.Failed()
}

func attach(rec *StepRecord, g *logs.Group, opts Options) {
	if opts.GroupFilter != "" && !containsFold(g.Name, opts.GroupFilter) {
		// The filter applies to named groups; an unnamed pseudo-group
		// carries ungrouped content and is never filtered out.
		if g.Name != "" {
			return
		}
	}
	if !opts.NoGroups {
		rec.Groups = append(rec.Groups, g)
	}
	rec.Lines = append(rec.Lines, g.AllLines()...)
}

func lastFailing(steps []StepRecord) int {
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].IsFailure() {
			return i
		}
	}
	return -1
}

func filterSteps(steps []StepRecord, opts Options) []StepRecord {
	if opts.StepFilter == "" {
		return steps
	}
	var kept []StepRecord
	for _, s := range steps {
		if containsFold(s.Name, opts.StepFilter) {
			kept = append(kept, s)
		}
	}
	return kept
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
