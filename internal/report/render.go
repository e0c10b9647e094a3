package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/irskep/cimonitor/internal/model"
	"github.com/irskep/cimonitor/internal/ui"
)

type RenderOptions struct {
	// ShowGroups includes the matched group tree under each failing step.
	ShowGroups bool
	// Raw dumps every step's full content instead of error excerpts.
	Raw     bool
	Verbose bool
}

// Render formats the report for terminal output.
func Render(r *Report, opts RenderOptions) string {
	var b strings.Builder

	b.WriteString(ui.StyleHeader.Render(fmt.Sprintf("CI status for %s", r.Target)))
	b.WriteString("\n")

	if r.PR != nil {
		renderPR(&b, r.PR)
	}

	if r.Run.ID != 0 {
		style := ui.ConclusionStyle(string(r.Outcome))
		b.WriteString(fmt.Sprintf("%s %s (run #%d, attempt %d) %s",
			ui.StatusIcon(string(r.Outcome)),
			r.Run.Name,
			r.Run.RunNumber,
			r.Run.RunAttempt,
			style.Render(string(r.Outcome)),
		))
		if d := r.Run.Duration(); d > 0 {
			b.WriteString(ui.StyleMuted.Render(fmt.Sprintf(" took %s", formatDuration(d))))
		}
		b.WriteString("\n")
		if opts.Verbose {
			b.WriteString(ui.StyleMuted.Render(fmt.Sprintf("  commit %s, branch %s, %s\n",
				r.Run.ShortSHA(), r.Run.HeadBranch, r.Run.HTMLURL)))
		}
	} else {
		b.WriteString(ui.StyleMuted.Render("no workflow runs found\n"))
	}

	for i := range r.Jobs {
		renderJob(&b, &r.Jobs[i], opts)
	}

	if r.Watch != nil {
		renderWatch(&b, r.Watch)
	}

	return b.String()
}

func renderPR(b *strings.Builder, pr *model.PullRequest) {
	switch pr.Mergeability() {
	case model.Conflicting:
		b.WriteString(ui.StyleConflict.Render(
			fmt.Sprintf("MERGE CONFLICT: PR #%d cannot be merged; fixing CI will not resolve this", pr.Number)))
		b.WriteString("\n")
	case model.MergeUnknown:
		b.WriteString(ui.StyleMuted.Render(
			fmt.Sprintf("PR #%d mergeability not yet computed\n", pr.Number)))
	}
}

func renderJob(b *strings.Builder, j *Job, opts RenderOptions) {
	conclusion := string(j.Job.Conclusion)
	if conclusion == "" {
		conclusion = string(j.Job.Status)
	}
	b.WriteString(fmt.Sprintf("%s %s %s",
		ui.StatusIcon(conclusion),
		j.Job.Name,
		ui.ConclusionStyle(conclusion).Render(conclusion)))
	if d := j.Job.Duration(); d > 0 {
		b.WriteString(ui.StyleMuted.Render(fmt.Sprintf(" (%s)", formatDuration(d))))
	}
	b.WriteString("\n")

	if j.BestEffort {
		b.WriteString(ui.StyleWarning.Render("  (log/step correlation is best-effort; use --raw for full logs)"))
		b.WriteString("\n")
	}
	if j.LogErr != nil {
		b.WriteString(ui.StyleMuted.Render(fmt.Sprintf("  logs unavailable: %v\n", j.LogErr)))
	}

	for _, st := range j.Steps {
		renderStep(b, st, opts)
	}

	if len(j.TailLines) > 0 {
		b.WriteString(ui.StyleMuted.Render("  log tail:"))
		b.WriteString("\n")
		for _, line := range j.TailLines {
			b.WriteString("    " + line + "\n")
		}
	}
}

func renderStep(b *strings.Builder, st Step, opts RenderOptions) {
	rec := st.Record
	conclusion := string(rec.Conclusion)
	if conclusion == "" {
		conclusion = string(rec.Status)
	}

	// Passing steps are noise unless asked for.
	if !rec.IsFailure() && !opts.Verbose && !opts.Raw {
		return
	}

	b.WriteString(fmt.Sprintf("  %s step %d: %s %s",
		ui.StatusIcon(conclusion),
		rec.Index,
		rec.Name,
		ui.ConclusionStyle(conclusion).Render(conclusion)))
	if rec.Took > 0 {
		b.WriteString(ui.StyleMuted.Render(fmt.Sprintf(" (took %s)", formatDuration(rec.Took))))
	}
	b.WriteString("\n")

	switch {
	case opts.Raw:
		for _, g := range rec.Groups {
			for _, line := range g.Flatten() {
				b.WriteString("    " + line + "\n")
			}
		}
		if len(rec.Groups) == 0 {
			for _, line := range rec.Lines {
				b.WriteString("    " + line + "\n")
			}
		}
	case len(st.ErrorLines) > 0:
		for _, line := range st.ErrorLines {
			b.WriteString("    " + line + "\n")
		}
	}

	if opts.ShowGroups && !opts.Raw {
		for _, g := range rec.Groups {
			if g.Name != "" {
				b.WriteString(ui.StyleMuted.Render(fmt.Sprintf("    > %s (%d lines)\n", g.Name, len(g.AllLines()))))
			}
		}
	}
}

func renderWatch(b *strings.Builder, w *Watch) {
	style := ui.ConclusionStyle(string(w.Outcome))
	b.WriteString(fmt.Sprintf("watch finished: %s after %d polls\n", style.Render(string(w.Outcome)), w.Polls))

	names := make([]string, 0, len(w.Retries))
	for name := range w.Retries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rs := w.Retries[name]
		if rs.Exhausted() {
			b.WriteString(ui.StyleFailure.Render(
				fmt.Sprintf("  %s: still failing after %d retries (genuine failure)\n", name, rs.Count)))
		} else if rs.Count > 0 {
			b.WriteString(ui.StyleWarning.Render(
				fmt.Sprintf("  %s: recovered after %d retr%s (flaky)\n", name, rs.Count, plural(rs.Count, "y", "ies"))))
		}
	}
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
