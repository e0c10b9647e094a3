// Package report assembles and renders the structured CI status report:
// per-job conclusions, per-step status with error-filtered log excerpts,
// the overall outcome, and the merge-conflict flag for PR targets.
package report

import (
	"github.com/irskep/cimonitor/internal/correlate"
	"github.com/irskep/cimonitor/internal/model"
	"github.com/irskep/cimonitor/internal/watch"
)

type Step struct {
	Record correlate.StepRecord
	// ErrorLines is the filtered excerpt for failing steps. Empty for
	// steps whose content was never resolved.
	ErrorLines []string
}

type Job struct {
	Job   model.Job
	Steps []Step
	// BestEffort marks the step/log correlation as approximate; the
	// renderer surfaces it so readers can lower confidence or ask for
	// raw logs.
	BestEffort bool
	// TailLines is the raw log tail, used when a failed job yielded no
	// step-level excerpt at all.
	TailLines []string
	// LogErr records a failed log download. The job's status is still
	// reported; only its excerpts are missing.
	LogErr error
}

type Watch struct {
	Outcome model.Outcome
	Polls   int
	Retries map[string]watch.RetryState
}

type Report struct {
	Target  string
	Run     model.Run
	Outcome model.Outcome
	Jobs    []Job
	PR      *model.PullRequest
	Watch   *Watch
}

// Conflict reports whether the PR target has a merge conflict. It is
// independent of CI results and outranks them in the rendered output.
func (r *Report) Conflict() bool {
	return r.PR != nil && r.PR.HasConflict()
}

// Failed reports whether the invocation should exit nonzero.
func (r *Report) Failed() bool {
	if r.Conflict() {
		return true
	}
	switch r.Outcome {
	case model.OutcomeFailure, model.OutcomeTimedOut, model.OutcomeCancelled:
		return true
	}
	return false
}
