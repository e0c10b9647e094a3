package report

import (
	"context"

	"github.com/irskep/cimonitor/internal/api"
	"github.com/irskep/cimonitor/internal/cache"
	"github.com/irskep/cimonitor/internal/correlate"
	"github.com/irskep/cimonitor/internal/errfilter"
	"github.com/irskep/cimonitor/internal/logs"
	"github.com/irskep/cimonitor/internal/model"
)

// LogSource fetches one job's raw log. Satisfied by *api.Client; faked
// in tests.
type LogSource interface {
	JobRawLog(ctx context.Context, jobID int64) (string, error)
}

// Builder turns a run snapshot into a Report. Logs are fetched only for
// failed jobs (through the cache when possible); everything else is
// reported from metadata alone.
type Builder struct {
	Source  LogSource
	Cache   *cache.LogCache
	Filter  *errfilter.Filter
	Options correlate.Options
	// AllJobs fetches logs for every job instead of only failed ones
	// (raw-logs mode).
	AllJobs bool
}

func NewBuilder(client *api.Client, logCache *cache.LogCache) *Builder {
	return &Builder{
		Source:  client,
		Cache:   logCache,
		Filter:  errfilter.New(),
		Options: correlate.Options{FailuresOnly: true},
	}
}

func (b *Builder) Build(ctx context.Context, target string, snap model.Snapshot) (*Report, error) {
	rep := &Report{
		Target:  target,
		Run:     snap.Run,
		Outcome: snap.Outcome(),
	}

	for _, j := range snap.Jobs {
		jr, err := b.buildJob(ctx, j)
		if err != nil {
			return nil, err
		}
		rep.Jobs = append(rep.Jobs, jr)
	}
	return rep, nil
}

func (b *Builder) buildJob(ctx context.Context, j model.Job) (Job, error) {
	jr := Job{Job: j}

	if !j.Failed() && !b.AllJobs {
		// No content resolution for passing jobs; step metadata is all
		// the report needs.
		for _, st := range j.Steps {
			jr.Steps = append(jr.Steps, Step{Record: correlate.StepRecord{
				Index:      st.Number,
				Name:       st.Name,
				Status:     st.Status,
				Conclusion: st.Conclusion,
				Took:       st.Duration(),
			}})
		}
		return jr, nil
	}

	raw, err := b.jobLog(ctx, j)
	if err != nil {
		if api.IsKind(err, api.ErrKindAuth) || api.IsKind(err, api.ErrKindRateLimit) {
			return jr, err
		}
		// A missing or unreadable log is not fatal: report status
		// without excerpts.
		jr.LogErr = err
		for _, st := range j.Steps {
			jr.Steps = append(jr.Steps, Step{Record: correlate.StepRecord{
				Index:      st.Number,
				Name:       st.Name,
				Status:     st.Status,
				Conclusion: st.Conclusion,
				Took:       st.Duration(),
			}})
		}
		return jr, nil
	}

	opts := b.Options
	if b.AllJobs {
		opts.FailuresOnly = false
	}
	root := logs.Parse(raw)
	res := correlate.Correlate(root, j.Steps, opts)
	jr.BestEffort = res.BestEffort

	haveExcerpt := false
	for _, rec := range res.Steps {
		step := Step{Record: rec}
		if rec.IsFailure() && len(rec.Lines) > 0 {
			step.ErrorLines = b.Filter.Apply(rec.Lines)
			haveExcerpt = haveExcerpt || len(step.ErrorLines) > 0
		}
		jr.Steps = append(jr.Steps, step)
	}

	// A failed job where no step content could be matched (no metadata,
	// heavy truncation) still gets the log tail.
	if j.Failed() && !haveExcerpt {
		jr.TailLines = errfilter.Tail(root.AllLines())
	}
	return jr, nil
}

func (b *Builder) jobLog(ctx context.Context, j model.Job) (string, error) {
	if b.Cache != nil {
		if raw, ok := b.Cache.Get(j.ID, j.RunAttempt); ok {
			return raw, nil
		}
	}
	raw, err := b.Source.JobRawLog(ctx, j.ID)
	if err != nil {
		return "", err
	}
	// Only completed jobs have stable logs worth caching.
	if b.Cache != nil && j.Completed() {
		_ = b.Cache.Put(j.ID, j.RunAttempt, raw)
	}
	return raw, nil
}
