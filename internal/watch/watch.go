// Package watch polls a run until it reaches a terminal state,
// optionally re-triggering failed jobs to shake out flaky failures.
package watch

import (
	"context"
	"time"

	"github.com/irskep/cimonitor/internal/model"
)

const (
	DefaultInterval = 10 * time.Second
	DefaultTimeout  = 20 * time.Minute
	// DefaultGrace is how long to wait before the first poll. A run
	// pushed moments ago may not be registered yet, and reporting "no
	// runs found" for it would be wrong.
	DefaultGrace = 5 * time.Second
)

// StatusSource produces a fresh snapshot of the watched run. Each call
// rebuilds the whole view; nothing is merged incrementally.
type StatusSource interface {
	FetchSnapshot(ctx context.Context) (model.Snapshot, error)
}

// Dispatcher requests re-execution of a failed job. The returned error
// reflects only whether the request was accepted; the rerun itself is
// observed through subsequent polls.
type Dispatcher interface {
	RetryJob(ctx context.Context, job model.Job) error
}

type Config struct {
	Interval   time.Duration
	Timeout    time.Duration
	Grace      time.Duration
	FailFast   bool
	MaxRetries int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	// Grace zero is a valid choice (poll immediately); callers that want
	// the default pass DefaultGrace explicitly.
	if c.Grace < 0 {
		c.Grace = 0
	}
	return c
}

// RetryState tracks retry accounting for one job across the lifetime of
// a single watch session. Keyed by job name because GitHub assigns a new
// job ID on every rerun.
type RetryState struct {
	Count          int
	Max            int
	LastConclusion model.RunConclusion
}

// Exhausted reports that the job failed after its full retry budget and
// should be reported as a genuine, non-flaky failure.
func (rs RetryState) Exhausted() bool {
	return rs.Count >= rs.Max
}

// Hooks let callers observe the session without owning the loop.
// Any field may be nil.
type Hooks struct {
	OnPoll       func(snap model.Snapshot)
	OnRetry      func(job model.Job, attempt int)
	OnRetryError func(job model.Job, err error)
}

// Result is the terminal state of a watch session.
type Result struct {
	Outcome model.Outcome
	Final   model.Snapshot
	// Retries maps job name to its retry state for every job that was
	// re-triggered at least once or exhausted its budget.
	Retries map[string]RetryState
	Polls   int
}

// Session owns one watch invocation: the polling loop, retry accounting,
// and the terminal decision. It is created per invocation and discarded
// with it; nothing is shared across sessions.
type Session struct {
	src      StatusSource
	dispatch Dispatcher
	cfg      Config
	hooks    Hooks
	retries  map[string]*RetryState

	// sleep is swapped out in tests to avoid real waiting.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewSession(src StatusSource, dispatch Dispatcher, cfg Config, hooks Hooks) *Session {
	return &Session{
		src:      src,
		dispatch: dispatch,
		cfg:      cfg.withDefaults(),
		hooks:    hooks,
		retries:  make(map[string]*RetryState),
		sleep:    sleepCtx,
		now:      time.Now,
	}
}

// Run drives the session to a terminal state: all jobs done, fail-fast
// tripped, the wall-clock ceiling exceeded, or the context cancelled.
// Transport errors from the source abort the session.
func (s *Session) Run(ctx context.Context) (Result, error) {
	res := Result{Outcome: model.OutcomePending}

	if s.cfg.Grace > 0 {
		if err := s.sleep(ctx, s.cfg.Grace); err != nil {
			res.Outcome = model.OutcomeCancelled
			return s.finish(res), err
		}
	}

	deadline := s.now().Add(s.cfg.Timeout)

	for {
		snap, err := s.src.FetchSnapshot(ctx)
		if err != nil {
			return s.finish(res), err
		}
		res.Final = snap
		res.Polls++
		if s.hooks.OnPoll != nil {
			s.hooks.OnPoll(snap)
		}

		retried := s.retryFailed(ctx, snap)

		if outcome, terminal := s.evaluate(snap, retried); terminal {
			res.Outcome = outcome
			return s.finish(res), nil
		}

		if s.now().After(deadline) {
			res.Outcome = model.OutcomeTimedOut
			return s.finish(res), nil
		}

		if err := s.sleep(ctx, s.cfg.Interval); err != nil {
			res.Outcome = model.OutcomeCancelled
			return s.finish(res), err
		}
	}
}

// retryFailed dispatches retries for failed jobs with budget remaining
// and returns the names of jobs whose rerun request was accepted. A job
// with an accepted rerun is treated as pending again.
func (s *Session) retryFailed(ctx context.Context, snap model.Snapshot) map[string]bool {
	retried := make(map[string]bool)
	if s.cfg.MaxRetries <= 0 || s.dispatch == nil {
		return retried
	}

	for _, job := range snap.FailedJobs() {
		rs := s.retries[job.Name]
		if rs == nil {
			rs = &RetryState{Max: s.cfg.MaxRetries}
			s.retries[job.Name] = rs
		}
		rs.LastConclusion = job.Conclusion
		if rs.Exhausted() {
			continue
		}

		if err := s.dispatch.RetryJob(ctx, job); err != nil {
			// Dispatch failed: the count stays put and the original
			// failure stands.
			if s.hooks.OnRetryError != nil {
				s.hooks.OnRetryError(job, err)
			}
			continue
		}
		rs.Count++
		retried[job.Name] = true
		if s.hooks.OnRetry != nil {
			s.hooks.OnRetry(job, rs.Count)
		}
	}
	return retried
}

// evaluate decides whether the session is terminal given the latest
// snapshot and the jobs just re-triggered (which count as pending).
func (s *Session) evaluate(snap model.Snapshot, retried map[string]bool) (model.Outcome, bool) {
	if s.cfg.FailFast {
		for _, job := range snap.FailedJobs() {
			if !retried[job.Name] {
				return model.OutcomeFailure, true
			}
		}
	}

	if len(retried) > 0 {
		return model.OutcomePending, false
	}

	outcome := snap.Outcome()
	if outcome == model.OutcomePending {
		return outcome, false
	}
	return outcome, true
}

func (s *Session) finish(res Result) Result {
	res.Retries = make(map[string]RetryState, len(s.retries))
	for name, rs := range s.retries {
		res.Retries[name] = *rs
	}
	return res
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
