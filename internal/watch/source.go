package watch

import (
	"context"
	"fmt"

	"github.com/irskep/cimonitor/internal/api"
	"github.com/irskep/cimonitor/internal/model"
)

// RunSource polls one workflow run through the GitHub API, refetching
// the run and its job list wholesale on every call.
type RunSource struct {
	client *api.Client
	runID  int64
}

func NewRunSource(client *api.Client, runID int64) *RunSource {
	return &RunSource{client: client, runID: runID}
}

func (s *RunSource) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	run, err := s.client.GetRun(ctx, s.runID)
	if err != nil {
		return model.Snapshot{}, err
	}
	jobs, err := s.client.ListJobs(ctx, s.runID)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{Run: *run, Jobs: jobs.Jobs}, nil
}

// CommitSource polls the most recent run for a commit SHA. The run may
// not exist yet right after a push; an empty snapshot is returned so the
// session keeps waiting instead of failing.
type CommitSource struct {
	client *api.Client
	sha    string
}

func NewCommitSource(client *api.Client, sha string) *CommitSource {
	return &CommitSource{client: client, sha: sha}
}

func (s *CommitSource) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	runs, err := s.client.ListRuns(ctx, api.RunsFilter{HeadSHA: s.sha, PerPage: 10})
	if err != nil {
		return model.Snapshot{}, err
	}
	if len(runs.Runs) == 0 {
		return model.Snapshot{Run: model.Run{Status: model.RunStatusPending, HeadSHA: s.sha}}, nil
	}
	run := runs.Runs[0]
	jobs, err := s.client.ListJobs(ctx, run.ID)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{Run: run, Jobs: jobs.Jobs}, nil
}

// BranchSource polls the most recent run on a branch, for targets where
// no head SHA is known locally.
type BranchSource struct {
	client *api.Client
	branch string
}

func NewBranchSource(client *api.Client, branch string) *BranchSource {
	return &BranchSource{client: client, branch: branch}
}

func (s *BranchSource) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	runs, err := s.client.ListRuns(ctx, api.RunsFilter{Branch: s.branch, PerPage: 10})
	if err != nil {
		return model.Snapshot{}, err
	}
	if len(runs.Runs) == 0 {
		return model.Snapshot{Run: model.Run{Status: model.RunStatusPending, HeadBranch: s.branch}}, nil
	}
	run := runs.Runs[0]
	jobs, err := s.client.ListJobs(ctx, run.ID)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{Run: run, Jobs: jobs.Jobs}, nil
}

// JobDispatcher requests job-level reruns through the API. GitHub only
// accepts a job rerun once its run has completed; when the job-level
// request is rejected for that reason the run-level rerun-failed-jobs
// endpoint is tried instead.
type JobDispatcher struct {
	client *api.Client
}

func NewJobDispatcher(client *api.Client) *JobDispatcher {
	return &JobDispatcher{client: client}
}

func (d *JobDispatcher) RetryJob(ctx context.Context, job model.Job) error {
	err := d.client.RerunJob(ctx, job.ID)
	if err == nil {
		return nil
	}
	if api.IsKind(err, api.ErrKindAuth) || api.IsKind(err, api.ErrKindNotFound) {
		if ferr := d.client.RerunFailedJobs(ctx, job.RunID); ferr == nil {
			return nil
		}
	}
	return fmt.Errorf("retry job %q: %w", job.Name, err)
}
