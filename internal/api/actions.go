package api

import (
	"context"
	"fmt"
)

type rerunConfig struct {
	EnableDebugLogging bool `json:"enable_debug_logging,omitempty"`
}

// RerunJob re-triggers a single job. GitHub rejects this with 403 when
// the job is not in a retryable state (e.g. its run is still in
// progress); callers treat dispatch failure as best-effort.
func (c *Client) RerunJob(ctx context.Context, jobID int64) error {
	path := fmt.Sprintf("actions/jobs/%d/rerun", jobID)
	return c.post(ctx, fmt.Sprintf("rerun job %d", jobID), path, rerunConfig{}, nil)
}

// RerunFailedJobs re-triggers every failed job of a run in one request.
func (c *Client) RerunFailedJobs(ctx context.Context, runID int64) error {
	path := fmt.Sprintf("actions/runs/%d/rerun-failed-jobs", runID)
	return c.post(ctx, fmt.Sprintf("rerun failed jobs for run %d", runID), path, rerunConfig{}, nil)
}

func (c *Client) CancelRun(ctx context.Context, runID int64) error {
	path := fmt.Sprintf("actions/runs/%d/cancel", runID)
	return c.post(ctx, fmt.Sprintf("cancel run %d", runID), path, nil, nil)
}
