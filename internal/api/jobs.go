package api

import (
	"context"
	"fmt"

	"github.com/irskep/cimonitor/internal/model"
)

// ListJobs returns all jobs for the latest attempt of a run. Jobs arrive
// in scheduling order; their Steps slices are ordered by step number.
func (c *Client) ListJobs(ctx context.Context, runID int64) (*model.JobsResponse, error) {
	var resp model.JobsResponse
	path := fmt.Sprintf("actions/runs/%d/jobs?filter=latest&per_page=100", runID)
	if err := c.get(ctx, fmt.Sprintf("list jobs for run %d", runID), path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetJob(ctx context.Context, jobID int64) (*model.Job, error) {
	var job model.Job
	if err := c.get(ctx, fmt.Sprintf("get job %d", jobID), fmt.Sprintf("actions/jobs/%d", jobID), &job); err != nil {
		return nil, err
	}
	return &job, nil
}
