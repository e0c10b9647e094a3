package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/irskep/cimonitor/internal/model"
)

type RunsFilter struct {
	Branch  string
	HeadSHA string
	Event   string
	PerPage int
}

func (f RunsFilter) QueryString() string {
	v := url.Values{}
	if f.Branch != "" {
		v.Set("branch", f.Branch)
	}
	if f.HeadSHA != "" {
		v.Set("head_sha", f.HeadSHA)
	}
	if f.Event != "" {
		v.Set("event", f.Event)
	}
	if f.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(f.PerPage))
	} else {
		v.Set("per_page", "30")
	}
	return "?" + v.Encode()
}

func (c *Client) ListRuns(ctx context.Context, filter RunsFilter) (*model.RunsResponse, error) {
	var resp model.RunsResponse
	if err := c.get(ctx, "list runs", "actions/runs"+filter.QueryString(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetRun(ctx context.Context, runID int64) (*model.Run, error) {
	var run model.Run
	if err := c.get(ctx, fmt.Sprintf("get run %d", runID), fmt.Sprintf("actions/runs/%d", runID), &run); err != nil {
		return nil, err
	}
	return &run, nil
}
