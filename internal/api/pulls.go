package api

import (
	"context"
	"fmt"

	"github.com/irskep/cimonitor/internal/model"
)

// GetPullRequest fetches a PR including its mergeability fields. GitHub
// computes mergeability lazily, so Mergeable may be null on the first
// request; this is a single point-in-time query and is not polled.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*model.PullRequest, error) {
	var pr model.PullRequest
	path := fmt.Sprintf("pulls/%d", number)
	if err := c.get(ctx, fmt.Sprintf("get pull request #%d", number), path, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}
