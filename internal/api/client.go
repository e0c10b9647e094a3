// Package api is a thin typed layer over the GitHub REST API, using
// go-gh so authentication comes from the gh CLI's own config.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

// rateLimitRetries bounds automatic retries of a single request after a
// rate-limit response. Other transport errors are never retried here.
const rateLimitRetries = 2

type Client struct {
	rest  *ghAPI.RESTClient
	owner string
	repo  string

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(owner, repo string) (*Client, error) {
	rest, err := ghAPI.DefaultRESTClient()
	if err != nil {
		return nil, fmt.Errorf("create GitHub client (is gh authenticated?): %w", err)
	}
	return &Client{rest: rest, owner: owner, repo: repo, sleep: sleepCtx}, nil
}

func (c *Client) Owner() string { return c.owner }
func (c *Client) Repo() string  { return c.repo }

func (c *Client) repoPath(path string) string {
	return fmt.Sprintf("repos/%s/%s/%s", c.owner, c.repo, path)
}

func (c *Client) get(ctx context.Context, op, path string, result interface{}) error {
	return c.withRateLimitRetry(ctx, op, func() error {
		return c.rest.Get(c.repoPath(path), result)
	})
}

func (c *Client) post(ctx context.Context, op, path string, body interface{}, result interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}
	return c.withRateLimitRetry(ctx, op, func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		return c.rest.Post(c.repoPath(path), reader, result)
	})
}

// withRateLimitRetry runs fn, classifying any failure. Rate-limit
// responses are retried a bounded number of times after waiting for the
// reset (or a short flat delay when the server gives no reset time).
func (c *Client) withRateLimitRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = classify(op, fn())
		if err == nil || !IsKind(err, ErrKindRateLimit) || attempt >= rateLimitRetries {
			return err
		}
		if werr := c.sleep(ctx, rateLimitDelay(err)); werr != nil {
			return werr
		}
	}
}

func rateLimitDelay(err error) time.Duration {
	var te *TransportError
	if errors.As(err, &te) && !te.Reset.IsZero() {
		if d := time.Until(te.Reset); d > 0 {
			return d
		}
	}
	return 30 * time.Second
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
