package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

// JobRawLog downloads the plain-text log for one job. GitHub answers the
// API path with a 302 redirect to a short-lived archive URL, so redirects
// are handled manually: the redirect target must be fetched without auth
// headers.
func (c *Client) JobRawLog(ctx context.Context, jobID int64) (string, error) {
	op := fmt.Sprintf("download log for job %d", jobID)

	httpClient, err := ghAPI.DefaultHTTPClient()
	if err != nil {
		return "", fmt.Errorf("create http client: %w", err)
	}
	httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/actions/jobs/%d/logs", c.owner, c.repo, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build log request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Kind: ErrKindNetwork, Op: op, wrapped: err}
	}

	if resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusTemporaryRedirect {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if location == "" {
			return "", &TransportError{Kind: ErrKindNetwork, Op: op, wrapped: fmt.Errorf("redirect with no Location header")}
		}
		redirectReq, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return "", fmt.Errorf("create redirect request: %w", err)
		}
		resp, err = http.DefaultClient.Do(redirectReq)
		if err != nil {
			return "", &TransportError{Kind: ErrKindNetwork, Op: op, wrapped: err}
		}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", &TransportError{Kind: ErrKindAuth, Op: op, wrapped: fmt.Errorf("status %d", resp.StatusCode)}
	case http.StatusNotFound:
		return "", &TransportError{Kind: ErrKindNotFound, Op: op, wrapped: fmt.Errorf("status %d", resp.StatusCode)}
	default:
		return "", &TransportError{Kind: ErrKindNetwork, Op: op, wrapped: fmt.Errorf("status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Kind: ErrKindNetwork, Op: op, wrapped: err}
	}
	return string(data), nil
}
