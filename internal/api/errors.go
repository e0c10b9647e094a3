package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

// ErrorKind classifies transport failures so callers can react without
// string matching.
type ErrorKind int

const (
	ErrKindNetwork ErrorKind = iota
	ErrKindAuth
	ErrKindNotFound
	ErrKindRateLimit
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindAuth:
		return "auth"
	case ErrKindNotFound:
		return "not found"
	case ErrKindRateLimit:
		return "rate limited"
	default:
		return "network"
	}
}

// TransportError wraps a failed GitHub API call with its classification.
// Rate-limit errors carry the reset time from the response headers.
type TransportError struct {
	Kind    ErrorKind
	Op      string
	Reset   time.Time
	wrapped error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.wrapped)
}

func (e *TransportError) Unwrap() error { return e.wrapped }

// IsKind reports whether err is a TransportError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == kind
}

// classify turns a go-gh error into a TransportError. Anything that is
// not an HTTP-level failure is treated as a network problem.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *TransportError
	if errors.As(err, &existing) {
		return err
	}
	te := &TransportError{Kind: ErrKindNetwork, Op: op, wrapped: err}

	var httpErr *ghAPI.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized:
			te.Kind = ErrKindAuth
		case http.StatusNotFound:
			te.Kind = ErrKindNotFound
		case http.StatusForbidden, http.StatusTooManyRequests:
			if isRateLimited(httpErr) {
				te.Kind = ErrKindRateLimit
				te.Reset = rateLimitReset(httpErr)
			} else {
				te.Kind = ErrKindAuth
			}
		}
	}
	return te
}

func isRateLimited(httpErr *ghAPI.HTTPError) bool {
	if httpErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return httpErr.Headers.Get("X-Ratelimit-Remaining") == "0"
}

func rateLimitReset(httpErr *ghAPI.HTTPError) time.Time {
	raw := httpErr.Headers.Get("X-Ratelimit-Reset")
	epoch, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(epoch, 0)
}
