package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

func TestClassify(t *testing.T) {
	rlHeaders := http.Header{}
	rlHeaders.Set("X-Ratelimit-Remaining", "0")
	rlHeaders.Set("X-Ratelimit-Reset", "1767225600")

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "401 is auth",
			err:  &ghAPI.HTTPError{StatusCode: http.StatusUnauthorized},
			want: ErrKindAuth,
		},
		{
			name: "404 is not found",
			err:  &ghAPI.HTTPError{StatusCode: http.StatusNotFound},
			want: ErrKindNotFound,
		},
		{
			name: "403 with exhausted quota is rate limit",
			err:  &ghAPI.HTTPError{StatusCode: http.StatusForbidden, Headers: rlHeaders},
			want: ErrKindRateLimit,
		},
		{
			name: "403 without quota headers is auth",
			err:  &ghAPI.HTTPError{StatusCode: http.StatusForbidden, Headers: http.Header{}},
			want: ErrKindAuth,
		},
		{
			name: "429 is rate limit",
			err:  &ghAPI.HTTPError{StatusCode: http.StatusTooManyRequests, Headers: http.Header{}},
			want: ErrKindRateLimit,
		},
		{
			name: "plain error is network",
			err:  fmt.Errorf("connection refused"),
			want: ErrKindNetwork,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", tt.err)
			if !IsKind(got, tt.want) {
				t.Errorf("classify() kind = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyPassesThroughTransportError(t *testing.T) {
	orig := &TransportError{Kind: ErrKindRateLimit, Op: "first op"}
	got := classify("second op", orig)

	var te *TransportError
	if !errors.As(got, &te) || te != orig {
		t.Errorf("classify() rewrapped an existing TransportError: %v", got)
	}
}

func TestRateLimitResetParsing(t *testing.T) {
	h := http.Header{}
	h.Set("X-Ratelimit-Remaining", "0")
	h.Set("X-Ratelimit-Reset", "1767225600")

	err := classify("op", &ghAPI.HTTPError{StatusCode: http.StatusForbidden, Headers: h})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("not a TransportError: %v", err)
	}
	if te.Reset.Unix() != 1767225600 {
		t.Errorf("Reset = %v, want epoch 1767225600", te.Reset)
	}
}
