// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the external providers.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// RetryBaseDelay is the first backoff delay; later delays grow
// exponentially with jitter. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const defaultAttempts = 3

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.URL, e.StatusCode)
}

// IsRetryable reports whether err is transient: HTTP 429, 500, 502, 503,
// 504 or a network error. Other 4xx responses and context cancellation are
// permanent.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}

// DoWithRetry executes req and returns the body of a 200 response. Transient
// failures are retried up to attempts times in total (default 3 when
// attempts <= 0). Only idempotent requests should be passed. onRetry, when
// non-nil, is called before each new attempt.
//
// The returned error is the last attempt's error, so callers can match a
// *StatusError with errors.As. If ctx is cancelled the context error is
// returned.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, attempts int, onRetry func(n uint, err error)) ([]byte, error) {
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	var lastErr error
	body, err := retry.DoWithData(
		func() ([]byte, error) {
			b, err := fetch(ctx, client, req)
			lastErr = err
			return b, err
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(RetryBaseDelay),
		retry.MaxJitter(RetryBaseDelay/2),
		retry.RetryIf(IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			if onRetry != nil {
				onRetry(n, err)
			}
		}),
	)
	if err == nil {
		return body, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, err
}

func fetch(ctx context.Context, client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req.Clone(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: endpoint(req), StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// endpoint returns the request URL without its query, which may carry the
// mailto address or an API key.
func endpoint(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
