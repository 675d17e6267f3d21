package config

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

// retryBaseDelay is the first wait between attempts; it doubles each retry.
var retryBaseDelay = 200 * time.Millisecond

var ErrMaxRetries = errors.New("max retries exceeded")

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithBackoff sends req, retrying transport errors and 429/5xx responses
// up to maxRetries times with jittered exponential backoff. Request bodies
// are replayed through req.GetBody. When the final attempt still returns a
// retryable status the response is handed back for the caller to inspect.
func DoWithBackoff(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	delay := retryBaseDelay
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewind request body: %w", err)
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err == nil && (!retryableStatus(resp.StatusCode) || attempt == maxRetries) {
			return resp, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("upstream returned status %d", resp.StatusCode)
			resp.Body.Close()
		}

		if attempt == maxRetries {
			break
		}

		wait := delay + time.Duration(rand.Float64()*float64(delay)*JITTER_FACTOR)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, maxRetries+1, lastErr)
}
