package config

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestDoWithBackoff(t *testing.T) {
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = 200 * time.Millisecond })

	tests := []struct {
		name          string
		maxRetries    int
		ctxTimeout    time.Duration
		handler       func(req *http.Request) (*http.Response, error)
		expectErr     string
		expectCalls   int
		expectStatus  int
		expectSuccess bool
	}{
		{
			name:       "success on first try",
			maxRetries: 3,
			handler: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 200, Body: http.NoBody}, nil
			},
			expectCalls:   1,
			expectStatus:  200,
			expectSuccess: true,
		},
		{
			name:       "max retries exceeded",
			maxRetries: 2,
			handler: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("mock error")
			},
			expectErr:   "max retries exceeded",
			expectCalls: 3,
		},
		{
			name:       "client error is not retried",
			maxRetries: 3,
			handler: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 400, Body: http.NoBody}, nil
			},
			expectCalls:   1,
			expectStatus:  400,
			expectSuccess: true,
		},
		{
			name:       "throttled response returned after last attempt",
			maxRetries: 1,
			handler: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 429, Body: http.NoBody}, nil
			},
			expectCalls:   2,
			expectStatus:  429,
			expectSuccess: true,
		},
		{
			name:       "context cancelled before success",
			maxRetries: 100,
			ctxTimeout: 20 * time.Millisecond,
			handler: func(req *http.Request) (*http.Response, error) {
				time.Sleep(5 * time.Millisecond)
				return nil, errors.New("fail")
			},
			expectErr:   "context deadline exceeded",
			expectCalls: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRoundTripper{handler: tt.handler}
			client := &http.Client{Transport: mock}
			req, _ := http.NewRequest("GET", "http://example.com", nil)

			ctx := context.Background()
			if tt.ctxTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.ctxTimeout)
				defer cancel()
			}

			resp, err := DoWithBackoff(ctx, client, req, tt.maxRetries)

			if tt.expectErr == "" && err != nil {
				t.Fatalf("expected success, got error: %v", err)
			}
			if tt.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
					t.Fatalf("expected error containing %q, got %v", tt.expectErr, err)
				}
			}
			if tt.expectSuccess {
				if resp == nil {
					t.Fatalf("expected response, got nil")
				}
				if resp.StatusCode != tt.expectStatus {
					t.Errorf("expected status %d, got %d", tt.expectStatus, resp.StatusCode)
				}
			}

			if tt.expectCalls >= 0 && mock.calls != tt.expectCalls {
				t.Errorf("expected %d calls, got %d", tt.expectCalls, mock.calls)
			}
		})
	}
}

func TestDoWithBackoffReplaysBody(t *testing.T) {
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = 200 * time.Millisecond })

	var bodies []string
	mock := &mockRoundTripper{handler: func(req *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(req.Body)
		bodies = append(bodies, string(b))
		if len(bodies) < 3 {
			return &http.Response{StatusCode: 503, Body: http.NoBody}, nil
		}
		return &http.Response{StatusCode: 200, Body: http.NoBody}, nil
	}}
	client := &http.Client{Transport: mock}
	req, _ := http.NewRequest("POST", "http://example.com", strings.NewReader(`{"a":1}`))

	resp, err := DoWithBackoff(context.Background(), client, req, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for i, b := range bodies {
		if b != `{"a":1}` {
			t.Errorf("attempt %d sent body %q", i+1, b)
		}
	}
}
