package app

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"gostop.app/internal/metrics"
)

// latencyTrackingRoundTripper records the duration of every outgoing
// request in metrics.OutgoingLatency.
type latencyTrackingRoundTripper struct {
	next http.RoundTripper
}

func (rt *latencyTrackingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	duration := time.Since(start).Seconds()

	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	// Query strings carry coordinates and the app key; keep them out of labels.
	safeURL := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	metrics.OutgoingLatency.WithLabelValues(
		safeURL,
		req.Method,
		status,
	).Observe(duration)

	return resp, err
}

// NewPooledClient returns the HTTP client shared by the TMAP clients.
//
// Connections are kept alive between the bursts of reverse geocoding calls
// a land-checked trip makes. Dial and TLS handshakes are capped at 5s and
// the whole request at 10s so a stalled provider fails a trip quickly.
func NewPooledClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &http.Client{
		Transport: &latencyTrackingRoundTripper{next: transport},
		Timeout:   10 * time.Second,
	}
}
