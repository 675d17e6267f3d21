package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gostop.app/internal/config"
)

const (
	addressBody = `{"addressInfo":{"legalDong":"역삼동","roadName":"테헤란로","buildingName":"삼성생명빌딩"}}`
	routeBody   = `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[127.0317,37.4924]},"properties":{"totalDistance":1500,"totalTime":1200}},
		{"type":"Feature","geometry":{"type":"LineString","coordinates":[[127.0317,37.4924],[127.0400,37.5000]]},"properties":{}}]}`
)

// setupTmapServer fakes the TMAP endpoints used by the application.
func setupTmapServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/tmap/geo/reversegeocoding":
			// #nosec G104
			w.Write([]byte(addressBody))
		case strings.HasPrefix(r.URL.Path, "/tmap/routes"):
			// #nosec G104
			w.Write([]byte(routeBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	ts := setupTmapServer(t)
	cfg := config.NewConfig(4000, "testing")
	cfg.Tmap.BaseURL = ts.URL
	cfg.Tmap.AppKey = "test-key"
	cfg.MaxRetries = 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, logger, ts.Client(), nil, "test-version")
}

// do sends a request through the full handler chain.
func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r).WithContext(context.Background())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
