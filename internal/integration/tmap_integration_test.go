//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"gostop.app/internal/directions"
	"gostop.app/internal/geo"
	"gostop.app/internal/geocode"
	"gostop.app/internal/sampler"
)

var (
	gangnam   = geo.Point{Lat: 37.49241689559544, Lng: 127.03171389453507}
	yellowSea = geo.Point{Lat: 36.5, Lng: 125.5}
)

func client() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

func TestTmapReverseGeocode(t *testing.T) {
	c := geocode.NewClient(cfg.Tmap.BaseURL, cfg.Tmap.AppKey, client())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	addr, err := c.ReverseGeocode(ctx, gangnam)
	if err != nil {
		t.Fatalf("reverse geocode failed: %v", err)
	}
	if !addr.Resolved || addr.Text == "" {
		t.Errorf("expected a resolved address, got %+v", addr)
	}
	t.Logf("address: %s", addr.Text)

	land, err := c.IsLand(ctx, yellowSea)
	if err != nil {
		t.Fatalf("land check failed: %v", err)
	}
	if land {
		t.Errorf("expected %s to be classified as water", yellowSea)
	}
}

func TestTmapRoutes(t *testing.T) {
	c := directions.NewClient(cfg.Tmap.BaseURL, cfg.Tmap.AppKey, client(), cfg.MaxRetries, nil)
	dest := geo.Destination(gangnam, 45, 1500)

	for _, mode := range []directions.Mode{directions.Driving, directions.Walking} {
		t.Run(string(mode), func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			route, err := c.Route(ctx, gangnam, dest, mode)
			if err != nil {
				t.Fatalf("route failed: %v", err)
			}
			if len(route.Points) < 2 || route.DistanceMeters <= 0 {
				t.Errorf("unexpected route: %d points, %.0f m", len(route.Points), route.DistanceMeters)
			}
		})
	}
}

func TestLandCheckedDestination(t *testing.T) {
	g := geocode.NewClient(cfg.Tmap.BaseURL, cfg.Tmap.AppKey, client(), geocode.WithCache(geocode.NewMemoryCache()))
	s := sampler.New(sampler.WithLandChecker(g), sampler.WithMaxAttempts(cfg.LandCheck.MaxAttempts))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Incheon coast: a large share of the disk is sea.
	res, err := s.Destination(ctx, geo.Point{Lat: 37.45, Lng: 126.6}, 0, 10000)
	if err != nil {
		t.Fatalf("destination failed: %v", err)
	}
	t.Logf("accepted %s after %d attempts", res.Point, res.Attempts)
}
