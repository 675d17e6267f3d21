// Package directions fetches a route polyline between two points from the
// TMAP car and pedestrian routing APIs.
package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"gostop.app/internal/config"
	"gostop.app/internal/geo"
	"gostop.app/internal/metrics"
	"gostop.app/internal/transport"
)

// Provider names the routing API in logs and error reports.
const Provider = "tmap-routes"

var ErrNoRoute = errors.New("no route between the points")

type Mode string

const (
	Driving Mode = "driving"
	Walking Mode = "walking"
)

// ModeFor picks driving when the car is selected and walking otherwise.
func ModeFor(sel transport.Selection) Mode {
	if sel.Has(transport.Car) {
		return Driving
	}
	return Walking
}

func (m Mode) path() string {
	if m == Driving {
		return "/tmap/routes?version=1"
	}
	return "/tmap/routes/pedestrian?version=1"
}

// Route is an ordered polyline with totals reported by the provider.
type Route struct {
	Mode            Mode        `json:"mode"`
	Points          []geo.Point `json:"points"`
	DistanceMeters  float64     `json:"distance_m"`
	DurationSeconds float64     `json:"duration_s"`
}

type routeRequest struct {
	StartX       string `json:"startX"`
	StartY       string `json:"startY"`
	EndX         string `json:"endX"`
	EndY         string `json:"endY"`
	ReqCoordType string `json:"reqCoordType"`
	ResCoordType string `json:"resCoordType"`
	StartName    string `json:"startName"`
	EndName      string `json:"endName"`
}

type featureCollection struct {
	Features []struct {
		Geometry struct {
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			TotalDistance *float64 `json:"totalDistance"`
			TotalTime     *float64 `json:"totalTime"`
		} `json:"properties"`
	} `json:"features"`
}

type Client struct {
	baseURL    string
	appKey     string
	httpClient *http.Client
	maxRetries int
	logger     *slog.Logger
}

func NewClient(baseURL, appKey string, httpClient *http.Client, maxRetries int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		appKey:     appKey,
		httpClient: httpClient,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Route requests a path from origin to dest.
func (c *Client) Route(ctx context.Context, origin, dest geo.Point, mode Mode) (Route, error) {
	route, err := c.route(ctx, origin, dest, mode)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNoRoute):
		outcome = "no_route"
	case err != nil:
		outcome = "error"
	}
	metrics.RouteRequests.WithLabelValues(string(mode), outcome).Inc()
	return route, err
}

func (c *Client) route(ctx context.Context, origin, dest geo.Point, mode Mode) (Route, error) {
	if !origin.Valid() || !dest.Valid() {
		return Route{}, fmt.Errorf("route %s -> %s: invalid coordinates", origin, dest)
	}

	body, err := json.Marshal(routeRequest{
		StartX:       formatCoord(origin.Lng),
		StartY:       formatCoord(origin.Lat),
		EndX:         formatCoord(dest.Lng),
		EndY:         formatCoord(dest.Lat),
		ReqCoordType: "WGS84GEO",
		ResCoordType: "WGS84GEO",
		StartName:    "출발지",
		EndName:      "도착지",
	})
	if err != nil {
		return Route{}, fmt.Errorf("encode route request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+mode.path(), bytes.NewReader(body))
	if err != nil {
		return Route{}, fmt.Errorf("build route request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("appKey", c.appKey)

	resp, err := config.DoWithBackoff(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return Route{}, fmt.Errorf("execute route request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusBadRequest, http.StatusNotFound:
		return Route{}, fmt.Errorf("%w: status %d", ErrNoRoute, resp.StatusCode)
	default:
		return Route{}, fmt.Errorf("unexpected route status: %d", resp.StatusCode)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return Route{}, fmt.Errorf("decode route response: %w", err)
	}

	route := Route{Mode: mode}
	for i, f := range fc.Features {
		if i == 0 {
			if f.Properties.TotalDistance != nil {
				route.DistanceMeters = *f.Properties.TotalDistance
			}
			if f.Properties.TotalTime != nil {
				route.DurationSeconds = *f.Properties.TotalTime
			}
		}
		if f.Geometry.Type != "LineString" {
			continue
		}
		var coords [][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
			return Route{}, fmt.Errorf("decode line %d: %w", i, err)
		}
		for _, xy := range coords {
			if len(xy) < 2 {
				continue
			}
			p := geo.Point{Lat: xy[1], Lng: xy[0]}
			if n := len(route.Points); n > 0 && route.Points[n-1] == p {
				continue
			}
			route.Points = append(route.Points, p)
		}
	}

	if len(route.Points) < 2 {
		return Route{}, ErrNoRoute
	}

	c.logger.Debug("route fetched", "mode", mode, "points", len(route.Points), "distance_m", route.DistanceMeters)
	return route, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
