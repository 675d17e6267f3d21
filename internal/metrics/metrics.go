package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Trips
	TripsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gostop_trips_total",
		Help: "Random trip attempts by outcome (ok, not_ready, no_land_found, error)",
	}, []string{"outcome"})

	LandAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gostop_land_attempts",
		Help:    "Candidates drawn before a destination on land was accepted",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})

	ReachRadiusMeters = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gostop_reach_radius_meters",
		Help:    "Radius of computed reachable areas",
		Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
	})

	// Upstream providers
	ReverseGeocodeResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gostop_reverse_geocode_results_total",
		Help: "Reverse geocoding lookups by result (resolved, unresolvable, cache_hit, backoff, error)",
	}, []string{"result"})

	RouteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gostop_route_requests_total",
		Help: "Route lookups by mode and outcome",
	}, []string{"mode", "outcome"})

	OutgoingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gostop_outgoing_request_duration_seconds",
		Help:    "Latency of outgoing HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"url", "method", "status"})

	// Sessions
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gostop_active_sessions",
		Help: "Sessions currently held in memory",
	})

	StaleCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gostop_stale_completions_total",
		Help: "Async results discarded because a newer request superseded them",
	}, []string{"kind"})
)
