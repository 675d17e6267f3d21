package app

import (
	"database/sql"
	"log/slog"
	"net/http"

	"gostop.app/internal/config"
	"gostop.app/internal/directions"
	"gostop.app/internal/geocode"
	"gostop.app/internal/sampler"
	"gostop.app/internal/session"
	"gostop.app/internal/trip"
)

// Application wires the trip service, its providers and the session store
// behind the HTTP API.
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Sessions *session.Store
	Trips    *trip.Service
	Geocoder trip.Geocoder
	Version  string
}

// New creates and wires all dependencies for the Application. db may be
// nil, in which case reverse geocoding results are only cached in memory.
func New(cfg *config.Config, logger *slog.Logger, client *http.Client, db *sql.DB, version string) *Application {
	var cache geocode.Cache = geocode.NewMemoryCache()
	if db != nil {
		cache = &geocode.TieredCache{Fast: cache, Slow: geocode.NewSQLCache(db)}
	}

	geocoder := geocode.NewClient(cfg.Tmap.BaseURL, cfg.Tmap.AppKey, client,
		geocode.WithCache(cache),
		geocode.WithBackoffStore(config.NewBackoffStore()),
		geocode.WithMaxRetries(cfg.MaxRetries),
		geocode.WithLogger(logger),
	)
	router := directions.NewClient(cfg.Tmap.BaseURL, cfg.Tmap.AppKey, client, cfg.MaxRetries, logger)

	samplerOpts := []sampler.Option{
		sampler.WithMaxAttempts(cfg.LandCheck.MaxAttempts),
		sampler.WithLogger(logger),
	}
	if cfg.LandCheck.Enabled {
		samplerOpts = append(samplerOpts, sampler.WithLandChecker(geocoder))
	}

	sessions := session.NewStore(cfg.SessionTTL(), logger)
	trips := trip.NewService(sessions, geocoder, router, sampler.New(samplerOpts...), logger)
	trips.Timeout = cfg.RequestTimeout()

	return &Application{
		Config:   cfg,
		Logger:   logger,
		Sessions: sessions,
		Trips:    trips,
		Geocoder: geocoder,
		Version:  version,
	}
}
