package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"gostop.app/internal/middleware"
)

// Routes registers every endpoint and wraps the router with request
// logging, Sentry and security headers.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second))

	router.HandlerFunc(http.MethodPost, "/v1/sessions", app.createSessionHandler)
	router.HandlerFunc(http.MethodGet, "/v1/sessions/:id", app.showSessionHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/sessions/:id", app.deleteSessionHandler)
	router.HandlerFunc(http.MethodPost, "/v1/sessions/:id/transports/:mode", app.toggleTransportHandler)
	router.HandlerFunc(http.MethodPut, "/v1/sessions/:id/time", app.setTimeHandler)
	router.HandlerFunc(http.MethodPost, "/v1/sessions/:id/location", app.locateHandler)
	router.HandlerFunc(http.MethodPost, "/v1/sessions/:id/trips", app.startTripHandler)
	router.HandlerFunc(http.MethodGet, "/v1/sessions/:id/overlay", app.overlayHandler)

	router.HandlerFunc(http.MethodPost, "/v1/reach", app.reachHandler)
	router.HandlerFunc(http.MethodGet, "/v1/geocode/reverse", app.reverseGeocodeHandler)

	handler := middleware.SentryMiddleware(router)
	handler = middleware.RequestLogger(app.Logger)(handler)
	return middleware.SecurityHeaders(handler)
}
