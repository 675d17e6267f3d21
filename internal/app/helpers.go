package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/julienschmidt/httprouter"
	"gostop.app/internal/geocode"
	"gostop.app/internal/report"
	"gostop.app/internal/sampler"
	"gostop.app/internal/session"
	"gostop.app/internal/transport"
	"gostop.app/internal/trip"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (app *Application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.Logger.Error("encode response failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, kind, msg string) {
	app.writeJSON(w, r, status, errorBody{Error: msg, Kind: kind})
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, "invalid_request", err.Error())
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "not_found", "the requested resource could not be found")
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, "method_not_allowed",
		fmt.Sprintf("the %s method is not supported for this resource", r.Method))
}

// handleError maps domain errors to responses. Anything unrecognised is
// logged, reported to Sentry and answered with a generic 500.
func (app *Application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		app.errorResponse(w, r, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, transport.ErrUnknownMode):
		app.errorResponse(w, r, http.StatusBadRequest, "unknown_mode", err.Error())
	case errors.Is(err, sampler.ErrBadAnnulus):
		app.errorResponse(w, r, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, trip.ErrLocationUnavailable):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, "location_unavailable", err.Error())
	case errors.Is(err, trip.ErrNotReady):
		app.errorResponse(w, r, http.StatusConflict, "not_ready", err.Error())
	case errors.Is(err, sampler.ErrNoLandFound):
		app.errorResponse(w, r, http.StatusServiceUnavailable, "no_land_found", err.Error())
	case errors.Is(err, geocode.ErrProviderBackoff):
		app.errorResponse(w, r, http.StatusServiceUnavailable, "provider_unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		app.errorResponse(w, r, http.StatusGatewayTimeout, "timeout", "the request took too long to complete")
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	tags := map[string]string{"method": r.Method, "path": r.URL.Path}
	if id := httprouter.ParamsFromContext(r.Context()).ByName("id"); id != "" {
		tags["session_id"] = id
	}
	app.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
		Tags:  tags,
		Level: sentry.LevelError,
	})
	app.errorResponse(w, r, http.StatusInternalServerError, "internal",
		"the server encountered a problem and could not process your request")
}

// readJSON decodes a single JSON object from the body. An empty body is
// allowed when allowEmpty is set and leaves dst untouched.
func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.Is(err, io.EOF):
			if allowEmpty {
				return nil
			}
			return errors.New("body must not be empty")
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &typeError):
			if typeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", typeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", typeError.Offset)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}
