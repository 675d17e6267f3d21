package app

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"gostop.app/internal/geo"
	"gostop.app/internal/geocode"
	"gostop.app/internal/reach"
	"gostop.app/internal/transport"
	"gostop.app/internal/trip"
)

// HealthStatus is the body of /v1/healthcheck. Ready is false until a TMAP
// app key is configured, since neither geocoding nor routing can work
// without one.
type HealthStatus struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Sessions    int    `json:"sessions"`
	LandCheck   bool   `json:"land_check"`
	Ready       bool   `json:"ready"`
}

func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	ready := app.Config.Tmap.AppKey != ""

	status := HealthStatus{
		Status:      "available",
		Environment: app.Config.Env,
		Version:     app.Version,
		Sessions:    app.Sessions.Len(),
		LandCheck:   app.Config.LandCheck.Enabled,
		Ready:       ready,
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	app.writeJSON(w, r, code, status)
}

func sessionID(r *http.Request) string {
	return httprouter.ParamsFromContext(r.Context()).ByName("id")
}

func (app *Application) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	snap := app.Sessions.Create()
	w.Header().Set("Location", "/v1/sessions/"+snap.ID)
	app.writeJSON(w, r, http.StatusCreated, snap)
}

func (app *Application) showSessionHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := app.Sessions.Get(sessionID(r))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, snap)
}

func (app *Application) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.Sessions.Delete(sessionID(r)); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) toggleTransportHandler(w http.ResponseWriter, r *http.Request) {
	mode, err := transport.ParseMode(httprouter.ParamsFromContext(r.Context()).ByName("mode"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	snap, err := app.Trips.Toggle(sessionID(r), mode)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, snap)
}

func (app *Application) setTimeHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Minutes *int `json:"minutes"`
	}
	if err := app.readJSON(w, r, &input, false); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if input.Minutes == nil {
		app.badRequestResponse(w, r, errors.New("minutes is required"))
		return
	}

	snap, err := app.Trips.SetTime(sessionID(r), *input.Minutes)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, snap)
}

func (app *Application) locateHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Lat   *float64 `json:"lat"`
		Lng   *float64 `json:"lng"`
		Error string   `json:"error"`
	}
	if err := app.readJSON(w, r, &input, false); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var fix trip.Fix
	switch {
	case input.Error != "":
		fix.Err = input.Error
	case input.Lat != nil && input.Lng != nil:
		fix.Point = geo.Point{Lat: *input.Lat, Lng: *input.Lng}
	default:
		app.badRequestResponse(w, r, errors.New("either lat and lng or error is required"))
		return
	}

	out, err := app.Trips.Locate(r.Context(), sessionID(r), fix)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, out)
}

func (app *Application) startTripHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MinRadiusMeters float64 `json:"min_radius_m"`
		Route           bool    `json:"route"`
	}
	if err := app.readJSON(w, r, &input, true); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if input.MinRadiusMeters < 0 {
		app.badRequestResponse(w, r, errors.New("min_radius_m must not be negative"))
		return
	}

	out, err := app.Trips.Start(r.Context(), sessionID(r), trip.StartOptions{
		MinRadiusMeters: input.MinRadiusMeters,
		Route:           input.Route,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, out)
}

func (app *Application) overlayHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := app.Sessions.Get(sessionID(r))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	app.writeJSON(w, r, http.StatusOK, snap.Overlay.GeoJSON())
}

// reachResponse answers the stateless radius calculator.
type reachResponse struct {
	Selection    transport.Selection `json:"selection"`
	Minutes      int                 `json:"minutes"`
	RadiusMeters float64             `json:"radius_m"`
	Area         *reach.Area         `json:"area,omitempty"`
	Bounds       *geo.BoundingBox    `json:"bounds,omitempty"`
}

func (app *Application) reachHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Modes   []string   `json:"modes"`
		Minutes *int       `json:"minutes"`
		Center  *geo.Point `json:"center"`
	}
	if err := app.readJSON(w, r, &input, false); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sel, err := transport.ParseSelection(input.Modes)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	minutes := reach.DefaultMinutes
	if input.Minutes != nil {
		minutes = reach.ClampMinutes(*input.Minutes)
	}

	resp := reachResponse{
		Selection:    sel,
		Minutes:      minutes,
		RadiusMeters: reach.Radius(sel, minutes),
	}
	if input.Center != nil {
		if area, ok := reach.AreaFor(*input.Center, sel, minutes); ok {
			bounds := area.Bounds()
			resp.Area = &area
			resp.Bounds = &bounds
		}
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

// reverseGeocodeHandler resolves ?lat=&lng=. Points without an address get
// the coordinate fallback with resolved=false.
func (app *Application) reverseGeocodeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil || !geo.IsValidLatLon(lat, lng) {
		app.badRequestResponse(w, r, errors.New("lat and lng must be valid coordinates"))
		return
	}
	p := geo.Point{Lat: lat, Lng: lng}

	addr, err := app.Geocoder.ReverseGeocode(r.Context(), p)
	switch {
	case errors.Is(err, geocode.ErrUnresolvable):
		addr = geocode.FallbackAddress(p)
	case err != nil:
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, addr)
}
