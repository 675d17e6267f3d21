// Package trip orchestrates a session: locating the user, keeping the reach
// circle in sync with the chosen modes and time, and starting random trips.
package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gostop.app/internal/directions"
	"gostop.app/internal/geo"
	"gostop.app/internal/geocode"
	"gostop.app/internal/metrics"
	"gostop.app/internal/reach"
	"gostop.app/internal/report"
	"gostop.app/internal/sampler"
	"gostop.app/internal/session"
	"gostop.app/internal/transport"
)

type Geocoder interface {
	ReverseGeocode(ctx context.Context, p geo.Point) (geocode.Address, error)
}

type Router interface {
	Route(ctx context.Context, origin, dest geo.Point, mode directions.Mode) (directions.Route, error)
}

type DestinationSampler interface {
	Destination(ctx context.Context, center geo.Point, minMeters, maxMeters float64) (sampler.Result, error)
}

type Service struct {
	Sessions *session.Store
	Geocoder Geocoder
	Router   Router
	Sampler  DestinationSampler
	Logger   *slog.Logger

	// Timeout bounds Locate and Start, upstream calls included. Zero means
	// only the caller's context applies.
	Timeout time.Duration
}

func NewService(sessions *session.Store, geocoder Geocoder, router Router, s DestinationSampler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Sessions: sessions,
		Geocoder: geocoder,
		Router:   router,
		Sampler:  s,
		Logger:   logger,
	}
}

// Fix is a device position report: either a point or the reason there is
// none.
type Fix struct {
	Point geo.Point
	Err   string
}

// Outcome is the session after an asynchronous operation. Stale is set when
// a newer request of the same kind finished first and this result was
// discarded.
type Outcome struct {
	Session session.Snapshot `json:"session"`
	Trip    *sampler.Result  `json:"trip,omitempty"`
	Notices []Notice         `json:"notices,omitempty"`
	Stale   bool             `json:"stale,omitempty"`
}

// StartOptions tune a random trip.
type StartOptions struct {
	MinRadiusMeters float64
	Route           bool
}

// Toggle flips a transport mode. A drawn route for a mode that no longer
// applies is removed; the destination stays.
func (s *Service) Toggle(id string, mode transport.Mode) (session.Snapshot, error) {
	return s.Sessions.Update(id, func(sess *session.Session) error {
		before, _ := sess.Area()
		sess.Selection = transport.Toggle(sess.Selection, mode)
		if sess.Route != nil && sess.Route.Mode != directions.ModeFor(sess.Selection) {
			sess.Route = nil
			sess.Overlay.ClearRoute()
		}
		s.refresh(sess, before)
		return nil
	})
}

func (s *Service) SetTime(id string, minutes int) (session.Snapshot, error) {
	return s.Sessions.Update(id, func(sess *session.Session) error {
		before, _ := sess.Area()
		sess.Minutes = reach.ClampMinutes(minutes)
		s.refresh(sess, before)
		return nil
	})
}

// Reach returns the current reachable area, if any.
func (s *Service) Reach(id string) (reach.Area, bool, error) {
	snap, err := s.Sessions.Get(id)
	if err != nil {
		return reach.Area{}, false, err
	}
	if snap.Area == nil {
		return reach.Area{}, false, nil
	}
	return *snap.Area, true, nil
}

// refresh redraws the circle. A trip still sampling from a different area
// than the one now shown is superseded.
func (s *Service) refresh(sess *session.Session, before reach.Area) {
	sess.RefreshCircle()
	if sess.Overlay.Circle != nil {
		metrics.ReachRadiusMeters.Observe(sess.Overlay.Circle.RadiusMeters)
	}
	if after, _ := sess.Area(); after != before {
		sess.Supersede(session.KindTrip)
	}
}

// Locate records the device position, centers the map on it and resolves
// its address. A failed lookup leaves a coordinate address and a notice.
func (s *Service) Locate(ctx context.Context, id string, fix Fix) (Outcome, error) {
	if _, err := s.Sessions.Get(id); err != nil {
		return Outcome{}, err
	}
	if fix.Err != "" {
		return Outcome{}, fmt.Errorf("%w: %s", ErrLocationUnavailable, fix.Err)
	}
	if !fix.Point.Valid() {
		return Outcome{}, fmt.Errorf("%w: invalid coordinates %s", ErrLocationUnavailable, fix.Point)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	tok, _, err := s.Sessions.Begin(id, session.KindLocate)
	if err != nil {
		return Outcome{}, err
	}

	p := fix.Point
	fallback := geocode.FallbackAddress(p)
	if _, applied, err := s.Sessions.Commit(id, tok, func(sess *session.Session) error {
		sess.Origin = &p
		sess.Address = &fallback
		sess.Destination = nil
		sess.Route = nil
		sess.Overlay.SetOrigin(p)
		sess.Supersede(session.KindTrip)
		s.refresh(sess, reach.Area{})
		return nil
	}); err != nil || !applied {
		return s.staleOrErr(id, err)
	}

	var out Outcome
	addr, gerr := s.Geocoder.ReverseGeocode(ctx, p)
	if gerr != nil {
		s.Logger.Warn("reverse geocoding failed", "session_id", id, "point", p, "error", gerr)
		if !errors.Is(gerr, geocode.ErrUnresolvable) && !errors.Is(gerr, geocode.ErrProviderBackoff) && ctx.Err() == nil {
			report.ReportProviderError(gerr, geocode.Provider, id)
		}
		addr = fallback
		out.Notices = append(out.Notices, noticeFor("geocode_failed", fmt.Errorf("%w: %w", ErrGeocodeFailed, gerr)))
	}

	snap, applied, err := s.Sessions.Commit(id, tok, func(sess *session.Session) error {
		sess.Address = &addr
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	out.Session = snap
	out.Stale = !applied
	return out, nil
}

// Start draws a random destination inside the reachable area, or inside
// the ring between opts.MinRadiusMeters and the reach radius, and
// optionally fetches a route to it. A route failure keeps the destination
// and adds a notice.
func (s *Service) Start(ctx context.Context, id string, opts StartOptions) (Outcome, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tok, snap, err := s.Sessions.Begin(id, session.KindTrip)
	if err != nil {
		return Outcome{}, err
	}
	if snap.Area == nil {
		metrics.TripsTotal.WithLabelValues("not_ready").Inc()
		return Outcome{}, fmt.Errorf("%w: initialize the map or choose transport and time", ErrNotReady)
	}
	area := *snap.Area

	res, err := s.Sampler.Destination(ctx, area.Center, opts.MinRadiusMeters, area.RadiusMeters)
	if err != nil {
		switch {
		case errors.Is(err, sampler.ErrNoLandFound):
			metrics.TripsTotal.WithLabelValues("no_land_found").Inc()
		case errors.Is(err, context.DeadlineExceeded):
			metrics.TripsTotal.WithLabelValues("timeout").Inc()
		case errors.Is(err, sampler.ErrBadAnnulus), errors.Is(err, sampler.ErrNotReady):
			metrics.TripsTotal.WithLabelValues("not_ready").Inc()
		default:
			metrics.TripsTotal.WithLabelValues("error").Inc()
		}
		return Outcome{}, fmt.Errorf("pick destination: %w", err)
	}
	metrics.LandAttempts.Observe(float64(res.Attempts))

	var out Outcome
	var route *directions.Route
	if opts.Route {
		mode := directions.ModeFor(snap.Selection)
		r, rerr := s.Router.Route(ctx, area.Center, res.Point, mode)
		if rerr != nil {
			s.Logger.Warn("route lookup failed", "session_id", id, "mode", mode, "error", rerr)
			if !errors.Is(rerr, directions.ErrNoRoute) && ctx.Err() == nil {
				report.ReportProviderError(rerr, directions.Provider, id)
			}
			out.Notices = append(out.Notices, noticeFor("route_failed", fmt.Errorf("%w: %w", ErrRouteFailed, rerr)))
		} else {
			route = &r
		}
	}

	dest := res.Point
	snap, applied, err := s.Sessions.Commit(id, tok, func(sess *session.Session) error {
		sess.Destination = &dest
		sess.Route = route
		sess.Overlay.SetTrip(area.Center, dest)
		if route != nil {
			sess.Overlay.SetRoute(route.Points, string(route.Mode))
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	if !applied {
		metrics.TripsTotal.WithLabelValues("stale").Inc()
		return Outcome{Session: snap, Stale: true}, nil
	}

	metrics.TripsTotal.WithLabelValues("ok").Inc()
	s.Logger.Info("trip started", "session_id", id, "distance_m", res.Distance, "attempts", res.Attempts, "routed", route != nil)

	out.Session = snap
	out.Trip = &res
	return out, nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func (s *Service) staleOrErr(id string, err error) (Outcome, error) {
	if err != nil {
		return Outcome{}, err
	}
	snap, err := s.Sessions.Get(id)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Session: snap, Stale: true}, nil
}
