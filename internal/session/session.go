// Package session keeps each user's transient trip state in memory and
// guards it against results from superseded requests.
package session

import (
	"time"

	"gostop.app/internal/directions"
	"gostop.app/internal/geo"
	"gostop.app/internal/geocode"
	"gostop.app/internal/overlay"
	"gostop.app/internal/reach"
	"gostop.app/internal/transport"
)

// Kind names a class of asynchronous work whose results can go stale.
type Kind string

const (
	KindLocate Kind = "locate"
	KindTrip   Kind = "trip"
)

// Session is mutable state; it is only touched under the Store lock.
type Session struct {
	ID          string
	Selection   transport.Selection
	Minutes     int
	Origin      *geo.Point
	Address     *geocode.Address
	Destination *geo.Point
	Route       *directions.Route
	Overlay     *overlay.Overlay

	generations map[Kind]uint64
	touched     time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:          id,
		Selection:   transport.NewSelection(),
		Minutes:     reach.DefaultMinutes,
		Overlay:     overlay.New(),
		generations: make(map[Kind]uint64),
		touched:     now,
	}
}

// Area is the reachable area around the origin, if there is one.
func (s *Session) Area() (reach.Area, bool) {
	if s.Origin == nil {
		return reach.Area{}, false
	}
	return reach.AreaFor(*s.Origin, s.Selection, s.Minutes)
}

// Supersede invalidates in-flight work of the given kind, so its Commit is
// dropped as stale. Call it from inside Update or Commit.
func (s *Session) Supersede(kind Kind) {
	s.generations[kind]++
}

// RefreshCircle redraws the reach circle after the selection, the time
// budget or the origin changed.
func (s *Session) RefreshCircle() {
	if area, ok := s.Area(); ok {
		s.Overlay.SetCircle(area.Center, area.RadiusMeters)
		return
	}
	s.Overlay.ClearCircle()
}

// Snapshot is an immutable copy of a Session for callers outside the lock.
type Snapshot struct {
	ID          string              `json:"id"`
	Selection   transport.Selection `json:"selection"`
	Minutes     int                 `json:"minutes"`
	Origin      *geo.Point          `json:"origin,omitempty"`
	Address     *geocode.Address    `json:"address,omitempty"`
	Area        *reach.Area         `json:"area,omitempty"`
	Destination *geo.Point          `json:"destination,omitempty"`
	Route       *directions.Route   `json:"route,omitempty"`
	Overlay     *overlay.Overlay    `json:"overlay"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:        s.ID,
		Selection: s.Selection,
		Minutes:   s.Minutes,
		Overlay:   s.Overlay.Clone(),
		UpdatedAt: s.touched,
	}
	if s.Origin != nil {
		p := *s.Origin
		snap.Origin = &p
	}
	if s.Address != nil {
		a := *s.Address
		snap.Address = &a
	}
	if area, ok := s.Area(); ok {
		snap.Area = &area
	}
	if s.Destination != nil {
		p := *s.Destination
		snap.Destination = &p
	}
	if s.Route != nil {
		r := *s.Route
		r.Points = append([]geo.Point(nil), s.Route.Points...)
		snap.Route = &r
	}
	return snap
}
