// Package overlay holds the declarative map state a client renders: the
// markers, the reach circle, the route polyline and the viewport.
package overlay

import "gostop.app/internal/geo"

const DefaultZoom = 15

// DefaultCenter is the viewport before the user has been located.
var DefaultCenter = geo.Point{Lat: 37.49241689559544, Lng: 127.03171389453507}

const (
	OriginLabel      = "A"
	DestinationLabel = ""
)

type Marker struct {
	Position geo.Point `json:"position"`
	Label    string    `json:"label"`
}

type CircleStyle struct {
	StrokeColor   string  `json:"stroke_color"`
	StrokeWeight  int     `json:"stroke_weight"`
	StrokeOpacity float64 `json:"stroke_opacity"`
	FillColor     string  `json:"fill_color"`
	FillOpacity   float64 `json:"fill_opacity"`
}

var DefaultCircleStyle = CircleStyle{
	StrokeColor:   "#3399ff",
	StrokeWeight:  2,
	StrokeOpacity: 0.7,
	FillColor:     "#3399ff",
	FillOpacity:   0.2,
}

type Circle struct {
	Center       geo.Point   `json:"center"`
	RadiusMeters float64     `json:"radius_m"`
	Style        CircleStyle `json:"style"`
}

type Polyline struct {
	Points []geo.Point `json:"points"`
	Mode   string      `json:"mode"`
}

// Overlay owns every shape drawn on the map. Each Set replaces the shape it
// names and each Clear removes it, so at most one of each exists.
type Overlay struct {
	MapCenter   geo.Point `json:"center"`
	Zoom        int       `json:"zoom"`
	Origin      *Marker   `json:"origin,omitempty"`
	Destination *Marker   `json:"destination,omitempty"`
	Circle      *Circle   `json:"circle,omitempty"`
	Route       *Polyline `json:"route,omitempty"`
}

func New() *Overlay {
	return &Overlay{MapCenter: DefaultCenter, Zoom: DefaultZoom}
}

// SetOrigin places the user's marker and centers the map on it. A previous
// trip no longer applies and is removed.
func (o *Overlay) SetOrigin(p geo.Point) {
	o.Origin = &Marker{Position: p}
	o.Destination = nil
	o.Route = nil
	o.MapCenter = p
}

func (o *Overlay) SetCircle(center geo.Point, radiusMeters float64) {
	o.Circle = &Circle{Center: center, RadiusMeters: radiusMeters, Style: DefaultCircleStyle}
}

func (o *Overlay) ClearCircle() {
	o.Circle = nil
}

// SetTrip marks the start "A" and the destination, and centers the map on
// the destination. Any route from an earlier trip is dropped.
func (o *Overlay) SetTrip(origin, dest geo.Point) {
	o.Origin = &Marker{Position: origin, Label: OriginLabel}
	o.Destination = &Marker{Position: dest, Label: DestinationLabel}
	o.Route = nil
	o.MapCenter = dest
}

func (o *Overlay) SetRoute(points []geo.Point, mode string) {
	o.Route = &Polyline{Points: append([]geo.Point(nil), points...), Mode: mode}
}

// ClearRoute drops the polyline and keeps the trip markers.
func (o *Overlay) ClearRoute() {
	o.Route = nil
}

// Clone returns a deep copy safe to hand out while o keeps changing.
func (o *Overlay) Clone() *Overlay {
	c := *o
	if o.Origin != nil {
		m := *o.Origin
		c.Origin = &m
	}
	if o.Destination != nil {
		m := *o.Destination
		c.Destination = &m
	}
	if o.Circle != nil {
		ci := *o.Circle
		c.Circle = &ci
	}
	if o.Route != nil {
		c.Route = &Polyline{Points: append([]geo.Point(nil), o.Route.Points...), Mode: o.Route.Mode}
	}
	return &c
}
