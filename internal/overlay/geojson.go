package overlay

import "gostop.app/internal/geo"

// CircleVertices is how many points approximate the reach circle.
const CircleVertices = 64

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry coordinates are [lng, lat] pairs nested per geometry type.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func position(p geo.Point) []float64 {
	return []float64{p.Lng, p.Lat}
}

func positions(points []geo.Point) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = position(p)
	}
	return out
}

func pointFeature(m *Marker, role string) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Point", Coordinates: position(m.Position)},
		Properties: map[string]any{"role": role, "label": m.Label},
	}
}

// GeoJSON renders the overlay as a FeatureCollection. The circle becomes a
// polygon and keeps its exact center and radius in the properties.
func (o *Overlay) GeoJSON() FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}

	if o.Circle != nil {
		ring := geo.CirclePolygon(o.Circle.Center, o.Circle.RadiusMeters, CircleVertices)
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "Polygon", Coordinates: [][][]float64{positions(ring)}},
			Properties: map[string]any{
				"role":           "reach",
				"center":         position(o.Circle.Center),
				"radius_m":       o.Circle.RadiusMeters,
				"stroke":         o.Circle.Style.StrokeColor,
				"stroke-width":   o.Circle.Style.StrokeWeight,
				"stroke-opacity": o.Circle.Style.StrokeOpacity,
				"fill":           o.Circle.Style.FillColor,
				"fill-opacity":   o.Circle.Style.FillOpacity,
			},
		})
	}
	if o.Route != nil {
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "LineString", Coordinates: positions(o.Route.Points)},
			Properties: map[string]any{"role": "route", "mode": o.Route.Mode},
		})
	}
	if o.Origin != nil {
		fc.Features = append(fc.Features, pointFeature(o.Origin, "origin"))
	}
	if o.Destination != nil {
		fc.Features = append(fc.Features, pointFeature(o.Destination, "destination"))
	}

	return fc
}
