package geo

import (
	"fmt"
	"math"
)

// BoundingBox defines the corners of a lat/lon box
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lng"`
	MaxLon float64 `json:"max_lng"`
}

// Contains checks whether the given latitude and longitude are within the bounding box
func (b *BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// ComputeBoundingBox computes the bounding box of a set of points.
func ComputeBoundingBox(points []Point) (BoundingBox, error) {
	if len(points) == 0 {
		return BoundingBox{}, fmt.Errorf("no points to compute bounding box")
	}

	minLat := math.MaxFloat64
	maxLat := -math.MaxFloat64
	minLon := math.MaxFloat64
	maxLon := -math.MaxFloat64

	for _, p := range points {
		if !p.Valid() {
			continue
		}
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lng)
		maxLon = math.Max(maxLon, p.Lng)
	}

	if minLat == math.MaxFloat64 {
		return BoundingBox{}, fmt.Errorf("no valid latitude/longitude found in points")
	}

	return BoundingBox{
		MinLat: minLat,
		MaxLat: maxLat,
		MinLon: minLon,
		MaxLon: maxLon,
	}, nil
}

// CircleBounds returns the box enclosing a circle drawn with the flat
// degree conversion used by the sampler.
func CircleBounds(center Point, radiusMeters float64) BoundingBox {
	dLat := radiusMeters / MetersPerDegreeLat
	dLng := radiusMeters / MetersPerDegreeLng(center.Lat)
	return BoundingBox{
		MinLat: center.Lat - dLat,
		MaxLat: center.Lat + dLat,
		MinLon: center.Lng - dLng,
		MaxLon: center.Lng + dLng,
	}
}
