package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// LatLng converts the point to an s2.LatLng.
func (p Point) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lng)
}

// MetersPerDegreeLat is the flat-earth length of one degree of latitude.
const MetersPerDegreeLat = 111320.0

// earthRadiusInMeters represents the mean radius of the Earth in meters.
//
// This value (6,371,000 meters) is defined as the Earth's volumetric mean radius,
// which is commonly used for general geospatial calculations and spherical approximations.
//
// Reference: NASA Planetary Fact Sheet – Earth
// https://nssdc.gsfc.nasa.gov/planetary/factsheet/earthfact.html
const earthRadiusInMeters = 6371000

// MetersPerDegreeLng returns the length of one degree of longitude at the given latitude.
func MetersPerDegreeLng(lat float64) float64 {
	return MetersPerDegreeLat * math.Cos(lat*math.Pi/180)
}

// Offset moves p by the given north and east displacements in meters,
// using the degree conversion evaluated at p's latitude. Longitude wraps
// across the antimeridian and latitude is clamped at the poles.
func Offset(p Point, northMeters, eastMeters float64) Point {
	ll := s2.LatLngFromDegrees(
		p.Lat+northMeters/MetersPerDegreeLat,
		p.Lng+eastMeters/MetersPerDegreeLng(p.Lat),
	).Normalized()
	return Point{
		Lat: math.Max(-90, math.Min(90, ll.Lat.Degrees())),
		Lng: math.Max(-180, math.Min(180, ll.Lng.Degrees())),
	}
}

// IsValidLatLon returns true if the given latitude and longitude values
// fall within the valid geographic coordinate bounds.
//
// Latitude must be between -90 and 90 degrees, and longitude must be
// between -180 and 180 degrees.
//
// Note: This function treats the coordinate (0,0) as invalid, even though it
// is a valid location in the Gulf of Guinea. A zero Point is how the rest of
// the code represents "no location fix yet".
func IsValidLatLon(lat, lon float64) bool {
	if lat == 0 && lon == 0 {
		return false
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	return true
}

// Valid reports whether p is a usable location fix.
func (p Point) Valid() bool {
	return IsValidLatLon(p.Lat, p.Lng)
}

// HaversineDistance returns the great-circle distance between two points in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusInMeters
}

// Distance is HaversineDistance for Points.
func Distance(a, b Point) float64 {
	return HaversineDistance(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Destination returns the point reached by travelling meters along the
// great circle from p with the given bearing in degrees clockwise from north.
func Destination(p Point, bearingDeg, meters float64) Point {
	ll := p.LatLng()
	d := meters / earthRadiusInMeters
	brg := bearingDeg * math.Pi / 180

	lat1 := ll.Lat.Radians()
	lng1 := ll.Lng.Radians()
	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brg))
	lng2 := lng1 + math.Atan2(math.Sin(brg)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	out := s2.LatLng{Lat: s1.Angle(lat2), Lng: s1.Angle(lng2)}.Normalized()
	return Point{Lat: out.Lat.Degrees(), Lng: out.Lng.Degrees()}
}

// CirclePolygon approximates a circle with n vertices. The ring is closed:
// the first vertex is repeated at the end.
func CirclePolygon(center Point, radiusMeters float64, n int) []Point {
	if n < 3 {
		n = 3
	}
	ring := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		ring = append(ring, Destination(center, 360*float64(i)/float64(n), radiusMeters))
	}
	return append(ring, ring[0])
}
