package geo

import (
	"math"
	"testing"
)

func TestIsValidLatLon(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"seoul", 37.4924, 127.0317, true},
		{"zero value means no fix", 0, 0, false},
		{"lat too large", 91, 10, false},
		{"lon too small", 10, -181, false},
		{"NaN", math.NaN(), 10, false},
		{"edge", -90, 180, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidLatLon(tt.lat, tt.lon); got != tt.want {
				t.Errorf("IsValidLatLon(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	center := Point{Lat: 37.49241689559544, Lng: 127.03171389453507}

	north := Offset(center, 111320, 0)
	if math.Abs(north.Lat-(center.Lat+1)) > 1e-9 || math.Abs(north.Lng-center.Lng) > 1e-9 {
		t.Errorf("moving 111320 m north should add one degree of latitude, got %v", north)
	}

	east := Offset(center, 0, MetersPerDegreeLng(center.Lat))
	if math.Abs(east.Lng-(center.Lng+1)) > 1e-9 || math.Abs(east.Lat-center.Lat) > 1e-9 {
		t.Errorf("moving one longitude degree east should add one degree of longitude, got %v", east)
	}
}

func TestOffsetStaysOnTheGlobe(t *testing.T) {
	tests := []struct {
		name        string
		from        Point
		north, east float64
		wantLat     float64
		wantLng     float64
	}{
		{"east across the antimeridian", Point{Lat: 10, Lng: 179.99}, 0, 5000, 10, 179.99 + 5000/MetersPerDegreeLng(10) - 360},
		{"west across the antimeridian", Point{Lat: -16.5, Lng: -179.99}, 0, -5000, -16.5, -179.99 - 5000/MetersPerDegreeLng(-16.5) + 360},
		{"past the north pole", Point{Lat: 89.99, Lng: 20}, 5000, 0, 90, 20},
		{"past the south pole", Point{Lat: -89.99, Lng: 20}, -5000, 0, -90, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Offset(tt.from, tt.north, tt.east)
			if !IsValidLatLon(got.Lat, got.Lng) {
				t.Fatalf("Offset(%v) = %v, not a valid coordinate", tt.from, got)
			}
			if math.Abs(got.Lat-tt.wantLat) > 1e-6 || math.Abs(got.Lng-tt.wantLng) > 1e-6 {
				t.Errorf("Offset(%v, %v, %v) = %v, want %.6f,%.6f", tt.from, tt.north, tt.east, got, tt.wantLat, tt.wantLng)
			}
		})
	}
}

func TestHaversineDistance(t *testing.T) {
	// One degree of latitude on a 6371 km sphere.
	d := HaversineDistance(0, 10, 1, 10)
	want := 2 * math.Pi * earthRadiusInMeters / 360
	if math.Abs(d-want) > 0.01 {
		t.Errorf("expected %.2f, got %.2f", want, d)
	}

	if d := Distance(Point{Lat: 37.5, Lng: 127}, Point{Lat: 37.5, Lng: 127}); d != 0 {
		t.Errorf("expected zero distance for identical points, got %v", d)
	}
}

func TestDestination(t *testing.T) {
	start := Point{Lat: 37.5665, Lng: 126.9780}
	for _, bearing := range []float64{0, 45, 90, 180, 270} {
		p := Destination(start, bearing, 5000)
		if d := Distance(start, p); math.Abs(d-5000) > 0.5 {
			t.Errorf("bearing %v: expected 5000 m, got %.3f", bearing, d)
		}
	}
}

func TestCirclePolygon(t *testing.T) {
	center := Point{Lat: 37.5665, Lng: 126.9780}
	ring := CirclePolygon(center, 2000, 64)

	if len(ring) != 65 {
		t.Fatalf("expected 65 vertices, got %d", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Errorf("ring is not closed")
	}
	for i, p := range ring {
		if d := Distance(center, p); math.Abs(d-2000) > 0.5 {
			t.Errorf("vertex %d is %.3f m from center", i, d)
		}
	}
}

func TestBoundingBox(t *testing.T) {
	bbox, err := ComputeBoundingBox([]Point{
		{Lat: 37.1, Lng: 127.2},
		{Lat: 37.3, Lng: 126.9},
		{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bbox.MinLat != 37.1 || bbox.MaxLat != 37.3 || bbox.MinLon != 126.9 || bbox.MaxLon != 127.2 {
		t.Errorf("unexpected bounding box %+v", bbox)
	}
	if !bbox.Contains(37.2, 127.0) {
		t.Errorf("expected point inside bounding box")
	}

	if _, err := ComputeBoundingBox(nil); err == nil {
		t.Errorf("expected error for empty input")
	}

	circle := CircleBounds(Point{Lat: 0.5, Lng: 10}, 1000)
	if !circle.Contains(0.5, 10) || circle.Contains(0.52, 10) {
		t.Errorf("unexpected circle bounds %+v", circle)
	}
}

func TestCellKey(t *testing.T) {
	a := Point{Lat: 37.566500, Lng: 126.978000}
	ll := CellID(a, CacheLevel).LatLng()
	cellCenter := Point{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()}
	far := Point{Lat: 37.57, Lng: 126.98}

	if CellKey(a, CacheLevel) != CellKey(cellCenter, CacheLevel) {
		t.Errorf("a point and its cell center should share a cell key")
	}
	if CellKey(a, CacheLevel) == CellKey(far, CacheLevel) {
		t.Errorf("points hundreds of meters apart should not share a cell key")
	}
}
