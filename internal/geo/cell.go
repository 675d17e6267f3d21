package geo

import (
	"fmt"

	"github.com/golang/geo/s2"
)

// CacheLevel is the S2 level used for geocode cache keys (cells of roughly 10 m).
const CacheLevel = 20

// CellID returns the S2 cell containing p at the given level.
func CellID(p Point, level int) s2.CellID {
	return s2.CellIDFromLatLng(p.LatLng()).Parent(level)
}

// CellKey generates a stable S2-based key for a lat/lng, so nearby lookups
// share a cache entry.
func CellKey(p Point, level int) string {
	return fmt.Sprintf("s2_%d", uint64(CellID(p, level)))
}
