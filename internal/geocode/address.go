// Package geocode turns coordinates into human-readable addresses using the
// TMAP reverse geocoding API, and doubles as the land/sea classifier for
// random destinations.
package geocode

import (
	"errors"
	"fmt"
	"strings"

	"gostop.app/internal/geo"
)

var (
	// ErrUnresolvable is returned when the provider has no address for a
	// point, which in practice means the point lies in water.
	ErrUnresolvable = errors.New("no address at this location")

	// ErrProviderBackoff is returned without contacting the provider while
	// it is cooling down after a failure.
	ErrProviderBackoff = errors.New("geocoding provider temporarily unavailable")
)

// Address is a geocoded or fallback description of a point.
type Address struct {
	Text     string    `json:"text"`
	Resolved bool      `json:"resolved"`
	Point    geo.Point `json:"point"`
}

// FallbackAddress describes p by its raw coordinates.
func FallbackAddress(p geo.Point) Address {
	return Address{
		Text:  fmt.Sprintf("위도: %.5f, 경도: %.5f", p.Lat, p.Lng),
		Point: p,
	}
}

// formatAddress joins the administrative parts, skipping empty ones.
func formatAddress(legalDong, roadName, buildingName string) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{legalDong, roadName, buildingName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
