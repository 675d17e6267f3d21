// Package reach estimates how far a traveller can get with a set of
// transport modes and a time budget.
package reach

import (
	"math"

	"gostop.app/internal/geo"
	"gostop.app/internal/transport"
)

const (
	MinMinutes     = 20
	MaxMinutes     = 720
	StepMinutes    = 10
	DefaultMinutes = MinMinutes
)

// Average speeds in meters per hour.
var speedMetersPerHour = map[transport.Mode]float64{
	transport.Car:     60000,
	transport.Bus:     40000,
	transport.Subway:  50000,
	transport.Walking: 5000,
}

// Share of the straight-line range that survives detours and waiting.
var reductionFactor = map[transport.Mode]float64{
	transport.Car:     0.7,
	transport.Bus:     0.6,
	transport.Subway:  0.5,
	transport.Walking: 0.4,
}

// ClampMinutes snaps a requested budget onto the slider domain:
// [MinMinutes, MaxMinutes] in StepMinutes increments.
func ClampMinutes(minutes int) int {
	if minutes <= MinMinutes {
		return MinMinutes
	}
	if minutes >= MaxMinutes {
		return MaxMinutes
	}
	steps := int(math.Round(float64(minutes-MinMinutes) / StepMinutes))
	return MinMinutes + steps*StepMinutes
}

// Radius returns the reachable radius in meters. The average speed of the
// selected modes is scaled by the most restrictive reduction factor among
// them. An empty selection has no area and yields 0.
func Radius(sel transport.Selection, minutes int) float64 {
	modes := sel.Modes()
	if len(modes) == 0 || minutes <= 0 {
		return 0
	}

	total := 0.0
	minReduction := 1.0
	for _, m := range modes {
		total += speedMetersPerHour[m]
		if r, ok := reductionFactor[m]; ok && r < minReduction {
			minReduction = r
		}
	}

	avgMetersPerMinute := total / float64(len(modes)) / 60
	return avgMetersPerMinute * float64(minutes) * minReduction
}

// Area is a reachable circle around a center.
type Area struct {
	Center       geo.Point `json:"center"`
	RadiusMeters float64   `json:"radius_m"`
}

// AreaFor derives the reachable area. ok is false when there is no
// location fix or the radius is zero.
func AreaFor(center geo.Point, sel transport.Selection, minutes int) (area Area, ok bool) {
	if !center.Valid() {
		return Area{}, false
	}
	r := Radius(sel, minutes)
	if r <= 0 {
		return Area{}, false
	}
	return Area{Center: center, RadiusMeters: r}, true
}

// Bounds returns the box enclosing the area.
func (a Area) Bounds() geo.BoundingBox {
	return geo.CircleBounds(a.Center, a.RadiusMeters)
}
