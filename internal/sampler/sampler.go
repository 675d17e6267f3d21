// Package sampler picks random destinations inside a reachable area.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"gostop.app/internal/geo"
)

var (
	// ErrNotReady is returned when there is no usable center or radius.
	ErrNotReady = errors.New("no location fix or reachable area")
	// ErrNoLandFound is returned when every candidate fell in water.
	ErrNoLandFound = errors.New("no destination on land within attempt limit")
	ErrBadAnnulus  = errors.New("minimum radius must be smaller than the maximum radius")
)

// DefaultMaxAttempts bounds the land-rejection loop.
const DefaultMaxAttempts = 10

// LandChecker classifies a point as land (resolvable) or sea.
type LandChecker interface {
	IsLand(ctx context.Context, p geo.Point) (bool, error)
}

// Result is a sampled destination and the number of candidates drawn.
type Result struct {
	Point    geo.Point `json:"point"`
	Distance float64   `json:"distance_m"`
	Attempts int       `json:"attempts"`
}

// Sampler draws random points. It is safe for concurrent use.
type Sampler struct {
	mu          sync.Mutex
	rng         *rand.Rand
	land        LandChecker
	maxAttempts int
	logger      *slog.Logger
}

type Option func(*Sampler)

// WithRand replaces the random source, mostly for deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Sampler) { s.rng = r }
}

// WithLandChecker enables land rejection.
func WithLandChecker(lc LandChecker) Option {
	return func(s *Sampler) { s.land = lc }
}

func WithMaxAttempts(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sampler) { s.logger = l }
}

func New(opts ...Option) *Sampler {
	s := &Sampler{
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		maxAttempts: DefaultMaxAttempts,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sampler) uniforms() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64(), s.rng.Float64()
}

// InDisk returns a point uniformly distributed over the disk of the given
// radius: r = R·sqrt(u), θ = 2π·u'.
func (s *Sampler) InDisk(center geo.Point, radiusMeters float64) (geo.Point, error) {
	if !center.Valid() || !(radiusMeters > 0) {
		return geo.Point{}, ErrNotReady
	}
	u, v := s.uniforms()
	return place(center, radiusMeters*math.Sqrt(u), 2*math.Pi*v), nil
}

// InAnnulus returns a point whose distance from center is interpolated
// linearly between minMeters and maxMeters. Distances are uniform, so
// points crowd toward the inner ring.
func (s *Sampler) InAnnulus(center geo.Point, minMeters, maxMeters float64) (geo.Point, error) {
	if !center.Valid() || !(maxMeters > 0) {
		return geo.Point{}, ErrNotReady
	}
	if minMeters < 0 || minMeters >= maxMeters {
		return geo.Point{}, fmt.Errorf("%w: min=%.1f max=%.1f", ErrBadAnnulus, minMeters, maxMeters)
	}
	u, v := s.uniforms()
	return place(center, minMeters+(maxMeters-minMeters)*u, 2*math.Pi*v), nil
}

// place converts a polar offset to degrees with the flat conversion
// evaluated at the center latitude.
func place(center geo.Point, r, theta float64) geo.Point {
	return geo.Offset(center, r*math.Cos(theta), r*math.Sin(theta))
}

// Destination samples a point in the disk (minMeters == 0) or annulus and,
// when a land checker is configured, rejects candidates in water. The loop
// stops after the configured number of attempts with ErrNoLandFound.
func (s *Sampler) Destination(ctx context.Context, center geo.Point, minMeters, maxMeters float64) (Result, error) {
	draw := func() (geo.Point, error) {
		if minMeters > 0 {
			return s.InAnnulus(center, minMeters, maxMeters)
		}
		return s.InDisk(center, maxMeters)
	}

	if s.land == nil {
		p, err := draw()
		if err != nil {
			return Result{}, err
		}
		return Result{Point: p, Distance: geo.Distance(center, p), Attempts: 1}, nil
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		p, err := draw()
		if err != nil {
			return Result{}, err
		}

		onLand, err := s.land.IsLand(ctx, p)
		if err != nil {
			return Result{}, fmt.Errorf("classify candidate %s: %w", p, err)
		}
		if onLand {
			return Result{Point: p, Distance: geo.Distance(center, p), Attempts: attempt}, nil
		}
		s.logger.Debug("rejected candidate in water", "attempt", attempt, "point", p.String())
	}

	return Result{Attempts: s.maxAttempts}, ErrNoLandFound
}
