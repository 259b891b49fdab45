package particle

import (
	"errors"
	"fmt"
	"math"
)

var ErrDegenerateGeometry = errors.New("particle: canvas has zero width or height")

const (
	// 血管半宽占画布高度的比例
	HalfWidthFraction = 0.25

	// 狭窄段起点以及长度 (占画布宽度的比例)
	RestrictionFraction = 0.3
	RestrictionExtent   = 0.2

	// MaxVelocityMultiplier caps the speed-up through the stenosis so the
	// animation stays readable.
	MaxVelocityMultiplier = 5.0
)

// Geometry describes the conduit on the drawing surface, in pixels. Widths
// are half widths measured from the centerline.
type Geometry struct {
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	NormalWidth      float64 `json:"normal_width"`
	RestrictedWidth  float64 `json:"restricted_width"`
	RestrictionPoint float64 `json:"restriction_point"`
}

// NewGeometry lays the conduit out on a width x height canvas with the given
// constriction percentage.
func NewGeometry(width, height, constriction float64) Geometry {
	normal := height * HalfWidthFraction
	restricted := normal * (100 - constriction) / 100
	if restricted < 0 {
		restricted = 0
	}
	return Geometry{
		Width:            width,
		Height:           height,
		NormalWidth:      normal,
		RestrictedWidth:  restricted,
		RestrictionPoint: width * RestrictionFraction,
	}
}

func (g Geometry) Validate() error {
	if !(g.Width > 0) || !(g.Height > 0) || math.IsInf(g.Width, 0) || math.IsInf(g.Height, 0) {
		return fmt.Errorf("%vx%v: %w", g.Width, g.Height, ErrDegenerateGeometry)
	}
	return nil
}

func (g Geometry) Centerline() float64 {
	return g.Height / 2
}

// RestrictionEnd is where the drawn stenosis ends. The velocity field does
// not widen again past it.
func (g Geometry) RestrictionEnd() float64 {
	return g.RestrictionPoint + g.Width*RestrictionExtent
}

// HalfWidthAt returns the local half width of the conduit at x.
func (g Geometry) HalfWidthAt(x float64) float64 {
	if x < g.RestrictionPoint {
		return g.NormalWidth
	}
	return g.RestrictedWidth
}

// VelocityMultiplier is the continuity speed-up at x: the area ratio of the
// open and narrowed sections, capped at MaxVelocityMultiplier.
func (g Geometry) VelocityMultiplier(x float64) float64 {
	if x < g.RestrictionPoint {
		return 1
	}
	if g.RestrictedWidth <= 0 {
		return MaxVelocityMultiplier
	}
	ratio := g.NormalWidth / g.RestrictedWidth
	return math.Min(ratio*ratio, MaxVelocityMultiplier)
}
