// Package particle animates tracer particles through the conduit. The
// velocity field is derived from the solved flow and the conduit geometry.
package particle

import (
	"math"
	"math/rand"

	"stenosis/physics"
)

const (
	DefaultCount = 200

	// MinBaseSpeed keeps particles visibly moving near zero flow.
	MinBaseSpeed = 0.1
)

type Particle struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Speed float64 `json:"speed"`
}

// BaseSpeed is the centerline speed, in pixels per frame, of the open
// conduit for the given flow.
func BaseSpeed(flow float64) float64 {
	return math.Max(math.Abs(flow)/physics.ReferenceFlow, MinBaseSpeed)
}

// Direction is +1 for flow from upstream to downstream, -1 otherwise.
func Direction(flow float64) float64 {
	if flow < 0 {
		return -1
	}
	return 1
}

// LaminarFactor is the parabolic profile across the section: 1 on the
// centerline, 0 at and beyond the wall.
func LaminarFactor(offset, halfWidth float64) float64 {
	if halfWidth <= 0 {
		return 0
	}
	d := math.Abs(offset) / halfWidth
	return math.Max(0, 1-d*d)
}

// Velocity returns the signed longitudinal speed of a particle at (x, y).
// A non-finite flow yields zero.
func Velocity(flow float64, g Geometry, x, y float64) float64 {
	if math.IsNaN(flow) || math.IsInf(flow, 0) {
		return 0
	}
	laminar := LaminarFactor(y-g.Centerline(), g.HalfWidthAt(x))
	return BaseSpeed(flow) * g.VelocityMultiplier(x) * Direction(flow) * laminar
}

// Seed scatters n particles over the conduit, each inside the local band.
func Seed(n int, g Geometry, rnd *rand.Rand) []Particle {
	ps := make([]Particle, n)
	if g.Validate() != nil {
		return ps
	}
	for i := range ps {
		x := rnd.Float64() * g.Width
		ps[i] = Particle{X: x, Y: lateral(g, g.HalfWidthAt(x), rnd)}
	}
	return ps
}

// Advance moves every particle by one tick of dt frames. Particles that end
// up outside the wall restart at the inlet; particles that leave the canvas
// downstream wrap to the opposite edge. Nothing moves on a degenerate canvas.
func Advance(ps []Particle, flow float64, g Geometry, dt float64, rnd *rand.Rand) {
	if g.Validate() != nil {
		return
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 1
	}
	direction := Direction(flow)
	inlet, outlet := 0.0, g.Width
	if direction < 0 {
		inlet, outlet = g.Width, 0
	}
	center := g.Centerline()

	for i := range ps {
		p := &ps[i]
		p.Speed = Velocity(flow, g, p.X, p.Y)
		p.X += p.Speed * dt

		switch {
		case math.Abs(p.Y-center) > g.HalfWidthAt(p.X):
			p.X = inlet
			p.Y = lateral(g, g.NormalWidth, rnd)
		case direction > 0 && p.X > outlet, direction < 0 && p.X < outlet:
			p.X = inlet
			p.Y = lateral(g, g.HalfWidthAt(inlet), rnd)
		}
	}
}

func lateral(g Geometry, halfWidth float64, rnd *rand.Rand) float64 {
	return g.Centerline() + (2*rnd.Float64()-1)*halfWidth
}
