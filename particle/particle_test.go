package particle

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stenosis/physics"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func TestNewGeometry(t *testing.T) {
	g := NewGeometry(1000, 400, 28)
	assert.Equal(t, 1000.0, g.Width)
	assert.Equal(t, 400.0, g.Height)
	assert.Equal(t, 100.0, g.NormalWidth)
	assert.InDelta(t, 72, g.RestrictedWidth, 1e-9)
	assert.Equal(t, 300.0, g.RestrictionPoint)
	assert.Equal(t, 500.0, g.RestrictionEnd())
	assert.Equal(t, 200.0, g.Centerline())
	assert.NoError(t, g.Validate())
}

func TestGeometryValidate(t *testing.T) {
	for _, g := range []Geometry{
		NewGeometry(0, 400, 28),
		NewGeometry(800, 0, 28),
		NewGeometry(-1, 400, 28),
		NewGeometry(math.NaN(), 400, 28),
		NewGeometry(800, math.Inf(1), 28),
		{},
	} {
		assert.ErrorIs(t, g.Validate(), ErrDegenerateGeometry)
	}
}

func TestHalfWidthAt(t *testing.T) {
	g := NewGeometry(1000, 400, 50)
	assert.Equal(t, 100.0, g.HalfWidthAt(0))
	assert.Equal(t, 100.0, g.HalfWidthAt(299.9))
	assert.Equal(t, 50.0, g.HalfWidthAt(300))
	assert.Equal(t, 50.0, g.HalfWidthAt(999))
}

func TestVelocityMultiplier(t *testing.T) {
	g := NewGeometry(1000, 400, 28)
	assert.Equal(t, 1.0, g.VelocityMultiplier(100))
	assert.InDelta(t, (100.0/72)*(100.0/72), g.VelocityMultiplier(400), 1e-9)

	assert.Equal(t, 1.0, NewGeometry(1000, 400, 0).VelocityMultiplier(400))
	assert.Equal(t, MaxVelocityMultiplier, NewGeometry(1000, 400, 80).VelocityMultiplier(400))
	assert.Equal(t, MaxVelocityMultiplier, NewGeometry(1000, 400, 100).VelocityMultiplier(400))
}

func TestLaminarFactor(t *testing.T) {
	assert.Equal(t, 1.0, LaminarFactor(0, 50))
	assert.Equal(t, 0.75, LaminarFactor(25, 50))
	assert.Equal(t, 0.75, LaminarFactor(-25, 50))
	assert.Equal(t, 0.0, LaminarFactor(50, 50))
	assert.Equal(t, 0.0, LaminarFactor(80, 50))
	assert.Equal(t, 0.0, LaminarFactor(0, 0))
}

func TestBaseSpeed(t *testing.T) {
	assert.Equal(t, 1.0, BaseSpeed(physics.ReferenceFlow))
	assert.Equal(t, 2.0, BaseSpeed(-2*physics.ReferenceFlow))
	assert.Equal(t, MinBaseSpeed, BaseSpeed(0))
	assert.Equal(t, MinBaseSpeed, BaseSpeed(1))
}

func TestVelocityNonFiniteFlow(t *testing.T) {
	g := NewGeometry(1000, 400, 28)
	for _, flow := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Equal(t, 0.0, Velocity(flow, g, 100, g.Centerline()))
	}
}

func TestVelocityDirection(t *testing.T) {
	g := NewGeometry(1000, 400, 28)
	forward := physics.ComputeFlow(120, 5, 28)
	reverse := physics.ComputeFlow(5, 120, 28)
	assert.InDelta(t, 1.0, Velocity(forward, g, 100, 200), 1e-9)
	assert.InDelta(t, -1.0, Velocity(reverse, g, 100, 200), 1e-9)
	assert.Greater(t, Velocity(0, g, 100, 200), 0.0)
}

func TestVelocityAfterConstrictionNotSlower(t *testing.T) {
	for c := 1.0; c < 90; c += 1 {
		g := NewGeometry(1000, 400, c)
		flow := physics.ComputeFlow(120, 5, c)
		before := math.Abs(Velocity(flow, g, 100, g.Centerline()))
		after := math.Abs(Velocity(flow, g, 600, g.Centerline()))
		assert.GreaterOrEqual(t, after, before, "constriction %v", c)
		assert.LessOrEqual(t, after, before*MaxVelocityMultiplier+1e-9)

		// 同一相对位置 (半宽的一半处)
		before = math.Abs(Velocity(flow, g, 100, g.Centerline()+g.NormalWidth/2))
		after = math.Abs(Velocity(flow, g, 600, g.Centerline()+g.RestrictedWidth/2))
		assert.GreaterOrEqual(t, after, before, "constriction %v", c)
	}
}

func TestSeedInsideConduit(t *testing.T) {
	g := NewGeometry(800, 300, 60)
	ps := Seed(500, g, newRand())
	require.Len(t, ps, 500)
	for _, p := range ps {
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.Less(t, p.X, g.Width)
		assert.LessOrEqual(t, math.Abs(p.Y-g.Centerline()), g.HalfWidthAt(p.X))
	}
}

func TestSeedDegenerate(t *testing.T) {
	ps := Seed(10, NewGeometry(0, 0, 28), newRand())
	assert.Len(t, ps, 10)
}

func TestAdvanceContainment(t *testing.T) {
	rnd := newRand()
	cases := []struct {
		up, down, constriction float64
	}{
		{120, 5, 28},
		{5, 120, 28},
		{200, 0, 85},
		{0, 200, 85},
		{60, 60, 0},
		{120, 5, 90},
	}
	for _, c := range cases {
		g := NewGeometry(640, 360, c.constriction)
		flow := physics.ComputeFlow(c.up, c.down, c.constriction)
		ps := Seed(DefaultCount, g, rnd)
		for tick := 0; tick < 2000; tick++ {
			Advance(ps, flow, g, 1, rnd)
			for i, p := range ps {
				if math.Abs(p.Y-g.Centerline()) > g.NormalWidth+1e-9 || math.IsNaN(p.X) {
					t.Fatalf("tick %d particle %d escaped: %+v (case %+v)", tick, i, p, c)
				}
			}
		}
	}
}

func TestAdvanceStaleGeometry(t *testing.T) {
	rnd := newRand()
	ps := Seed(300, NewGeometry(1200, 800, 10), rnd)
	smaller := NewGeometry(600, 200, 10)
	Advance(ps, physics.ReferenceFlow, smaller, 1, rnd)
	for _, p := range ps {
		assert.LessOrEqual(t, math.Abs(p.Y-smaller.Centerline()), smaller.NormalWidth+1e-9)
	}
}

func TestAdvanceMovesWithFlow(t *testing.T) {
	g := NewGeometry(1000, 400, 28)
	ps := []Particle{{X: 100, Y: 200}, {X: 600, Y: 200}}
	Advance(ps, physics.ReferenceFlow, g, 1, newRand())
	assert.InDelta(t, 101, ps[0].X, 1e-9)
	assert.InDelta(t, 1, ps[0].Speed, 1e-9)
	assert.Greater(t, ps[1].Speed, ps[0].Speed)

	Advance(ps, -physics.ReferenceFlow, g, 2, newRand())
	assert.InDelta(t, 99, ps[0].X, 1e-9)
	assert.InDelta(t, -1, ps[0].Speed, 1e-9)
}

func TestAdvanceWrapsAround(t *testing.T) {
	g := NewGeometry(1000, 400, 28)
	ps := []Particle{{X: 999.5, Y: 200}}
	Advance(ps, physics.ReferenceFlow, g, 1, newRand())
	assert.Equal(t, 0.0, ps[0].X)
	assert.LessOrEqual(t, math.Abs(ps[0].Y-g.Centerline()), g.NormalWidth)

	ps = []Particle{{X: 0.5, Y: 200}}
	Advance(ps, -physics.ReferenceFlow, g, 1, newRand())
	assert.Equal(t, 1000.0, ps[0].X)
	assert.LessOrEqual(t, math.Abs(ps[0].Y-g.Centerline()), g.RestrictedWidth)
}

func TestAdvanceRespawnsOutsideWall(t *testing.T) {
	g := NewGeometry(1000, 400, 28)
	// 在狭窄段之前, 偏离中心 90 像素: 在正常半宽内, 狭窄段半宽 (72) 外
	ps := []Particle{{X: 299, Y: 290}}
	Advance(ps, 20*physics.ReferenceFlow, g, 1, newRand())
	assert.Equal(t, 0.0, ps[0].X)
	assert.LessOrEqual(t, math.Abs(ps[0].Y-g.Centerline()), g.NormalWidth)
}

func TestAdvanceDegenerateGeometry(t *testing.T) {
	ps := []Particle{{X: 10, Y: 20, Speed: 3}}
	Advance(ps, physics.ReferenceFlow, Geometry{}, 1, newRand())
	assert.Equal(t, []Particle{{X: 10, Y: 20, Speed: 3}}, ps)
}

func TestAdvanceNonFiniteFlow(t *testing.T) {
	g := NewGeometry(1000, 400, 28)
	ps := []Particle{{X: 10, Y: 200, Speed: 3}, {X: 500, Y: 210}}
	Advance(ps, math.NaN(), g, 1, newRand())
	assert.Equal(t, []Particle{{X: 10, Y: 200}, {X: 500, Y: 210}}, ps)
}

func TestAdvanceDeterministic(t *testing.T) {
	g := NewGeometry(640, 360, 45)
	run := func() []Particle {
		rnd := newRand()
		ps := Seed(50, g, rnd)
		for i := 0; i < 300; i++ {
			Advance(ps, 4*physics.ReferenceFlow, g, 1, rnd)
		}
		return ps
	}
	assert.Equal(t, run(), run())
}
