package particle

import (
	"math/rand"

	log "github.com/sirupsen/logrus"
)

type State int

const (
	// Uninitialized: no usable canvas geometry yet.
	Uninitialized State = iota
	// Running: particles seeded and advancing every tick.
	Running
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Field owns a fixed-size particle collection and the geometry it moves in.
// A Field is not safe for concurrent use.
type Field struct {
	count        int
	constriction float64
	geometry     Geometry
	particles    []Particle
	state        State
	rnd          *rand.Rand
}

func NewField(count int, constriction float64, rnd *rand.Rand) *Field {
	if count < 0 {
		count = 0
	}
	return &Field{
		count:        count,
		constriction: constriction,
		rnd:          rnd,
	}
}

// Resize recomputes the geometry for a new drawing surface. The collection
// is reseeded whenever the dimensions change. A canvas without area moves
// the field back to Uninitialized.
func (f *Field) Resize(width, height float64) error {
	g := NewGeometry(width, height, f.constriction)
	if err := g.Validate(); err != nil {
		f.geometry = g
		f.particles = nil
		f.state = Uninitialized
		return err
	}

	if f.state == Running && g.Width == f.geometry.Width && g.Height == f.geometry.Height {
		f.geometry = g
		return nil
	}
	f.geometry = g
	f.particles = Seed(f.count, g, f.rnd)
	f.state = Running
	log.WithFields(log.Fields{
		"width":     width,
		"height":    height,
		"particles": f.count,
	}).Debug("粒子重新播种")
	return nil
}

// SetConstriction narrows the conduit without reseeding.
func (f *Field) SetConstriction(constriction float64) {
	f.constriction = constriction
	f.geometry = NewGeometry(f.geometry.Width, f.geometry.Height, constriction)
}

// Tick advances the field by dt frames. It does nothing until the field is
// Running.
func (f *Field) Tick(flow, dt float64) {
	if f.state != Running {
		return
	}
	Advance(f.particles, flow, f.geometry, dt, f.rnd)
}

func (f *Field) State() State {
	return f.state
}

func (f *Field) Geometry() Geometry {
	return f.geometry
}

// Particles returns the live collection. Callers must not keep it across
// ticks; use Snapshot for that.
func (f *Field) Particles() []Particle {
	return f.particles
}

func (f *Field) Snapshot() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}
