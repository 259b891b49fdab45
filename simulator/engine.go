package simulator

import (
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"stenosis/config"
	"stenosis/model"
	"stenosis/particle"
	"stenosis/physics"
)

// Frame is what the renderer draws after one tick.
type Frame struct {
	Tick      uint64              `json:"tick"`
	Flow      float64             `json:"flow"`
	State     string              `json:"state"`
	Geometry  particle.Geometry   `json:"geometry"`
	Particles []particle.Particle `json:"particles"`
}

// Engine is the state of one simulation session: the current parameters,
// their solved flow and profile, and the particle field. It is not safe for
// concurrent use; Session serializes access to it.
type Engine struct {
	env    model.Env
	steps  int
	result physics.Result
	field  *particle.Field
	tick   uint64
}

func NewEngine(cfg config.Simulation, rnd *rand.Rand) *Engine {
	env := model.DefaultEnv()
	return &Engine{
		env:    env,
		steps:  cfg.ProfileSteps,
		result: physics.Evaluate(env, cfg.ProfileSteps),
		field:  particle.NewField(cfg.Particles, env.ConstrictionPercent, rnd),
	}
}

// SetEnv replaces the parameters. The constriction is clamped to the host
// range first; non-finite pressures are rejected and leave the engine as it
// was.
func (e *Engine) SetEnv(env model.Env) (physics.Result, error) {
	env = env.Clamp()
	if err := env.Validate(); err != nil {
		return e.result, fmt.Errorf("set env: %w", err)
	}
	e.env = env
	e.result = physics.Evaluate(env, e.steps)
	e.field.SetConstriction(env.ConstrictionPercent)
	log.WithFields(log.Fields{
		"upstream":     env.UpstreamPressure,
		"downstream":   env.DownstreamPressure,
		"constriction": env.ConstrictionPercent,
		"flow":         e.result.Flow,
	}).Info("设置仿真参数")
	return e.result, nil
}

// Resize applies new drawing surface dimensions before the next tick.
func (e *Engine) Resize(canvas model.Canvas) error {
	if err := e.field.Resize(canvas.Width, canvas.Height); err != nil {
		log.WithFields(log.Fields{
			"width":  canvas.Width,
			"height": canvas.Height,
		}).Warn("画布尺寸无效, 暂停粒子更新")
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}

// Step advances the particle field by dt frames and returns the new frame.
func (e *Engine) Step(dt float64) Frame {
	e.tick++
	e.field.Tick(e.result.Flow, dt)
	return e.Frame()
}

// Frame snapshots the current state.
func (e *Engine) Frame() Frame {
	return Frame{
		Tick:      e.tick,
		Flow:      e.result.Flow,
		State:     e.field.State().String(),
		Geometry:  e.field.Geometry(),
		Particles: e.field.Snapshot(),
	}
}

func (e *Engine) Env() model.Env {
	return e.env
}

func (e *Engine) Result() physics.Result {
	return e.result
}
