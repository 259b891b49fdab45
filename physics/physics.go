// Package physics holds the steady state flow model of a conduit with a
// single stenosis. Every function here is pure.
package physics

import (
	"math"

	"stenosis/model"
)

const (
	// 生理基线狭窄率, 此时有效压力等于名义压力
	BaselineConstriction = 28.0

	// 狭窄率每偏离基线 1%, 上游有效压力的修正量
	AdjustmentGain = 0.5

	// ReferenceFlow is the resting flow, mL/min, of the default configuration
	// (120/5 mmHg, 28%). Particle speeds are normalised against it.
	ReferenceFlow = 5000.0

	// BaseResistance is the resistance of the open conduit, calibrated so that
	// Solve(120, 5, 28) == ReferenceFlow: 115 / 5000 * 0.72^4.
	BaseResistance = 0.00618098688
)

type EffectivePressures struct {
	Upstream   float64 `json:"upstream" yaml:"upstream"`
	Downstream float64 `json:"downstream" yaml:"downstream"`
}

// Adjust maps nominal pressures to effective boundary pressures. Only the
// upstream side is corrected.
func Adjust(upstream, downstream, constriction float64) EffectivePressures {
	return EffectivePressures{
		Upstream:   upstream + (constriction-BaselineConstriction)*AdjustmentGain,
		Downstream: downstream,
	}
}

// Resistance follows Poiseuille: the open fraction scales the radius, and
// resistance goes with the inverse fourth power of the radius.
// constriction must be below 100.
func Resistance(constriction float64) float64 {
	return BaseResistance * math.Pow(100/(100-constriction), 4)
}

// Solve returns the signed volumetric flow in mL/min; positive means
// upstream to downstream. At constriction 100 the result is not finite.
func Solve(effectiveUpstream, effectiveDownstream, constriction float64) float64 {
	dp := effectiveUpstream - effectiveDownstream
	if dp == 0 {
		return 0
	}
	return dp / Resistance(constriction)
}

// ComputeFlow adjusts the nominal pressures and solves for the flow.
func ComputeFlow(upstream, downstream, constriction float64) float64 {
	p := Adjust(upstream, downstream, constriction)
	return Solve(p.Upstream, p.Downstream, constriction)
}

// Result is everything the host displays after one parameter change.
type Result struct {
	Env        model.Env          `json:"env" yaml:"env"`
	Effective  EffectivePressures `json:"effective" yaml:"effective"`
	Resistance float64            `json:"resistance" yaml:"resistance"`
	Flow       float64            `json:"flow" yaml:"flow"`
	Profile    []Sample           `json:"profile" yaml:"profile"`
}

// Evaluate recomputes flow and pressure profile for env. The caller is
// expected to have clamped env.
func Evaluate(env model.Env, steps int) Result {
	p := Adjust(env.UpstreamPressure, env.DownstreamPressure, env.ConstrictionPercent)
	return Result{
		Env:        env,
		Effective:  p,
		Resistance: Resistance(env.ConstrictionPercent),
		Flow:       Solve(p.Upstream, p.Downstream, env.ConstrictionPercent),
		Profile:    Profile(p.Upstream, p.Downstream, steps),
	}
}
