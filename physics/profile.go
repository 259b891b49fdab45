package physics

import "math"

const DefaultProfileSteps = 10

// 三个区段的边界 (沿程百分比) 以及各区段承担的压降比例
const (
	stenosisStart = 30.0
	stenosisEnd   = 50.0

	preStenosisShare  = 0.1
	stenosisShare     = 0.8
	postStenosisShare = 0.1
)

type Sample struct {
	Position float64 `json:"position" yaml:"position"`
	Pressure float64 `json:"pressure" yaml:"pressure"`
}

// Profile samples the pressure along the conduit at steps+1 evenly spaced
// positions in [0, 100]. Pressures are rounded for display.
func Profile(effectiveUpstream, effectiveDownstream float64, steps int) []Sample {
	if steps < 1 {
		steps = DefaultProfileSteps
	}
	direction := 1.0
	if effectiveUpstream < effectiveDownstream {
		direction = -1
	}
	drop := math.Abs(effectiveUpstream - effectiveDownstream)

	samples := make([]Sample, 0, steps+1)
	for i := 0; i <= steps; i++ {
		position := 100 * float64(i) / float64(steps)
		pressure := effectiveUpstream - direction*drop*dropFraction(position)
		samples = append(samples, Sample{
			Position: position,
			Pressure: math.Round(pressure),
		})
	}
	return samples
}

// dropFraction is the share of the total drop accumulated up to position.
func dropFraction(position float64) float64 {
	switch {
	case position < stenosisStart:
		return preStenosisShare * position / stenosisStart
	case position < stenosisEnd:
		return preStenosisShare + stenosisShare*(position-stenosisStart)/(stenosisEnd-stenosisStart)
	default:
		if position > 100 {
			position = 100
		}
		return preStenosisShare + stenosisShare + postStenosisShare*(position-stenosisEnd)/(100-stenosisEnd)
	}
}

// ComputePressureProfile adjusts the nominal pressures for constriction and
// samples the profile.
func ComputePressureProfile(upstream, downstream, constriction float64, steps int) []Sample {
	p := Adjust(upstream, downstream, constriction)
	return Profile(p.Upstream, p.Downstream, steps)
}
