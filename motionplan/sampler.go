package motionplan

import (
	"math/rand"

	"github.com/pkg/errors"

	"go.viam.com/dualarm/referenceframe"
)

// SamplingKind selects how a joint is drawn.
type SamplingKind int

const (
	// Uniform draws within the joint's mechanical limits.
	Uniform SamplingKind = iota
	// NarrowBand draws within Tolerance of Center.
	NarrowBand
)

// SamplingStrategy is how one joint is drawn by Sample. The zero value is Uniform.
type SamplingStrategy struct {
	Kind      SamplingKind
	Center    float64
	Tolerance float64
}

// UniformSampling draws a joint anywhere within its limits.
func UniformSampling() SamplingStrategy {
	return SamplingStrategy{Kind: Uniform}
}

// NarrowBandSampling draws a joint from [center-tolerance, center+tolerance].
func NarrowBandSampling(center, tolerance float64) SamplingStrategy {
	return SamplingStrategy{Kind: NarrowBand, Center: center, Tolerance: tolerance}
}

func (s SamplingStrategy) validate() error {
	switch s.Kind {
	case Uniform:
		return nil
	case NarrowBand:
		if !(s.Tolerance >= 0) {
			return errors.Errorf("narrow band tolerance must not be negative, got %v", s.Tolerance)
		}
		return nil
	default:
		return errors.Errorf("unknown sampling kind %d", s.Kind)
	}
}

func (s SamplingStrategy) draw(limit referenceframe.Limit, randseed *rand.Rand) float64 {
	if s.Kind == NarrowBand {
		return s.Center - s.Tolerance + randseed.Float64()*2*s.Tolerance
	}
	return limit.Min + randseed.Float64()*limit.Range()
}
