package motionplan

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dualarm/referenceframe"
)

// default values for planning options.
const (
	// edge validation samples at least this finely, in radians of the largest joint move.
	defaultResolution = 0.1

	// probability that Sample returns the goal unchanged.
	defaultGoalBias = 0.05

	// half-width of the band wrist joints are drawn from.
	defaultBandTolerance = 0.05

	// edges are never checked at fewer points than this, endpoints included.
	minEdgeSteps = 3

	defaultRandSeed = 1
)

// defaultCostWeights weigh proximal joints more heavily since they move more mass.
var defaultCostWeights = [referenceframe.ArmDoF]float64{0.4, 0.3, 0.2, 0.1, 0.07, 0.05}

// PlannerOptions holds the knobs of a ConfigurationSpace.
type PlannerOptions struct {
	// Resolution is the largest wrapped joint move, in radians, between two checked points of an edge.
	Resolution float64

	// GoalBias is the probability that Sample returns the goal.
	GoalBias float64

	// CostWeights weigh each joint's squared move in EdgeCost.
	CostWeights [referenceframe.ArmDoF]float64

	// Sampling says how each joint is drawn by Sample.
	Sampling [referenceframe.ArmDoF]SamplingStrategy

	// RandSeed seeds the sampler.
	RandSeed int64
}

// DefaultPlannerOptions returns the options used when nothing else is configured: wrist joints 4 and 6 are drawn
// near an upright posture and everything else uniformly within limits.
func DefaultPlannerOptions() PlannerOptions {
	opts := PlannerOptions{
		Resolution:  defaultResolution,
		GoalBias:    defaultGoalBias,
		CostWeights: defaultCostWeights,
		RandSeed:    defaultRandSeed,
	}
	opts.Sampling[3] = NarrowBandSampling(-math.Pi/2, defaultBandTolerance)
	opts.Sampling[5] = NarrowBandSampling(3*math.Pi/2, defaultBandTolerance)
	return opts
}

func (opts PlannerOptions) validate() error {
	var err error
	if !(opts.Resolution > 0) {
		err = multierr.Append(err, errors.Errorf("resolution must be positive, got %v", opts.Resolution))
	}
	if !(opts.GoalBias >= 0 && opts.GoalBias <= 1) {
		err = multierr.Append(err, errors.Errorf("goal bias must be a probability, got %v", opts.GoalBias))
	}
	for i, w := range opts.CostWeights {
		if !(w >= 0) {
			err = multierr.Append(err, errors.Errorf("cost weight %d must not be negative, got %v", i, w))
		}
	}
	for i, s := range opts.Sampling {
		if sErr := s.validate(); sErr != nil {
			err = multierr.Append(err, errors.Wrapf(sErr, "joint %d", i))
		}
	}
	return err
}
