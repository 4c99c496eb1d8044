package motionplan

import (
	"math"

	"go.viam.com/dualarm/referenceframe"
)

// SegmentMetric scores the move between two configurations.
type SegmentMetric func(from, to []referenceframe.Input) float64

// EdgeValidator decides whether a straight joint-space edge is traversable.
type EdgeValidator interface {
	LocalPlanner(from, to []referenceframe.Input) (bool, error)
}

// Plan is a joint-space path, one configuration per waypoint.
type Plan [][]referenceframe.Input

// Evaluate sums metric over consecutive waypoints. A plan with fewer than two waypoints has no edges to
// traverse and scores +Inf.
func (p Plan) Evaluate(metric SegmentMetric) float64 {
	if len(p) < 2 {
		return math.Inf(1)
	}
	total := 0.
	for i := 0; i < len(p)-1; i++ {
		total += metric(p[i], p[i+1])
	}
	return total
}

// Validate checks every edge, returning an error naming the first one in collision.
func (p Plan) Validate(v EdgeValidator) error {
	for i := 0; i < len(p)-1; i++ {
		ok, err := v.LocalPlanner(p[i], p[i+1])
		if err != nil {
			return err
		}
		if !ok {
			return NewInvalidEdgeError(i)
		}
	}
	return nil
}

// CostMetric returns EdgeCost as a SegmentMetric, for use with Plan.Evaluate.
func (cs *ConfigurationSpace) CostMetric() SegmentMetric {
	weights := cs.opts.CostWeights
	return func(from, to []referenceframe.Input) float64 {
		return WeightedJointDistance(weights[:], from, to)
	}
}
