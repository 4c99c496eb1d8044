// Package motionplan provides the configuration-space primitives a sampling-based planner is built from:
// collision checking of a sphere-approximated arm, edge validation, edge cost and biased sampling.
package motionplan

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/dualarm/kinematics"
	"go.viam.com/dualarm/logging"
	"go.viam.com/dualarm/referenceframe"
	spatial "go.viam.com/dualarm/spatialmath"
	"go.viam.com/dualarm/utils"
)

// ConfigurationSpace answers collision and planning queries for one robot among a set of spherical obstacles.
// Obstacles are in the world frame. It is not safe for concurrent use: Sample advances a shared random source.
type ConfigurationSpace struct {
	model     *referenceframe.Model
	obstacles []spatial.Sphere
	policy    CollisionPolicy
	opts      PlannerOptions
	randseed  *rand.Rand
	logger    logging.Logger
}

// NewConfigurationSpace validates the options and returns a configuration space for model.
func NewConfigurationSpace(
	model *referenceframe.Model,
	obstacles []spatial.Sphere,
	policy CollisionPolicy,
	opts PlannerOptions,
	logger logging.Logger,
) (*ConfigurationSpace, error) {
	if model == nil {
		return nil, errors.New("configuration space requires a model")
	}
	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid planner options")
	}
	cs := &ConfigurationSpace{
		model:  model,
		policy: policy,
		opts:   opts,
		//nolint:gosec
		randseed: rand.New(rand.NewSource(opts.RandSeed)),
		logger:   logger,
	}
	if err := cs.SetObstacles(obstacles); err != nil {
		return nil, err
	}
	return cs, nil
}

// SetObstacles replaces the obstacle set. Callers swap obstacles between control ticks, never during a query.
func (cs *ConfigurationSpace) SetObstacles(obstacles []spatial.Sphere) error {
	for i, o := range obstacles {
		if _, err := spatial.NewSphere(o.Center, o.Radius); err != nil {
			return errors.Wrapf(err, "obstacle %d", i)
		}
	}
	cs.obstacles = append([]spatial.Sphere(nil), obstacles...)
	return nil
}

// Obstacles returns the current obstacle set.
func (cs *ConfigurationSpace) Obstacles() []spatial.Sphere {
	return append([]spatial.Sphere(nil), cs.obstacles...)
}

// Model returns the robot model.
func (cs *ConfigurationSpace) Model() *referenceframe.Model {
	return cs.model
}

// Policy returns the collision policy.
func (cs *ConfigurationSpace) Policy() CollisionPolicy {
	return cs.policy
}

// WorldSpheres returns, per link, the link's spheres placed in the world frame at conf.
func (cs *ConfigurationSpace) WorldSpheres(conf []referenceframe.Input) ([][]spatial.Sphere, error) {
	poses, err := kinematics.LinkPoses(cs.model.DH(), conf)
	if err != nil {
		return nil, err
	}
	base := cs.model.BaseToWorld()
	model := cs.model.Spheres()
	out := make([][]spatial.Sphere, len(model))
	for i, link := range model {
		pose := base.Compose(poses[i])
		out[i] = make([]spatial.Sphere, 0, len(link.Spheres))
		for _, s := range link.Spheres {
			out[i] = append(out[i], s.Transform(pose))
		}
	}
	return out, nil
}

// CheckCollision returns the first failed check at conf, or nil if conf is free. Checks run in order: self,
// obstacle, floor, workspace bound.
func (cs *ConfigurationSpace) CheckCollision(conf []referenceframe.Input) (*Collision, error) {
	spheres, err := cs.WorldSpheres(conf)
	if err != nil {
		return nil, err
	}
	ls := linkSpheres(spheres)
	if c := ls.selfCollision(); c != nil {
		return c, nil
	}
	if c := ls.obstacleCollision(cs.obstacles); c != nil {
		return c, nil
	}
	if cs.policy.CheckFloor {
		if c := ls.floorCollision(); c != nil {
			return c, nil
		}
	}
	return ls.boundViolation(cs.policy.Bounds), nil
}

// IsInCollision reports whether conf fails any check.
func (cs *ConfigurationSpace) IsInCollision(conf []referenceframe.Input) (bool, error) {
	c, err := cs.CheckCollision(conf)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

// LocalPlanner reports whether the straight joint-space segment from one configuration to another is free,
// checking evenly spaced points including both ends. The number of points comes from the wrapped joint
// difference but the points are interpolated on the raw values, so an edge from 3 to -3 sweeps through 0 with
// only a few checks; unwrap the endpoint relative to the start first to take the short way around.
func (cs *ConfigurationSpace) LocalPlanner(from, to []referenceframe.Input) (bool, error) {
	if err := cs.model.CheckInputs(from); err != nil {
		return false, err
	}
	if err := cs.model.CheckInputs(to); err != nil {
		return false, err
	}
	steps := cs.edgeSteps(from, to)
	for i := 0; i < steps; i++ {
		conf := referenceframe.InterpolateInputs(from, to, float64(i)/float64(steps-1))
		c, err := cs.CheckCollision(conf)
		if err != nil {
			return false, err
		}
		if c != nil {
			cs.logger.Debugw("edge rejected", "step", i, "steps", steps, "collision", c.String())
			return false, nil
		}
	}
	return true, nil
}

// edgeSteps is max(minEdgeSteps, ceil(largest wrapped joint move / resolution)).
func (cs *ConfigurationSpace) edgeSteps(from, to []referenceframe.Input) int {
	dist := referenceframe.InputsMaxAngleDistance(from, to)
	return utils.MaxInt(minEdgeSteps, int(math.Ceil(dist/cs.opts.Resolution)))
}

// EdgeCost is the weighted joint-space distance sqrt(sum w_i * (a_i - b_i)^2).
func (cs *ConfigurationSpace) EdgeCost(from, to []referenceframe.Input) (float64, error) {
	if err := cs.model.CheckInputs(from); err != nil {
		return 0, err
	}
	if err := cs.model.CheckInputs(to); err != nil {
		return 0, err
	}
	return WeightedJointDistance(cs.opts.CostWeights[:], from, to), nil
}

// WeightedJointDistance is the weighted Euclidean joint-space distance between two equal-length configurations.
func WeightedJointDistance(weights []float64, from, to []referenceframe.Input) float64 {
	diff := referenceframe.InputsToFloats(from)
	floats.Sub(diff, referenceframe.InputsToFloats(to))
	floats.Mul(diff, diff)
	return math.Sqrt(floats.Dot(weights, diff))
}

// Sample draws a configuration: the goal itself with probability GoalBias, otherwise each joint according to its
// sampling strategy.
func (cs *ConfigurationSpace) Sample(goal []referenceframe.Input) ([]referenceframe.Input, error) {
	if err := cs.model.CheckInputs(goal); err != nil {
		return nil, err
	}
	if cs.randseed.Float64() < cs.opts.GoalBias {
		return append([]referenceframe.Input(nil), goal...), nil
	}
	limits := cs.model.DoF()
	conf := make([]referenceframe.Input, referenceframe.ArmDoF)
	for i := range conf {
		conf[i] = referenceframe.Input{Value: cs.opts.Sampling[i].draw(limits[i], cs.randseed)}
	}
	return conf, nil
}
