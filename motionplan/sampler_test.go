package motionplan

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/dualarm/logging"
	"go.viam.com/dualarm/referenceframe"
	spatial "go.viam.com/dualarm/spatialmath"
)

func TestSampleStrategies(t *testing.T) {
	opts := DefaultPlannerOptions()
	opts.GoalBias = 0
	cs, err := NewConfigurationSpace(
		testModel(t, nil, spatial.NewZeroPose()), nil, OpenCollisionPolicy(), opts, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	for i := 0; i < 1000; i++ {
		conf, err := cs.Sample(zeroConf)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(conf), test.ShouldEqual, 6)
		for j, in := range conf {
			switch j {
			case 3:
				test.That(t, math.Abs(in.Value+math.Pi/2), test.ShouldBeLessThanOrEqualTo, defaultBandTolerance+1e-9)
			case 5:
				test.That(t, math.Abs(in.Value-3*math.Pi/2), test.ShouldBeLessThanOrEqualTo, defaultBandTolerance+1e-9)
			default:
				test.That(t, in.Value, test.ShouldBeGreaterThanOrEqualTo, -2*math.Pi)
				test.That(t, in.Value, test.ShouldBeLessThanOrEqualTo, 2*math.Pi)
			}
		}
	}
}

func TestSampleGoalBias(t *testing.T) {
	goal := referenceframe.FloatsToInputs([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})

	opts := DefaultPlannerOptions()
	opts.GoalBias = 1
	cs, err := NewConfigurationSpace(
		testModel(t, nil, spatial.NewZeroPose()), nil, OpenCollisionPolicy(), opts, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	conf, err := cs.Sample(goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf, test.ShouldResemble, goal)
	conf[0].Value = 7
	test.That(t, goal[0].Value, test.ShouldEqual, 0.1)

	cs, err = NewConfigurationSpace(
		testModel(t, nil, spatial.NewZeroPose()), nil, OpenCollisionPolicy(), DefaultPlannerOptions(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	hits := 0
	for i := 0; i < 10000; i++ {
		conf, err := cs.Sample(goal)
		test.That(t, err, test.ShouldBeNil)
		if referenceframe.InputsL2Distance(conf, goal) == 0 {
			hits++
		}
	}
	test.That(t, hits, test.ShouldBeBetween, 350, 650)
}

func TestSampleDeterministic(t *testing.T) {
	newSpace := func() *ConfigurationSpace {
		cs, err := NewConfigurationSpace(
			testModel(t, nil, spatial.NewZeroPose()), nil, OpenCollisionPolicy(), DefaultPlannerOptions(), logging.NewTestLogger(t))
		test.That(t, err, test.ShouldBeNil)
		return cs
	}
	a, b := newSpace(), newSpace()
	for i := 0; i < 20; i++ {
		sa, err := a.Sample(zeroConf)
		test.That(t, err, test.ShouldBeNil)
		sb, err := b.Sample(zeroConf)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, sa, test.ShouldResemble, sb)
	}
}

func TestPlannerOptionsValidation(t *testing.T) {
	test.That(t, DefaultPlannerOptions().validate(), test.ShouldBeNil)

	opts := DefaultPlannerOptions()
	opts.Resolution = 0
	opts.GoalBias = 1.5
	opts.Sampling[0] = NarrowBandSampling(0, -1)
	err := opts.validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "resolution")
	test.That(t, err.Error(), test.ShouldContainSubstring, "goal bias")
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint 0")

	opts = DefaultPlannerOptions()
	opts.Sampling[2] = SamplingStrategy{Kind: SamplingKind(9)}
	test.That(t, opts.validate(), test.ShouldNotBeNil)

	_, err = NewConfigurationSpace(nil, nil, OpenCollisionPolicy(), DefaultPlannerOptions(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
