package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/dualarm/logging"
	"go.viam.com/dualarm/referenceframe"
	spatial "go.viam.com/dualarm/spatialmath"
)

var roundTripConfigs = [][]float64{
	{0.3, -1.2, 1.1, -0.8, 1.4, 0.5},
	{-1.0, -2.0, -1.3, 0.6, -0.9, 2.2},
	{2.5, -0.4, 0.7, -2.1, 0.6, -1.7},
	{-2.8, -1.5, 2.0, 1.2, 2.3, 0.1},
}

func containsConfig(sols []Solution, want []float64, eps float64) bool {
	for _, s := range sols {
		if !s.Exact {
			continue
		}
		if referenceframe.InputsMaxAngleDistance(s.Inputs, referenceframe.FloatsToInputs(want)) < eps {
			return true
		}
	}
	return false
}

func TestInverseRoundTrip(t *testing.T) {
	for _, table := range []referenceframe.DHTable{ur3eTable(t), ur5eTable(t)} {
		solver, err := NewAnalyticSolver(table, DefaultSolverOptions(), logging.NewTestLogger(t))
		test.That(t, err, test.ShouldBeNil)
		for _, cfg := range roundTripConfigs {
			target, err := Forward(table, referenceframe.FloatsToInputs(cfg))
			test.That(t, err, test.ShouldBeNil)

			sols, err := solver.Solve(target)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, len(sols), test.ShouldBeGreaterThan, 0)
			test.That(t, len(sols), test.ShouldBeLessThanOrEqualTo, 8)
			test.That(t, containsConfig(sols, cfg, 1e-6), test.ShouldBeTrue)

			for _, s := range sols {
				test.That(t, len(s.Inputs), test.ShouldEqual, 6)
				for _, in := range s.Inputs {
					test.That(t, in.Value, test.ShouldBeGreaterThan, -math.Pi)
					test.That(t, in.Value, test.ShouldBeLessThan, math.Pi)
				}
				reached, err := Forward(table, s.Inputs)
				test.That(t, err, test.ShouldBeNil)
				test.That(t, reached.Point().Sub(target.Point()).Norm(), test.ShouldBeLessThan, DefaultPositionTolerance)
			}
		}
	}
}

func TestInverseRandomSweep(t *testing.T) {
	//nolint:gosec
	randseed := rand.New(rand.NewSource(1))
	for _, table := range []referenceframe.DHTable{ur3eTable(t), ur5eTable(t)} {
		solver, err := NewAnalyticSolver(table, DefaultSolverOptions(), logging.NewBlankLogger("ik"))
		test.That(t, err, test.ShouldBeNil)
		for n := 0; n < 500; n++ {
			cfg := make([]float64, 6)
			for i := range cfg {
				cfg[i] = (2*randseed.Float64() - 1) * math.Pi
			}
			target, err := Forward(table, referenceframe.FloatsToInputs(cfg))
			test.That(t, err, test.ShouldBeNil)

			sols, err := solver.Solve(target)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, len(ExactSolutions(sols)), test.ShouldBeGreaterThan, 0)
			for _, s := range sols {
				reached, err := Forward(table, s.Inputs)
				test.That(t, err, test.ShouldBeNil)
				test.That(t, reached.Point().Sub(target.Point()).Norm(), test.ShouldBeLessThan, DefaultPositionTolerance)
			}
		}
	}
}

func TestInverseApproximatedCandidates(t *testing.T) {
	table := ur5eTable(t)
	cfg := []float64{-0.8309, 2.2284, 0.6270, 2.3502, 0.7438, -2.7472}
	target, err := Forward(table, referenceframe.FloatsToInputs(cfg))
	test.That(t, err, test.ShouldBeNil)

	sols, err := Inverse(table, target, DefaultPositionTolerance)
	test.That(t, err, test.ShouldBeNil)

	approximated := 0
	for _, s := range sols {
		if s.Approximated() {
			approximated++
			test.That(t, s.Inputs[2].Value, test.ShouldAlmostEqual, 0, 1e-12)
		}
		reached, err := Forward(table, s.Inputs)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, reached.Point().Sub(target.Point()).Norm(), test.ShouldBeLessThan, DefaultPositionTolerance)
	}
	test.That(t, approximated, test.ShouldBeGreaterThan, 0)

	exact := ExactSolutions(sols)
	test.That(t, len(exact), test.ShouldEqual, len(sols)-approximated)
	test.That(t, containsConfig(exact, cfg, 1e-6), test.ShouldBeTrue)
	for _, s := range exact {
		test.That(t, s.Approximated(), test.ShouldBeFalse)
	}

	// a zero elbow fallback collapses both elbow branches into one candidate
	for i := range sols {
		for j := i + 1; j < len(sols); j++ {
			dist := referenceframe.InputsMaxAngleDistance(sols[i].Inputs, sols[j].Inputs)
			test.That(t, dist, test.ShouldBeGreaterThan, 1e-9)
		}
	}
}

func TestInverseCandidatesMarkElbowDuplicate(t *testing.T) {
	table := ur5eTable(t)
	target, err := Forward(table, referenceframe.FloatsToInputs([]float64{-0.8309, 2.2284, 0.6270, 2.3502, 0.7438, -2.7472}))
	test.That(t, err, test.ShouldBeNil)

	raw := inverseCandidates(table, target)
	duplicates := 0
	for i := 0; i < numBranches; i += 2 {
		test.That(t, raw[i].duplicate, test.ShouldBeFalse)
		if raw[i+1].duplicate {
			duplicates++
			test.That(t, raw[i+1].exact, test.ShouldBeFalse)
			same := referenceframe.InputsMaxAngleDistance(
				referenceframe.FloatsToInputs(raw[i+1].thetas[:]),
				referenceframe.FloatsToInputs(raw[i].thetas[:]),
			)
			test.That(t, same, test.ShouldBeLessThan, 1e-12)
		}
	}
	test.That(t, duplicates, test.ShouldBeGreaterThan, 0)
}

func TestInverseExactSolutionsMatchOrientation(t *testing.T) {
	table := ur5eTable(t)
	target, err := Forward(table, referenceframe.FloatsToInputs(roundTripConfigs[0]))
	test.That(t, err, test.ShouldBeNil)
	sols, err := Inverse(table, target, DefaultPositionTolerance)
	test.That(t, err, test.ShouldBeNil)
	exact := ExactSolutions(sols)
	test.That(t, len(exact), test.ShouldBeGreaterThan, 0)
	for _, s := range exact {
		reached, err := Forward(table, s.Inputs)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, spatial.PoseAlmostCoincident(reached, target, 1e-6), test.ShouldBeTrue)
	}
}

func TestInverseUnreachable(t *testing.T) {
	sols, err := Inverse(ur5eTable(t), spatial.NewPoseFromPoint(r3.Vector{X: 5, Y: 5, Z: 5}), DefaultPositionTolerance)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sols, test.ShouldBeEmpty)
}

func TestSolveRowsShape(t *testing.T) {
	solver, err := NewAnalyticSolver(ur5eTable(t), DefaultSolverOptions(), logging.NewBlankLogger("ik"))
	test.That(t, err, test.ShouldBeNil)

	_, err = solver.SolveRows([][]float64{{1, 0, 0, 0}, {0, 1, 0, 0}})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = solver.SolveRows([][]float64{
		{1, 0, 0, 0.3},
		{0, 1, 0, 0.1},
		{0, 0, 1, 0.2},
		{0, 0, 1, 1},
	})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = solver.SolveRows([][]float64{
		{1, 0, 0, 0.3},
		{0, -1, 0, 0.1},
		{0, 0, -1, 0.2},
	})
	test.That(t, err, test.ShouldBeNil)
}

func TestSolveForPointDown(t *testing.T) {
	table := ur5eTable(t)
	solver, err := NewAnalyticSolver(table, DefaultSolverOptions(), logging.NewBlankLogger("ik"))
	test.That(t, err, test.ShouldBeNil)
	pt := r3.Vector{X: -0.4, Y: -0.3, Z: 0.2}
	sols, err := solver.SolveForPoint(pt, -math.Pi, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(sols), test.ShouldBeGreaterThan, 0)
	for _, s := range sols {
		reached, err := Forward(table, s.Inputs)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, reached.Point().Sub(pt).Norm(), test.ShouldBeLessThan, DefaultPositionTolerance)
	}
}

func TestSolverOptionsValidation(t *testing.T) {
	_, err := NewAnalyticSolver(ur5eTable(t), SolverOptions{}, logging.NewBlankLogger("ik"))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewAnalyticSolver(ur5eTable(t), SolverOptions{PositionTolerance: math.NaN()}, logging.NewBlankLogger("ik"))
	test.That(t, err, test.ShouldNotBeNil)

	table := ur5eTable(t)
	table[5].D = 0
	_, err = NewAnalyticSolver(table, DefaultSolverOptions(), logging.NewBlankLogger("ik"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSolveLogsSummary(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	table := ur5eTable(t)
	solver, err := NewAnalyticSolver(table, DefaultSolverOptions(), logger)
	test.That(t, err, test.ShouldBeNil)
	target, err := Forward(table, referenceframe.FloatsToInputs(roundTripConfigs[1]))
	test.That(t, err, test.ShouldBeNil)
	_, err = solver.Solve(target)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logs.FilterMessage("inverse kinematics").Len(), test.ShouldEqual, 1)
}

func TestPrincipalBranch(t *testing.T) {
	out, ok := principalBranch([6]float64{3 * math.Pi / 2, -3 * math.Pi / 2, 0, 0.5, 2 * math.Pi, -0.5})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, out[0], test.ShouldAlmostEqual, -math.Pi/2, 1e-12)
	test.That(t, out[1], test.ShouldAlmostEqual, math.Pi/2, 1e-12)
	test.That(t, out[4], test.ShouldAlmostEqual, 0, 1e-12)

	_, ok = principalBranch([6]float64{math.Pi, 0, 0, 0, 0, 0})
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = principalBranch([6]float64{0, 0, math.NaN(), 0, 0, 0})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestBestSolution(t *testing.T) {
	_, ok := BestSolution(nil, nil)
	test.That(t, ok, test.ShouldBeFalse)

	seed := referenceframe.FloatsToInputs([]float64{0, 0, 0, 0, 0, 0})
	near := Solution{Inputs: referenceframe.FloatsToInputs([]float64{0.1, 0, 0, 0, 0, 0}), Exact: false}
	far := Solution{Inputs: referenceframe.FloatsToInputs([]float64{1, 0, 0, 0, 0, 0}), Exact: true}
	farther := Solution{Inputs: referenceframe.FloatsToInputs([]float64{0, 2, 0, 0, 0, 0}), Exact: true}

	best, ok := BestSolution([]Solution{near, farther, far}, seed)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, best, test.ShouldResemble, far)

	best, ok = BestSolution([]Solution{near}, seed)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, best.Approximated(), test.ShouldBeTrue)
}
