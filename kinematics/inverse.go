package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/dualarm/logging"
	"go.viam.com/dualarm/referenceframe"
	spatial "go.viam.com/dualarm/spatialmath"
	"go.viam.com/dualarm/utils"
)

const (
	// DefaultPositionTolerance is how far, in meters, the forward kinematics of an accepted candidate may land from
	// the requested position.
	DefaultPositionTolerance = 0.02

	// numBranches is the number of closed-form branches: 2 shoulder x 2 wrist x 2 elbow.
	numBranches = 8

	// domainSlack lets trig arguments that are out of [-1, 1] only by rounding count as on the boundary.
	domainSlack = 1e-9
)

// InverseKinematics solves for joint inputs reaching a target end-effector pose.
type InverseKinematics interface {
	Solve(target spatial.Pose) ([]Solution, error)
}

// SolverOptions configures candidate acceptance.
type SolverOptions struct {
	PositionTolerance float64
}

// DefaultSolverOptions returns the options used when nothing else is configured.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{PositionTolerance: DefaultPositionTolerance}
}

// AnalyticSolver is the closed-form solver for 6R arms whose last three axes intersect.
type AnalyticSolver struct {
	table  referenceframe.DHTable
	opts   SolverOptions
	logger logging.Logger
}

// NewAnalyticSolver returns a solver for the given DH table.
func NewAnalyticSolver(table referenceframe.DHTable, opts SolverOptions, logger logging.Logger) (*AnalyticSolver, error) {
	if !(opts.PositionTolerance > 0) {
		return nil, errors.Errorf("position tolerance must be positive, got %v", opts.PositionTolerance)
	}
	if table[5].D == 0 || table[1].A == 0 || table[2].A == 0 {
		return nil, errors.New("DH table has a zero wrist offset or upper/forearm length and has no closed-form solution")
	}
	return &AnalyticSolver{table: table, opts: opts, logger: logger}, nil
}

// Solve returns every candidate that survives principal-branch filtering and the forward-kinematics position
// check. An empty, nil-error result means the target is unreachable.
func (s *AnalyticSolver) Solve(target spatial.Pose) ([]Solution, error) {
	m := target.Matrix()
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("target pose is not finite")
		}
	}

	raw := inverseCandidates(s.table, target)
	goal := target.Point()
	sols := make([]Solution, 0, numBranches)
	principal := 0
	for _, c := range raw {
		if c.duplicate {
			continue
		}
		thetas, ok := principalBranch(c.thetas)
		if !ok {
			continue
		}
		principal++
		reached := forward(s.table, thetas[:]).Point()
		if reached.Sub(goal).Norm() >= s.opts.PositionTolerance {
			continue
		}
		sols = append(sols, Solution{Inputs: referenceframe.FloatsToInputs(thetas[:]), Exact: c.exact})
	}

	s.logger.Debugw("inverse kinematics",
		"candidates", len(raw),
		"principal", principal,
		"accepted", len(sols),
		"approximated", len(sols)-len(ExactSolutions(sols)),
	)
	return sols, nil
}

// SolveRows validates a row-major 4x4 (or 3x4) target matrix and solves for it.
func (s *AnalyticSolver) SolveRows(rows [][]float64) ([]Solution, error) {
	target, err := spatial.NewPoseFromRows(rows)
	if err != nil {
		return nil, err
	}
	return s.Solve(target)
}

// SolveForPoint solves for the end effector at pt with orientation Rz(gamma)*Ry(beta)*Rx(alpha).
// alpha = -pi, beta = gamma = 0 points the tool straight down.
func (s *AnalyticSolver) SolveForPoint(pt r3.Vector, alpha, beta, gamma float64) ([]Solution, error) {
	return s.Solve(spatial.NewPoseFromEuler(pt, alpha, beta, gamma))
}

// Inverse is the logger-free form of AnalyticSolver.Solve.
func Inverse(table referenceframe.DHTable, target spatial.Pose, tolerance float64) ([]Solution, error) {
	solver, err := NewAnalyticSolver(table, SolverOptions{PositionTolerance: tolerance}, logging.NewBlankLogger("ik"))
	if err != nil {
		return nil, err
	}
	return solver.Solve(target)
}

type candidate struct {
	thetas [referenceframe.ArmDoF]float64
	exact  bool
	// duplicate marks the second elbow branch when theta3 fell back to zero and both branches coincide.
	duplicate bool
}

// inverseCandidates runs the closed-form solve. Columns 0-3 and 4-7 are the two shoulder branches, within each
// the first and second pair are the two wrist branches, and within each pair the two elbow branches.
func inverseCandidates(table referenceframe.DHTable, t06 spatial.Pose) [numBranches]candidate {
	var c [numBranches]candidate
	for i := range c {
		c[i].exact = true
	}
	markRange := func(from, to int, ok bool) {
		if ok {
			return
		}
		for i := from; i < to; i++ {
			c[i].exact = false
		}
	}

	d6 := table[5].D
	d4 := table[1].D + table[2].D + table[3].D
	a2, a3 := table[1].A, table[2].A

	// joint 1 from the planar projection of the wrist center
	p05 := t06.TransformPoint(r3.Vector{Z: -d6})
	psi := math.Atan2(p05.Y, p05.X)
	phi, ok := acosChecked(d4 / math.Hypot(p05.X, p05.Y))
	markRange(0, numBranches, ok)
	for i := 0; i < 4; i++ {
		c[i].thetas[0] = psi + phi + math.Pi/2
		c[i+4].thetas[0] = psi - phi + math.Pi/2
	}

	// joint 5 from the wrist geometry
	p06 := t06.Point()
	for _, i := range []int{0, 4} {
		s1, c1 := math.Sincos(c[i].thetas[0])
		th5, ok := acosChecked((p06.X*s1 - p06.Y*c1 - d4) / d6)
		markRange(i, i+4, ok)
		c[i].thetas[4], c[i+1].thetas[4] = th5, th5
		c[i+2].thetas[4], c[i+3].thetas[4] = -th5, -th5
	}

	// joint 6 from the orientation, signed by sin(theta5) of the branch
	t60 := t06.Invert()
	for _, i := range []int{0, 2, 4, 6} {
		s1, c1 := math.Sincos(c[i].thetas[0])
		sign := 1.
		if math.Sin(c[i].thetas[4]) < 0 {
			sign = -1
		}
		th6 := math.Atan2(
			sign*(-t60.At(1, 0)*s1+t60.At(1, 1)*c1),
			sign*(t60.At(0, 0)*s1-t60.At(0, 1)*c1),
		)
		c[i].thetas[5], c[i+1].thetas[5] = th6, th6
	}

	// joint 3 from the elbow law of cosines
	for _, i := range []int{0, 2, 4, 6} {
		p13 := wristToElbow(table, t06, c[i].thetas)
		th3, ok := acosChecked((p13.X*p13.X + p13.Y*p13.Y - a2*a2 - a3*a3) / (2 * a2 * a3))
		markRange(i, i+2, ok)
		c[i].thetas[2], c[i+1].thetas[2] = th3, -th3
		c[i+1].duplicate = !ok
	}

	// joints 2 and 4 by back substitution
	for i := range c {
		t14 := shoulderToWrist(table, t06, c[i].thetas)
		p13 := t14.TransformPoint(r3.Vector{Y: -table[3].D})
		th2Offset, ok := asinChecked(-a3 * math.Sin(c[i].thetas[2]) / math.Hypot(p13.X, p13.Y))
		markRange(i, i+1, ok)
		c[i].thetas[1] = math.Atan2(-p13.Y, -p13.X) - th2Offset

		t34 := table[2].Transform(c[i].thetas[2]).Invert().
			Compose(table[1].Transform(c[i].thetas[1]).Invert()).
			Compose(t14)
		c[i].thetas[3] = math.Atan2(t34.At(1, 0), t34.At(0, 0))
	}
	return c
}

// shoulderToWrist returns T14 = inv(T01) * T06 * inv(T45 * T56).
func shoulderToWrist(table referenceframe.DHTable, t06 spatial.Pose, thetas [referenceframe.ArmDoF]float64) spatial.Pose {
	t01 := table[0].Transform(thetas[0])
	t46 := table[4].Transform(thetas[4]).Compose(table[5].Transform(thetas[5]))
	return t01.Invert().Compose(t06).Compose(t46.Invert())
}

func wristToElbow(table referenceframe.DHTable, t06 spatial.Pose, thetas [referenceframe.ArmDoF]float64) r3.Vector {
	return shoulderToWrist(table, t06, thetas).TransformPoint(r3.Vector{Y: -table[3].D})
}

// principalBranch wraps every angle into (-pi, pi] and rejects the candidate if any joint sits exactly on pi.
// This keeps one representative per solution rather than enforcing real joint limits.
func principalBranch(thetas [referenceframe.ArmDoF]float64) ([referenceframe.ArmDoF]float64, bool) {
	var out [referenceframe.ArmDoF]float64
	for i, th := range thetas {
		n := utils.NormalizeAngle(th)
		if math.IsNaN(n) || n >= math.Pi {
			return out, false
		}
		out[i] = n
	}
	return out, true
}

// acosChecked returns acos(v) and true for v in [-1, 1]; otherwise the zero fallback and false.
func acosChecked(v float64) (float64, bool) {
	if !(math.Abs(v) <= 1+domainSlack) {
		return 0, false
	}
	return math.Acos(utils.Clamp(v, -1, 1)), true
}

// asinChecked is acosChecked for asin.
func asinChecked(v float64) (float64, bool) {
	if !(math.Abs(v) <= 1+domainSlack) {
		return 0, false
	}
	return math.Asin(utils.Clamp(v, -1, 1)), true
}
