package kinematics

import (
	"math"

	"go.viam.com/dualarm/referenceframe"
)

// Solution is one inverse kinematics candidate. Exact is false when some step of the closed-form solve had no
// real answer and fell back to zero for that angle; such a candidate still passed the forward-kinematics
// position check but may not have the requested orientation.
type Solution struct {
	Inputs []referenceframe.Input
	Exact  bool
}

// Approximated is the complement of Exact.
func (s Solution) Approximated() bool {
	return !s.Exact
}

// ExactSolutions filters out approximated candidates.
func ExactSolutions(sols []Solution) []Solution {
	exact := make([]Solution, 0, len(sols))
	for _, s := range sols {
		if s.Exact {
			exact = append(exact, s)
		}
	}
	return exact
}

// BestSolution picks the candidate nearest to seed by largest wrapped joint difference, preferring exact
// candidates over approximated ones. ok is false when sols is empty.
func BestSolution(sols []Solution, seed []referenceframe.Input) (best Solution, ok bool) {
	bestDist := math.Inf(1)
	for _, s := range sols {
		if ok && best.Exact && !s.Exact {
			continue
		}
		dist := referenceframe.InputsMaxAngleDistance(s.Inputs, seed)
		if !ok || (s.Exact && !best.Exact) || dist < bestDist {
			best, bestDist, ok = s, dist, true
		}
	}
	return best, ok
}
