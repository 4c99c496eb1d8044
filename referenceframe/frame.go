// Package referenceframe describes the robot models the kinematics and planning packages operate on:
// joint inputs and limits, the Denavit-Hartenberg table, the per-link sphere approximation of the arm,
// tool offsets in the end-effector frame and the mount of the robot base in the shared world frame.
package referenceframe

import (
	"math"
	"math/rand"
)

// Limit represents the limits of motion for a joint, in radians.
type Limit struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the closed interval.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Range returns the width of the limit.
func (l Limit) Range() float64 {
	return math.Abs(l.Max - l.Min)
}

// RandomInputs will produce a list of valid, in-bounds inputs for the given limits.
func RandomInputs(limits []Limit, rSeed *rand.Rand) []Input {
	if rSeed == nil {
		//nolint:gosec
		rSeed = rand.New(rand.NewSource(1))
	}
	pos := make([]Input, 0, len(limits))
	for _, lim := range limits {
		pos = append(pos, Input{rSeed.Float64()*lim.Range() + lim.Min})
	}
	return pos
}
