package referenceframe

import (
	"gonum.org/v1/gonum/floats"

	"go.viam.com/dualarm/utils"
)

// Input wraps the input to a mutable frame, here always a revolute joint angle in radians.
type Input struct {
	Value float64
}

// FloatsToInputs wraps a slice of floats in Inputs.
func FloatsToInputs(floats []float64) []Input {
	inputs := make([]Input, len(floats))
	for i, f := range floats {
		inputs[i] = Input{f}
	}
	return inputs
}

// InputsToFloats unwraps Inputs to raw floats.
func InputsToFloats(inputs []Input) []float64 {
	floats := make([]float64, len(inputs))
	for i, f := range inputs {
		floats[i] = f.Value
	}
	return floats
}

// InterpolateInputs will return a set of inputs that are the specified percent between the two given sets of
// inputs. For example, setting by to 0.5 will return the inputs halfway between the from/to values, and 0.25 would
// return one quarter of the way from "from" to "to".
func InterpolateInputs(from, to []Input, by float64) []Input {
	newVals := make([]Input, len(from))
	for i, j1 := range from {
		newVals[i] = Input{j1.Value + ((to[i].Value - j1.Value) * by)}
	}
	return newVals
}

// NormalizeInputs wraps every input into (-pi, pi].
func NormalizeInputs(inputs []Input) []Input {
	out := make([]Input, len(inputs))
	for i, in := range inputs {
		out[i] = Input{utils.NormalizeAngle(in.Value)}
	}
	return out
}

// InputsL2Distance returns the straight-line joint-space distance between two configurations of equal length.
func InputsL2Distance(from, to []Input) float64 {
	return floats.Distance(InputsToFloats(from), InputsToFloats(to), 2)
}

// InputsMaxAngleDistance returns the largest wrapped circular difference, in [0, pi], over all joints.
func InputsMaxAngleDistance(from, to []Input) float64 {
	maxDiff := 0.
	for i := range from {
		if d := utils.AngleDiff(from[i].Value, to[i].Value); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}
