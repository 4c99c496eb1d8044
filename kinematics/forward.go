// Package kinematics maps between joint space and Cartesian space for 6R spherical-wrist arms described by a
// Denavit-Hartenberg table, and resolves fixed tool points of a mounted arm into the shared world frame.
package kinematics

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/dualarm/referenceframe"
	spatial "go.viam.com/dualarm/spatialmath"
)

// Forward composes the elementary DH transforms of all six joints and returns the end-effector pose in the
// robot base frame.
func Forward(table referenceframe.DHTable, inputs []referenceframe.Input) (spatial.Pose, error) {
	if err := checkInputs(inputs); err != nil {
		return spatial.Pose{}, err
	}
	return forward(table, referenceframe.InputsToFloats(inputs)), nil
}

// LinkPoses returns the accumulated pose after each joint: entry i is T01*...*T(i)(i+1).
// The last entry equals Forward.
func LinkPoses(table referenceframe.DHTable, inputs []referenceframe.Input) ([]spatial.Pose, error) {
	if err := checkInputs(inputs); err != nil {
		return nil, err
	}
	poses := make([]spatial.Pose, referenceframe.ArmDoF)
	acc := spatial.NewZeroPose()
	for i, p := range table {
		acc = acc.Compose(p.Transform(inputs[i].Value))
		poses[i] = acc
	}
	return poses, nil
}

// ComputePosition returns the end-effector pose of a model at the given inputs, in the robot base frame.
func ComputePosition(model *referenceframe.Model, inputs []referenceframe.Input) (spatial.Pose, error) {
	return Forward(model.DH(), inputs)
}

func forward(table referenceframe.DHTable, thetas []float64) spatial.Pose {
	acc := spatial.NewZeroPose()
	for i, p := range table {
		acc = acc.Compose(p.Transform(thetas[i]))
	}
	return acc
}

func checkInputs(inputs []referenceframe.Input) error {
	if len(inputs) != referenceframe.ArmDoF {
		return referenceframe.NewIncorrectDoFError(len(inputs), referenceframe.ArmDoF)
	}
	for i, in := range inputs {
		if math.IsNaN(in.Value) || math.IsInf(in.Value, 0) {
			return errors.Errorf("joint %d input is not finite", i)
		}
	}
	return nil
}
