// Package universalrobots describes the two Universal Robots arms of the dual-arm balancing station: a UR5e
// carrying the camera and a UR3e carrying the plate, mounted side by side.
package universalrobots

import (
	// for embedding model files.
	_ "embed"

	"github.com/pkg/errors"

	"go.viam.com/dualarm/kinematics"
	"go.viam.com/dualarm/logging"
	"go.viam.com/dualarm/motionplan"
	"go.viam.com/dualarm/referenceframe"
	spatial "go.viam.com/dualarm/spatialmath"
)

// Model names.
const (
	UR5eModelName = "ur5e"
	UR3eModelName = "ur3e"
)

//go:embed ur5e.json
var ur5eModelJSON []byte

//go:embed ur3e.json
var ur3eModelJSON []byte

// ModelJSON returns the embedded kinematics file for a model name.
func ModelJSON(modelName string) ([]byte, error) {
	switch modelName {
	case UR5eModelName:
		return ur5eModelJSON, nil
	case UR3eModelName:
		return ur3eModelJSON, nil
	default:
		return nil, errors.Errorf("unknown universal robots model %q", modelName)
	}
}

// MakeModelFrame returns the kinematics model of the named arm. name sets the model name and defaults to
// modelName when empty.
func MakeModelFrame(modelName, name string) (*referenceframe.Model, error) {
	data, err := ModelJSON(modelName)
	if err != nil {
		return nil, err
	}
	return referenceframe.UnmarshalModelJSON(data, name)
}

// CollisionPolicy returns the checks that apply to the named arm. The UR5e sits on the table next to the
// workspace boundary; the UR3e works above both.
func CollisionPolicy(modelName string) motionplan.CollisionPolicy {
	if modelName == UR3eModelName {
		return motionplan.OpenCollisionPolicy()
	}
	return motionplan.DefaultCollisionPolicy()
}

// Arm bundles everything needed to command one arm of the station.
type Arm struct {
	Model  *referenceframe.Model
	Mount  *kinematics.Mount
	Solver *kinematics.AnalyticSolver
	Space  *motionplan.ConfigurationSpace
}

// NewArm loads the named arm with default solver and planner options among the given obstacles.
func NewArm(modelName string, obstacles []spatial.Sphere, logger logging.Logger) (*Arm, error) {
	model, err := MakeModelFrame(modelName, "")
	if err != nil {
		return nil, err
	}
	solver, err := kinematics.NewAnalyticSolver(model.DH(), kinematics.DefaultSolverOptions(), logger.Sublogger("ik"))
	if err != nil {
		return nil, err
	}
	space, err := motionplan.NewConfigurationSpace(
		model,
		obstacles,
		CollisionPolicy(modelName),
		motionplan.DefaultPlannerOptions(),
		logger.Sublogger("cspace"),
	)
	if err != nil {
		return nil, err
	}
	return &Arm{
		Model:  model,
		Mount:  kinematics.NewMount(model),
		Solver: solver,
		Space:  space,
	}, nil
}

// Station is the pair of arms.
type Station struct {
	Camera *Arm
	Task   *Arm
}

// NewStation loads both arms. Obstacles are shared and given in the world frame.
func NewStation(obstacles []spatial.Sphere, logger logging.Logger) (*Station, error) {
	camera, err := NewArm(UR5eModelName, obstacles, logger.Sublogger(UR5eModelName))
	if err != nil {
		return nil, err
	}
	task, err := NewArm(UR3eModelName, obstacles, logger.Sublogger(UR3eModelName))
	if err != nil {
		return nil, err
	}
	return &Station{Camera: camera, Task: task}, nil
}
