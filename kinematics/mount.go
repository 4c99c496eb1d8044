package kinematics

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/dualarm/referenceframe"
	spatial "go.viam.com/dualarm/spatialmath"
)

// Well-known tool names.
const (
	PlateTool  = "plate"
	CameraTool = "camera"
)

// Mount resolves points fixed to a robot's end effector into the shared world frame, using the model's DH table
// and its fixed base-to-world transform.
type Mount struct {
	model *referenceframe.Model
}

// NewMount returns a mount for the model.
func NewMount(model *referenceframe.Model) *Mount {
	return &Mount{model: model}
}

// Model returns the mounted model.
func (m *Mount) Model() *referenceframe.Model {
	return m.model
}

// EffectorPose returns the end-effector pose in the world frame.
func (m *Mount) EffectorPose(joints []referenceframe.Input) (spatial.Pose, error) {
	ee, err := Forward(m.model.DH(), joints)
	if err != nil {
		return spatial.Pose{}, err
	}
	return m.model.BaseToWorld().Compose(ee), nil
}

// EffectorToHome maps a point given in end-effector coordinates into the world frame. local may be a 3-vector or a
// homogeneous 4-vector whose last component is 1; any other shape is rejected.
func (m *Mount) EffectorToHome(joints []referenceframe.Input, local []float64) (r3.Vector, error) {
	pt, err := homogeneousPoint(local)
	if err != nil {
		return r3.Vector{}, err
	}
	return m.EffectorPointToHome(joints, pt)
}

// EffectorPointToHome is EffectorToHome for an already-shaped point.
func (m *Mount) EffectorPointToHome(joints []referenceframe.Input, local r3.Vector) (r3.Vector, error) {
	pose, err := m.EffectorPose(joints)
	if err != nil {
		return r3.Vector{}, err
	}
	return pose.TransformPoint(local), nil
}

// ToolPoint maps local, a displacement from the named tool's origin in end-effector-aligned coordinates,
// into the world frame.
func (m *Mount) ToolPoint(joints []referenceframe.Input, tool string, local r3.Vector) (r3.Vector, error) {
	offset, ok := m.model.Tool(tool)
	if !ok {
		return r3.Vector{}, errors.Errorf("model %q has no tool named %q", m.model.Name(), tool)
	}
	return m.EffectorPointToHome(joints, local.Add(offset))
}

// PlateFrame returns the world pose of the plate tool: its origin is the plate center and its axes are the
// end-effector axes.
func (m *Mount) PlateFrame(joints []referenceframe.Input) (spatial.Pose, error) {
	offset, ok := m.model.Tool(PlateTool)
	if !ok {
		return spatial.Pose{}, errors.Errorf("model %q has no %s tool", m.model.Name(), PlateTool)
	}
	pose, err := m.EffectorPose(joints)
	if err != nil {
		return spatial.Pose{}, err
	}
	return pose.Compose(spatial.NewPoseFromPoint(offset)), nil
}

// PlateError expresses a world point, such as a tracked ball, in plate coordinates. X and Y are the in-plane error
// a balancing controller drives to zero; Z is the height above the plate.
func (m *Mount) PlateError(joints []referenceframe.Input, world r3.Vector) (r3.Vector, error) {
	plate, err := m.PlateFrame(joints)
	if err != nil {
		return r3.Vector{}, err
	}
	return plate.Invert().TransformPoint(world), nil
}

func homogeneousPoint(local []float64) (r3.Vector, error) {
	switch len(local) {
	case 3:
	case 4:
		if local[3] != 1 {
			return r3.Vector{}, errors.Errorf("homogeneous point must have w = 1, got %v", local[3])
		}
	default:
		return r3.Vector{}, referenceframe.NewIncorrectShapeError("local point", len(local), 3, 4)
	}
	return r3.Vector{X: local[0], Y: local[1], Z: local[2]}, nil
}
