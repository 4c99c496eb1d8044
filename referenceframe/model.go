package referenceframe

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	spatial "go.viam.com/dualarm/spatialmath"
)

// ArmDoF is the number of revolute joints of the spherical-wrist arms this module models.
const ArmDoF = 6

// DHParam is one row of a Denavit-Hartenberg table. A is the link length along x, Alpha the twist about x in
// radians and D the link offset along z.
type DHParam struct {
	A     float64
	Alpha float64
	D     float64
}

// Transform returns the elementary transform of this row for joint angle theta.
func (p DHParam) Transform(theta float64) spatial.Pose {
	return spatial.NewDHTransform(p.A, p.Alpha, p.D, theta)
}

// DHTable is the immutable, ordered set of DH rows of a 6R arm.
type DHTable [ArmDoF]DHParam

// NewDHTable builds a table from rows of (a, alpha, d).
func NewDHTable(rows [][]float64) (DHTable, error) {
	var table DHTable
	if len(rows) != ArmDoF {
		return table, NewIncorrectShapeError("DH table", len(rows), ArmDoF)
	}
	for i, row := range rows {
		if len(row) != 3 {
			return table, errors.Wrapf(NewIncorrectShapeError("DH row", len(row), 3), "row %d", i)
		}
		table[i] = DHParam{A: row[0], Alpha: row[1], D: row[2]}
	}
	return table, table.validate()
}

func (t DHTable) validate() error {
	var err error
	for i, p := range t {
		for _, v := range []float64{p.A, p.Alpha, p.D} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				err = multierr.Append(err, errors.Errorf("DH row %d has a non-finite parameter", i))
				break
			}
		}
	}
	return err
}

// LinkSpheres is the sphere approximation of one link, each sphere center expressed in the frame reached after
// composing the joints up to and including that link's joint.
type LinkSpheres struct {
	Link    string
	Spheres []spatial.Sphere
}

// SphereModel maps link index (0 = base link) to the spheres approximating its swept volume.
type SphereModel []LinkSpheres

// Model is a robot descriptor: everything that is fixed per robot at startup.
type Model struct {
	name    string
	dh      DHTable
	limits  []Limit
	spheres SphereModel
	tools   map[string]r3.Vector
	base    spatial.Pose
}

// NewModel constructs a validated model. Tools may be nil. The base pose maps the robot base frame into the
// shared world frame.
func NewModel(
	name string,
	dh DHTable,
	limits []Limit,
	spheres SphereModel,
	tools map[string]r3.Vector,
	base spatial.Pose,
) (*Model, error) {
	err := dh.validate()
	if len(limits) != ArmDoF {
		err = multierr.Append(err, NewIncorrectShapeError("limits", len(limits), ArmDoF))
	}
	for i, l := range limits {
		if l.Min > l.Max {
			err = multierr.Append(err, errors.Errorf("joint %d limit min %.4f exceeds max %.4f", i, l.Min, l.Max))
		}
	}
	if len(spheres) > ArmDoF {
		err = multierr.Append(err, errors.Errorf("sphere model has %d links but the arm only has %d", len(spheres), ArmDoF))
	}
	for i, link := range spheres {
		for j, s := range link.Spheres {
			if _, sErr := spatial.NewSphere(s.Center, s.Radius); sErr != nil {
				err = multierr.Append(err, errors.Wrapf(sErr, "link %d (%s) sphere %d", i, link.Link, j))
			}
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "invalid model %q", name)
	}

	copiedTools := make(map[string]r3.Vector, len(tools))
	for k, v := range tools {
		copiedTools[k] = v
	}
	copiedSpheres := make(SphereModel, len(spheres))
	for i, link := range spheres {
		copiedSpheres[i] = LinkSpheres{Link: link.Link, Spheres: append([]spatial.Sphere(nil), link.Spheres...)}
	}
	return &Model{
		name:    name,
		dh:      dh,
		limits:  append([]Limit(nil), limits...),
		spheres: copiedSpheres,
		tools:   copiedTools,
		base:    base,
	}, nil
}

// Name returns the name of this model.
func (m *Model) Name() string {
	return m.name
}

// DH returns the model's DH table.
func (m *Model) DH() DHTable {
	return m.dh
}

// DoF returns the per-joint mechanical limits.
func (m *Model) DoF() []Limit {
	return append([]Limit(nil), m.limits...)
}

// Spheres returns the link sphere approximation.
func (m *Model) Spheres() SphereModel {
	return m.spheres
}

// Tool returns the named offset in the end-effector frame.
func (m *Model) Tool(name string) (r3.Vector, bool) {
	v, ok := m.tools[name]
	return v, ok
}

// BaseToWorld returns the pose of the robot base in the shared world frame.
func (m *Model) BaseToWorld() spatial.Pose {
	return m.base
}

// CheckInputs fails fast if inputs does not have one value per joint.
func (m *Model) CheckInputs(inputs []Input) error {
	if len(inputs) != ArmDoF {
		return NewIncorrectDoFError(len(inputs), ArmDoF)
	}
	return nil
}

// CheckLimits returns an error naming every joint whose input lies outside its mechanical limit.
// Limit enforcement is advisory: collision and planning functions evaluate out-of-limit inputs unchanged.
func (m *Model) CheckLimits(inputs []Input) error {
	if err := m.CheckInputs(inputs); err != nil {
		return err
	}
	var err error
	for i, in := range inputs {
		if !m.limits[i].Contains(in.Value) {
			err = multierr.Append(err, NewOutOfBoundsError(i, in.Value, m.limits[i]))
		}
	}
	return err
}

// AreJointPositionsValid reports whether inputs has the right length and lies within all limits.
func (m *Model) AreJointPositionsValid(inputs []Input) bool {
	return m.CheckLimits(inputs) == nil
}
