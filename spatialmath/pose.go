// Package spatialmath defines spatial mathematical operations: rigid homogeneous transforms,
// Denavit-Hartenberg elementary transforms and the sphere primitive used for collision checks.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// orthonormalEpsilon bounds how far a supplied rotation block may drift from orthonormal before it is rejected.
const orthonormalEpsilon = 1e-6

// Pose is a rigid transform stored as a 4x4 homogeneous matrix: an orthonormal rotation block plus a translation column.
// The zero value is not a valid pose; use NewZeroPose.
type Pose struct {
	mat mgl64.Mat4
}

// NewZeroPose returns the identity transform.
func NewZeroPose() Pose {
	return Pose{mgl64.Ident4()}
}

// NewPoseFromPoint returns a pure translation.
func NewPoseFromPoint(pt r3.Vector) Pose {
	return Pose{mgl64.Translate3D(pt.X, pt.Y, pt.Z)}
}

// NewPoseFromMatrix wraps an existing homogeneous matrix. The caller is responsible for it being rigid.
func NewPoseFromMatrix(m mgl64.Mat4) Pose {
	return Pose{m}
}

// NewPoseFromRows builds a pose from a row-major 4x4 (or 3x4, with the implicit [0 0 0 1] row) matrix.
// Anything else, including a non-orthonormal rotation block, is rejected.
func NewPoseFromRows(rows [][]float64) (Pose, error) {
	if len(rows) != 3 && len(rows) != 4 {
		return Pose{}, errors.Errorf("pose must have 3 or 4 rows, got %d", len(rows))
	}
	m := mgl64.Ident4()
	for r, row := range rows {
		if len(row) != 4 {
			return Pose{}, errors.Errorf("pose row %d must have 4 columns, got %d", r, len(row))
		}
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Pose{}, errors.Errorf("pose element (%d, %d) is not finite", r, c)
			}
			m.Set(r, c, v)
		}
	}
	if len(rows) == 4 {
		last := rows[3]
		if last[0] != 0 || last[1] != 0 || last[2] != 0 || last[3] != 1 {
			return Pose{}, errors.Errorf("pose bottom row must be [0 0 0 1], got %v", last)
		}
	}
	p := Pose{m}
	if !p.isOrthonormal(orthonormalEpsilon) {
		return Pose{}, errors.New("pose rotation block is not orthonormal")
	}
	return p, nil
}

// NewPoseFromEuler returns a pose at pt whose rotation is Rz(gamma)*Ry(beta)*Rx(alpha), in radians.
func NewPoseFromEuler(pt r3.Vector, alpha, beta, gamma float64) Pose {
	rot := mgl64.HomogRotate3DZ(gamma).Mul4(mgl64.HomogRotate3DY(beta).Mul4(mgl64.HomogRotate3DX(alpha)))
	rot.SetCol(3, mgl64.Vec4{pt.X, pt.Y, pt.Z, 1})
	return Pose{rot}
}

// NewDHTransform returns the elementary Denavit-Hartenberg transform Rz(theta)*Tz(d)*Tx(a)*Rx(alpha)
// for one revolute joint at angle theta.
func NewDHTransform(a, alpha, d, theta float64) Pose {
	st, ct := math.Sincos(theta)
	sa, ca := math.Sincos(alpha)
	return Pose{mgl64.Mat4FromRows(
		mgl64.Vec4{ct, -st * ca, st * sa, a * ct},
		mgl64.Vec4{st, ct * ca, -ct * sa, a * st},
		mgl64.Vec4{0, sa, ca, d},
		mgl64.Vec4{0, 0, 0, 1},
	)}
}

// Matrix returns the underlying homogeneous matrix.
func (p Pose) Matrix() mgl64.Mat4 {
	return p.mat
}

// At returns the matrix element at row r, column c.
func (p Pose) At(r, c int) float64 {
	return p.mat.At(r, c)
}

// Point returns the translation part of the pose.
func (p Pose) Point() r3.Vector {
	return r3.Vector{X: p.mat.At(0, 3), Y: p.mat.At(1, 3), Z: p.mat.At(2, 3)}
}

// Compose returns p*q, i.e. q expressed in the frame p maps out of.
func (p Pose) Compose(q Pose) Pose {
	return Pose{p.mat.Mul4(q.mat)}
}

// Invert returns the rigid inverse [R^T, -R^T t].
func (p Pose) Invert() Pose {
	rt := p.mat.Mat3().Transpose()
	t := rt.Mul3x1(p.mat.Col(3).Vec3())
	inv := rt.Mat4()
	inv.SetCol(3, mgl64.Vec4{-t[0], -t[1], -t[2], 1})
	return Pose{inv}
}

// TransformPoint maps a point from the local frame of p into p's parent frame.
func (p Pose) TransformPoint(v r3.Vector) r3.Vector {
	out := p.mat.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 1})
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}
}

// TransformDirection rotates a direction from the local frame of p into p's parent frame, ignoring translation.
func (p Pose) TransformDirection(v r3.Vector) r3.Vector {
	out := p.mat.Mat3().Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}
}

// Quaternion returns the rotation part of the pose as a unit quaternion with a non-negative real part.
func (p Pose) Quaternion() quat.Number {
	q := mgl64.Mat4ToQuat(p.mat).Normalize()
	out := quat.Number{Real: q.W, Imag: q.V[0], Jmag: q.V[1], Kmag: q.V[2]}
	if out.Real < 0 {
		out = Flip(out)
	}
	return out
}

// RotationVector returns the rotation as an axis scaled by its angle in radians (rx, ry, rz).
func (p Pose) RotationVector() r3.Vector {
	q := p.Quaternion()
	n := Norm(q)
	if n < 1e-12 {
		return r3.Vector{}
	}
	theta := 2 * math.Atan2(n, q.Real)
	return r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}.Mul(theta / n)
}

func (p Pose) isOrthonormal(eps float64) bool {
	rot := p.mat.Mat3()
	prod := rot.Mul3(rot.Transpose())
	ident := mgl64.Ident3()
	for i := range prod {
		if math.Abs(prod[i]-ident[i]) > eps {
			return false
		}
	}
	return math.Abs(rot.Det()-1) <= eps
}

// PoseAlmostCoincident returns whether two poses have translations within eps of one another and
// matrix elements within eps of one another.
func PoseAlmostCoincident(a, b Pose, eps float64) bool {
	for i := range a.mat {
		if math.Abs(a.mat[i]-b.mat[i]) > eps {
			return false
		}
	}
	return true
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}

// Norm returns the norm of the quaternion, i.e. the sqrt of the squares of the imaginary parts.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}
