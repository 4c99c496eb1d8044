package motionplan

import (
	"github.com/golang/geo/r3"

	spatial "go.viam.com/dualarm/spatialmath"
)

// CollisionKind says which check a configuration failed.
type CollisionKind int

// The checks, in the order they are evaluated.
const (
	SelfCollision CollisionKind = iota
	ObstacleCollision
	FloorCollision
	BoundViolation
)

// Collision describes the first failed check of a configuration. Other is the second link for a self
// collision, the obstacle index for an obstacle collision and the Axis for a bound violation.
type Collision struct {
	Kind  CollisionKind
	Link  int
	Other int
}

// Axis is a world-frame coordinate axis.
type Axis int

// The world axes.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

func (a Axis) of(v r3.Vector) float64 {
	switch a {
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	default:
		return v.X
	}
}

// AxisBound caps how far any sphere may reach along one axis.
type AxisBound struct {
	Axis Axis
	Max  float64
}

// CollisionPolicy selects which environment checks apply to a robot. Self and obstacle collisions are always
// checked.
type CollisionPolicy struct {
	CheckFloor bool
	Bounds     []AxisBound
}

// DefaultWorkspaceBoundX is the default limit on how far forward the arm may reach.
const DefaultWorkspaceBoundX = 0.4

// DefaultCollisionPolicy checks the floor and keeps every sphere behind x = DefaultWorkspaceBoundX.
func DefaultCollisionPolicy() CollisionPolicy {
	return CollisionPolicy{
		CheckFloor: true,
		Bounds:     []AxisBound{{Axis: AxisX, Max: DefaultWorkspaceBoundX}},
	}
}

// OpenCollisionPolicy disables the floor and workspace checks, for a robot operating well away from both.
func OpenCollisionPolicy() CollisionPolicy {
	return CollisionPolicy{}
}

// linkSpheres are the world-frame spheres of each link at one configuration.
type linkSpheres [][]spatial.Sphere

func (ls linkSpheres) selfCollision() *Collision {
	for i := 0; i < len(ls); i++ {
		for j := i + 2; j < len(ls); j++ {
			if anyOverlap(ls[i], ls[j]) {
				return &Collision{Kind: SelfCollision, Link: i, Other: j}
			}
		}
	}
	return nil
}

func (ls linkSpheres) obstacleCollision(obstacles []spatial.Sphere) *Collision {
	for i, link := range ls {
		for k, obstacle := range obstacles {
			for _, s := range link {
				if s.CollidesWith(obstacle) {
					return &Collision{Kind: ObstacleCollision, Link: i, Other: k}
				}
			}
		}
	}
	return nil
}

// floorCollision skips the base link, which is bolted to the floor.
func (ls linkSpheres) floorCollision() *Collision {
	for i := 1; i < len(ls); i++ {
		for _, s := range ls[i] {
			if s.Center.Z < s.Radius {
				return &Collision{Kind: FloorCollision, Link: i}
			}
		}
	}
	return nil
}

func (ls linkSpheres) boundViolation(bounds []AxisBound) *Collision {
	for _, b := range bounds {
		for i, link := range ls {
			for _, s := range link {
				if b.Axis.of(s.Center)+s.Radius > b.Max {
					return &Collision{Kind: BoundViolation, Link: i, Other: int(b.Axis)}
				}
			}
		}
	}
	return nil
}

func anyOverlap(a, b []spatial.Sphere) bool {
	for _, sa := range a {
		for _, sb := range b {
			if sa.CollidesWith(sb) {
				return true
			}
		}
	}
	return false
}
