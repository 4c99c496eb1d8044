package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Sphere is a ball with a center and a radius. It is the only primitive the collision model uses:
// robot links are approximated by lists of spheres and obstacles are spheres.
type Sphere struct {
	Center r3.Vector `json:"center"`
	Radius float64   `json:"radius"`
}

// NewSphere validates and returns a sphere.
func NewSphere(center r3.Vector, radius float64) (Sphere, error) {
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return Sphere{}, errors.Errorf("sphere radius must be a non-negative finite number, got %v", radius)
	}
	return Sphere{Center: center, Radius: radius}, nil
}

// Transform returns the sphere with its center mapped by pose. The radius is unchanged since poses are rigid.
func (s Sphere) Transform(pose Pose) Sphere {
	return Sphere{Center: pose.TransformPoint(s.Center), Radius: s.Radius}
}

// CollidesWith reports whether two spheres overlap. Tangent spheres do not collide.
func (s Sphere) CollidesWith(other Sphere) bool {
	return s.Center.Sub(other.Center).Norm() < s.Radius+other.Radius
}

// DistanceFrom returns the separation between the two surfaces, negative when they overlap.
func (s Sphere) DistanceFrom(other Sphere) float64 {
	return s.Center.Sub(other.Center).Norm() - s.Radius - other.Radius
}

// AlmostEqual compares two spheres within a fixed tolerance.
func (s Sphere) AlmostEqual(other Sphere) bool {
	const epsilon = 1e-8
	return R3VectorAlmostEqual(s.Center, other.Center, epsilon) && math.Abs(s.Radius-other.Radius) < epsilon
}
