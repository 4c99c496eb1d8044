package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, out float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{2*math.Pi + 0.25, 0.25},
		{-2*math.Pi - 0.25, -0.25},
	}
	for _, c := range cases {
		test.That(t, NormalizeAngle(c.in), test.ShouldAlmostEqual, c.out, 1e-12)
	}
}

func TestNormalizeAngleRange(t *testing.T) {
	for a := -20.0; a < 20; a += 0.173 {
		n := NormalizeAngle(a)
		test.That(t, n, test.ShouldBeGreaterThan, -math.Pi)
		test.That(t, n, test.ShouldBeLessThanOrEqualTo, math.Pi)
		test.That(t, math.Cos(n), test.ShouldAlmostEqual, math.Cos(a), 1e-9)
		test.That(t, math.Sin(n), test.ShouldAlmostEqual, math.Sin(a), 1e-9)
	}
}

func TestAngleDiff(t *testing.T) {
	test.That(t, AngleDiff(0.1, -0.1), test.ShouldAlmostEqual, 0.2, 1e-12)
	test.That(t, AngleDiff(-0.1, 0.1), test.ShouldAlmostEqual, 0.2, 1e-12)
	test.That(t, AngleDiff(math.Pi-0.1, -math.Pi+0.1), test.ShouldAlmostEqual, 0.2, 1e-12)
	test.That(t, AngleDiff(0, 2*math.Pi), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, AngleDiff(0, math.Pi), test.ShouldAlmostEqual, math.Pi, 1e-12)
	test.That(t, AngleDiff(3*math.Pi/2, 0), test.ShouldAlmostEqual, math.Pi/2, 1e-12)
}

func TestClampAndConversions(t *testing.T) {
	test.That(t, Clamp(2, 0, 1), test.ShouldEqual, 1.)
	test.That(t, Clamp(-2, 0, 1), test.ShouldEqual, 0.)
	test.That(t, Clamp(0.5, 0, 1), test.ShouldEqual, 0.5)
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi, 1e-12)
	test.That(t, Float64AlmostEqual(1, 1.0005, 1e-3), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.01, 1e-3), test.ShouldBeFalse)
	test.That(t, MaxInt(3, 7), test.ShouldEqual, 7)
}
