package referenceframe

import (
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	spatial "go.viam.com/dualarm/spatialmath"
)

func testTable(t *testing.T) DHTable {
	t.Helper()
	table, err := NewDHTable([][]float64{
		{0, math.Pi / 2, 0.15185},
		{-0.24355, 0, 0},
		{-0.2132, 0, 0},
		{0, math.Pi / 2, 0.13105},
		{0, -math.Pi / 2, 0.08535},
		{0, 0, 0.0921},
	})
	test.That(t, err, test.ShouldBeNil)
	return table
}

func fullLimits() []Limit {
	limits := make([]Limit, ArmDoF)
	for i := range limits {
		limits[i] = Limit{-2 * math.Pi, 2 * math.Pi}
	}
	return limits
}

func TestNewDHTable(t *testing.T) {
	table := testTable(t)
	test.That(t, table[2], test.ShouldResemble, DHParam{A: -0.2132})

	_, err := NewDHTable([][]float64{{0, 0, 0}})
	test.That(t, err, test.ShouldNotBeNil)

	rows := make([][]float64, ArmDoF)
	for i := range rows {
		rows[i] = []float64{0, 0, 0}
	}
	rows[3] = []float64{0, 0}
	_, err = NewDHTable(rows)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "row 3")

	rows[3] = []float64{0, math.Inf(1), 0}
	_, err = NewDHTable(rows)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "non-finite")
}

func TestNewModelValidation(t *testing.T) {
	table := testTable(t)
	m, err := NewModel("ok", table, fullLimits(), nil, nil, spatial.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name(), test.ShouldEqual, "ok")

	_, err = NewModel("short", table, fullLimits()[:3], nil, nil, spatial.NewZeroPose())
	test.That(t, err, test.ShouldNotBeNil)

	spheres := make(SphereModel, ArmDoF+1)
	_, err = NewModel("too many links", table, fullLimits(), spheres, nil, spatial.NewZeroPose())
	test.That(t, err, test.ShouldNotBeNil)

	limits := fullLimits()
	limits[1] = Limit{1, -1}
	bad := SphereModel{{Link: "base", Spheres: []spatial.Sphere{{Radius: math.NaN()}}}}
	_, err = NewModel("both", table, limits, bad, nil, spatial.NewZeroPose())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, strings.Count(err.Error(), ";"), test.ShouldEqual, 1)
}

func TestModelIsolation(t *testing.T) {
	tools := map[string]r3.Vector{"plate": {Z: 0.12}}
	limits := fullLimits()
	m, err := NewModel("iso", testTable(t), limits, nil, tools, spatial.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)

	tools["plate"] = r3.Vector{}
	limits[0] = Limit{}
	plate, _ := m.Tool("plate")
	test.That(t, plate.Z, test.ShouldEqual, 0.12)
	test.That(t, m.DoF()[0].Max, test.ShouldEqual, 2*math.Pi)

	m.DoF()[0] = Limit{}
	test.That(t, m.DoF()[0].Max, test.ShouldEqual, 2*math.Pi)
}

func TestCheckInputs(t *testing.T) {
	limits := fullLimits()
	limits[2] = Limit{-math.Pi, math.Pi}
	m, err := NewModel("limits", testTable(t), limits, nil, nil, spatial.NewZeroPose())
	test.That(t, err, test.ShouldBeNil)

	err = m.CheckInputs(FloatsToInputs([]float64{0, 0, 0}))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected 6 but got 3")

	in := FloatsToInputs([]float64{0, 0, 4, 0, 0, 0})
	test.That(t, m.CheckInputs(in), test.ShouldBeNil)
	err = m.CheckLimits(in)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, OOBErrString)
	test.That(t, m.AreJointPositionsValid(in), test.ShouldBeFalse)
	test.That(t, m.AreJointPositionsValid(FloatsToInputs(make([]float64, 6))), test.ShouldBeTrue)
}
