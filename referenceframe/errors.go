package referenceframe

import "github.com/pkg/errors"

// OOBErrString is a string that all OOB errors should contain, so that they can be checked for distinct from other errors.
const OOBErrString = "input out of bounds"

// NewIncorrectDoFError returns an error indicating that the number of inputs given does not match the degrees of freedom.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of inputs does not match frame DoF, expected %d but got %d", expected, actual)
}

// NewIncorrectShapeError returns an error indicating that a vector or matrix argument has the wrong number of elements.
func NewIncorrectShapeError(what string, actual int, expected ...int) error {
	return errors.Errorf("%s has %d elements, expected one of %v", what, actual, expected)
}

// NewOutOfBoundsError returns an error naming the joint whose input lies outside its limit.
func NewOutOfBoundsError(joint int, value float64, limit Limit) error {
	return errors.Errorf("%s: joint %d value %.4f outside [%.4f, %.4f]", OOBErrString, joint, value, limit.Min, limit.Max)
}

// NewDuplicateToolError is used when a model declares the same tool name twice.
func NewDuplicateToolError(name string) error {
	return errors.Errorf("tool %q declared more than once", name)
}
