package nn

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// InvalidProbabilityError reports a dropout probability outside [0, 1).
// Raised at construction time, never during forward passes.
type InvalidProbabilityError struct {
	Module string
	P      float64
}

func (e *InvalidProbabilityError) Error() string {
	return fmt.Sprintf("%s: dropout probability %v outside [0, 1)", e.Module, e.P)
}

// UnknownWeightError reports a weight-dropout target name that does not
// exist on the wrapped cell.
type UnknownWeightError struct {
	Name string
}

func (e *UnknownWeightError) Error() string {
	return fmt.Sprintf("weight drop: cell has no weight named %q", e.Name)
}

// MissingParameterError reports a state-dict entry absent during loading.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter %q in state dict", e.Name)
}

// ShapeMismatchError reports a state-dict entry whose shape does not match
// the receiving parameter.
type ShapeMismatchError struct {
	Name      string
	Want, Got tensor.Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("parameter %q shape mismatch: expected %v, got %v", e.Name, e.Want, e.Got)
}

// checkProbability validates p in [0, 1) for module.
func checkProbability(module string, p float64) error {
	if p < 0 || p >= 1 {
		return &InvalidProbabilityError{Module: module, P: p}
	}
	return nil
}
