// Package optim implements gradient-descent optimizers for model training.
//
// Optimizers step over []*nn.Parameter and read each parameter's gradient
// slot, which a training-loop collaborator fills before calling Step.
// Parameters without a gradient are skipped. All updates happen in place on
// the raw parameter buffers, so tied parameters (shared between an
// embedding and a decoder projection) must appear only once in the slice;
// containers deduplicate them.
package optim

import (
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// Optimizer is the interface shared by all optimization algorithms.
type Optimizer interface {
	// Step applies one gradient update to every parameter carrying a
	// gradient.
	Step()

	// ZeroGrad clears all parameter gradients, to be called before the
	// next gradient computation.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32

	// SetLR updates the learning rate, for schedulers.
	SetLR(lr float32)
}

// gradient returns the parameter's gradient buffer, or nil when the
// parameter did not participate in the last pass.
func gradient[B tensor.Backend](param *nn.Parameter[B]) []float32 {
	g := param.Grad()
	if g == nil {
		return nil
	}
	return g.Raw().AsFloat32()
}
