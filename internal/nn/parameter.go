package nn

import (
	"github.com/strand-ml/strand/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are the persistent leaves of a model: optimizers update their
// tensors in place, and dropout wrappers must never overwrite them with
// masked copies.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter creates a new trainable parameter around an initialized
// tensor. The gradient slot starts empty; the training collaborator fills it.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name (e.g. "weight_hh_l0").
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient tensor, or nil before any backward pass.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad installs the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient. Call before each training iteration to
// avoid accumulating gradients across iterations.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}
