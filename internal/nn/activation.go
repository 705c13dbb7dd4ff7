package nn

import (
	"github.com/strand-ml/strand/internal/tensor"
)

// ReLU is a rectified linear activation module: f(x) = max(0, x).
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies f(x) = max(0, x) element-wise.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := input.Clone()
	data := out.Data()
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}
	return out
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}
