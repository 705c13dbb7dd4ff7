package nn

import (
	"github.com/strand-ml/strand/internal/tensor"
)

// LayerNorm normalizes activations along the last dimension:
//
//	y = gamma * (x - mean(x)) / sqrt(var(x) + eps) + beta
//
// mean and variance are computed per position across the feature axis.
// Used by the pooling classifier head to stabilize its linear blocks.
type LayerNorm[B tensor.Backend] struct {
	Gamma   *Parameter[B] // learnable scale [features]
	Beta    *Parameter[B] // learnable shift [features]
	Epsilon float64
	backend B
}

// NewLayerNorm creates a LayerNorm over the trailing feature dimension.
// Gamma starts at one, beta at zero.
func NewLayerNorm[B tensor.Backend](features int, epsilon float64, backend B) *LayerNorm[B] {
	return &LayerNorm[B]{
		Gamma:   NewParameter("gamma", tensor.Ones(tensor.Shape{features}, backend)),
		Beta:    NewParameter("beta", tensor.Zeros[float32](tensor.Shape{features}, backend)),
		Epsilon: epsilon,
		backend: backend,
	}
}

// Forward applies the normalization. Input shape [..., features] is
// preserved; gamma and beta broadcast across the leading dimensions.
func (l *LayerNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	mean := x.MeanDim(-1, true)
	centered := x.Sub(mean)
	variance := centered.Mul(centered).MeanDim(-1, true)
	norm := centered.Div(variance.AddScalar(l.Epsilon).Sqrt())
	return norm.Mul(l.Gamma.Tensor()).Add(l.Beta.Tensor())
}

// Parameters returns gamma and beta.
func (l *LayerNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.Gamma, l.Beta}
}
