package nn

import (
	"math"
	"math/rand"

	"github.com/strand-ml/strand/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Draws from U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))), which keeps
// activation variance roughly constant across layers.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return Uniform[B](shape, -bound, bound, backend)
}

// Uniform creates a tensor with values drawn from U(lo, hi).
func Uniform[B tensor.Backend](shape tensor.Shape, lo, hi float64, backend B) *tensor.Tensor[float32, B] {
	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand is appropriate for weight initialization
		data[i] = float32(lo + rand.Float64()*(hi-lo))
	}
	return t
}

// Normal creates a tensor with values drawn from N(0, std).
// AWD-LSTM embeddings use std=0.1 rather than the unit normal.
func Normal[B tensor.Backend](shape tensor.Shape, std float64, backend B) *tensor.Tensor[float32, B] {
	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand is appropriate for weight initialization
		data[i] = float32(rand.NormFloat64() * std)
	}
	return t
}
