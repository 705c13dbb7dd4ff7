// Package nn implements neural network modules for the Strand text-modeling
// library.
//
// This package provides the building blocks of AWD-LSTM style models:
//   - Module interface: base interface for all NN components
//   - Parameter: trainable parameters with gradient slots
//   - Embedding, Linear, LayerNorm, ReLU: standard layers
//   - RNNDropout, EmbedDropout, WeightDrop: the dropout family used by
//     regularized recurrent language models
//   - LSTM, QRNN: recurrent cells behind the RecurrentCell interface
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/strand-ml/strand/internal/tensor"
)

// Module is the base interface for feed-forward NN components.
//
// Recurrent cells do not satisfy Module (their forward contract carries
// state); they implement RecurrentCell instead.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without trainable
	// parameters return an empty slice.
	Parameters() []*Parameter[B]
}

// ModeSetter is implemented by modules whose forward pass differs between
// training and evaluation (the dropout family). Containers propagate the
// mode to every child that implements it.
type ModeSetter interface {
	// SetTraining switches the module between training mode (true) and
	// evaluation mode (false). Modules start in training mode.
	SetTraining(training bool)
}

// StatefulModule is implemented by modules owning state that must be cleared
// between unrelated sequences: recurrent hidden state, or the weight
// substitution performed by WeightDrop.
type StatefulModule interface {
	// Reset clears the module's per-sequence state.
	Reset()
}
