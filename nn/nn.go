// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn exposes Strand's neural network building blocks: standard
// layers, the AWD-LSTM dropout family, and the recurrent cells.
package nn

import (
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// Module is the common interface for feed-forward NN components.
type Module[B tensor.Backend] = nn.Module[B]

// ModeSetter is implemented by modules that behave differently in training
// and evaluation mode.
type ModeSetter = nn.ModeSetter

// StatefulModule is implemented by modules with resettable per-sequence
// state.
type StatefulModule = nn.StatefulModule

// Parameter is a trainable parameter with a gradient slot.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a named parameter wrapping a tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// SetSeed reseeds the package-level dropout mask source, for deterministic
// replay in tests.
func SetSeed(seed int64) {
	nn.SetSeed(seed)
}

// Layers

// Embedding is a token-id to dense-vector lookup table.
type Embedding[B tensor.Backend] = nn.Embedding[B]

// NewEmbedding creates an embedding table; padID's row is zeroed, pass -1
// for none.
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim, padID int, backend B) *Embedding[B] {
	return nn.NewEmbedding(numEmbeddings, embeddingDim, padID, backend)
}

// Linear is a fully connected layer, optionally with a tied weight.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with Xavier-initialized weights.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, withBias bool, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, withBias, backend)
}

// LayerNorm normalizes over the trailing feature axis.
type LayerNorm[B tensor.Backend] = nn.LayerNorm[B]

// NewLayerNorm creates a LayerNorm over features with the given epsilon.
func NewLayerNorm[B tensor.Backend](features int, epsilon float64, backend B) *LayerNorm[B] {
	return nn.NewLayerNorm(features, epsilon, backend)
}

// ReLU is the rectified linear activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Dropout family

// Dropout is ordinary element-wise inverted dropout.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates an element-wise dropout module; p must be in [0, 1).
func NewDropout[B tensor.Backend](p float64) (*Dropout[B], error) {
	return nn.NewDropout[B](p)
}

// RNNDropout holds one mask fixed across the sequence axis per call.
type RNNDropout[B tensor.Backend] = nn.RNNDropout[B]

// NewRNNDropout creates a sequence-consistent dropout module.
func NewRNNDropout[B tensor.Backend](p float64) (*RNNDropout[B], error) {
	return nn.NewRNNDropout[B](p)
}

// EmbedDropout zeroes whole embedding rows before the lookup.
type EmbedDropout[B tensor.Backend] = nn.EmbedDropout[B]

// NewEmbedDropout wraps an embedding table with row dropout.
func NewEmbedDropout[B tensor.Backend](embed *Embedding[B], p float64) (*EmbedDropout[B], error) {
	return nn.NewEmbedDropout(embed, p)
}

// WeightDrop applies DropConnect to named recurrent weights per call.
type WeightDrop[B tensor.Backend] = nn.WeightDrop[B]

// NewWeightDrop wraps a recurrent cell, dropping the named weights with
// probability p on every training-mode call.
func NewWeightDrop[B tensor.Backend](cell RecurrentCell[B], targets []string, p float64) (*WeightDrop[B], error) {
	return nn.NewWeightDrop(cell, targets, p)
}

// Recurrent cells

// State is the recurrent state of one layer.
type State[B tensor.Backend] = nn.State[B]

// RecurrentCell is the capability interface shared by LSTM and QRNN.
type RecurrentCell[B tensor.Backend] = nn.RecurrentCell[B]

// LSTM is a single-layer, optionally bidirectional LSTM cell.
type LSTM[B tensor.Backend] = nn.LSTM[B]

// NewLSTM creates a single-layer LSTM.
func NewLSTM[B tensor.Backend](inputSize, hiddenSize int, bidir bool, backend B) *LSTM[B] {
	return nn.NewLSTM(inputSize, hiddenSize, bidir, backend)
}

// QRNN is a single-layer quasi-recurrent cell.
type QRNN[B tensor.Backend] = nn.QRNN[B]

// NewQRNN creates a single-layer quasi-recurrent cell.
func NewQRNN[B tensor.Backend](inputSize, hiddenSize int, backend B) *QRNN[B] {
	return nn.NewQRNN(inputSize, hiddenSize, backend)
}

// State dicts

// StateDict flattens a parameter list into a serializable map.
func StateDict[B tensor.Backend](params []*Parameter[B]) map[string]*tensor.RawTensor {
	return nn.StateDict(params)
}

// LoadStateDict restores a parameter list from a StateDict map.
func LoadStateDict[B tensor.Backend](params []*Parameter[B], sd map[string]*tensor.RawTensor) error {
	return nn.LoadStateDict(params, sd)
}

// Save writes parameters to a .strand checkpoint.
func Save[B tensor.Backend](path, modelType string, params []*Parameter[B]) error {
	return nn.Save(path, modelType, params)
}

// Load restores parameters from a .strand checkpoint.
func Load[B tensor.Backend](path string, params []*Parameter[B]) error {
	return nn.Load(path, params)
}
