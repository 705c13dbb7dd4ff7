package nn

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// dropoutMask builds an inverted-dropout mask: each entry is independently 0
// with probability p, otherwise 1/(1-p), so the expected activation
// magnitude is preserved. Masks are sampled fresh per call and never
// persisted.
func dropoutMask[B tensor.Backend](shape tensor.Shape, p float64, backend B) *tensor.Tensor[float32, B] {
	mask := tensor.Zeros[float32](shape, backend)
	keep := float32(1.0 / (1.0 - p))
	data := mask.Data()
	for i := range data {
		if maskRand.Float64() >= p {
			data[i] = keep
		}
	}
	return mask
}

// Dropout is ordinary element-wise inverted dropout: a fresh mask per
// element per call. Identity in evaluation mode and at p=0.
//
// For recurrent activations use RNNDropout instead, which holds its mask
// fixed along the sequence axis.
type Dropout[B tensor.Backend] struct {
	P        float64
	training bool
}

// NewDropout creates an element-wise dropout module.
// Returns an error if p is outside [0, 1).
func NewDropout[B tensor.Backend](p float64) (*Dropout[B], error) {
	if err := checkProbability("dropout", p); err != nil {
		return nil, err
	}
	return &Dropout[B]{P: p, training: true}, nil
}

// Forward applies element-wise dropout, allocating a fresh output tensor.
// The input is never modified.
func (d *Dropout[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.P == 0 {
		return x
	}
	return x.Mul(dropoutMask(x.Shape(), d.P, x.Backend()))
}

// Parameters returns nil (dropout has no trainable parameters).
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}

// SetTraining switches between training and evaluation mode.
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// RNNDropout is sequence-consistent dropout for recurrent activations.
//
// For an input of shape (seq, batch, feature) it samples one (batch,
// feature) mask per forward call and broadcasts it across every sequence
// position: the same feature channels are dropped at every time step, which
// preserves the temporal consistency of the recurrent signal. This is the
// property that distinguishes it from ordinary per-element dropout.
//
// Identity in evaluation mode and at p=0.
type RNNDropout[B tensor.Backend] struct {
	P        float64
	training bool
}

// NewRNNDropout creates a sequence-consistent dropout module.
// Returns an error if p is outside [0, 1).
func NewRNNDropout[B tensor.Backend](p float64) (*RNNDropout[B], error) {
	if err := checkProbability("rnn dropout", p); err != nil {
		return nil, err
	}
	return &RNNDropout[B]{P: p, training: true}, nil
}

// Forward applies the per-call mask to a (seq, batch, feature) activation.
// A fresh output tensor is returned; the input is never modified.
func (d *RNNDropout[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.P == 0 {
		return x
	}
	shape := x.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("RNNDropout.Forward: expected (seq, batch, feature) input, got shape %v", shape))
	}
	// (batch, feature) mask broadcast across the leading sequence axis.
	mask := dropoutMask(tensor.Shape{shape[1], shape[2]}, d.P, x.Backend())
	return x.Mul(mask)
}

// Parameters returns nil (dropout has no trainable parameters).
func (d *RNNDropout[B]) Parameters() []*Parameter[B] {
	return nil
}

// SetTraining switches between training and evaluation mode.
func (d *RNNDropout[B]) SetTraining(training bool) {
	d.training = training
}
