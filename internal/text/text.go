// Package text assembles the nn building blocks into complete text models:
// a regularized recurrent language model (encoder plus tied linear decoder)
// and a document classifier (chunked encoder plus concat-pooling head).
//
// Activations follow the (seq, batch, feature) layout throughout, and token
// inputs are (seq, batch) int32 matrices.
package text

import (
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// EncoderOutput carries the per-layer activations of one encoder call.
//
// Raw[i] is layer i's untouched output. Dropped[i] is the same activation
// after inter-layer dropout, except for the last layer, where Dropped equals
// Raw: output dropout belongs to the decoder, and the training loop reads
// both lists to compute activation-regularization penalties.
type EncoderOutput[B tensor.Backend] struct {
	Raw     []*tensor.Tensor[float32, B]
	Dropped []*tensor.Tensor[float32, B]
}

// Last returns the final layer's dropout-applied output, the activation
// every downstream head consumes.
func (o EncoderOutput[B]) Last() *tensor.Tensor[float32, B] {
	return o.Dropped[len(o.Dropped)-1]
}

// paramModule is the least capability sequential containers need from their
// children.
type paramModule[B tensor.Backend] interface {
	Parameters() []*nn.Parameter[B]
}
