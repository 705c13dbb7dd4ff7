package nn

import (
	"github.com/strand-ml/strand/internal/tensor"
)

// EmbedDropout applies dropout to full rows of an embedding table before the
// lookup.
//
// On each training-mode forward call, every row of the table is
// independently zeroed with probability P and surviving rows are scaled by
// 1/(1-P); a token whose row was dropped maps to an all-zero vector at every
// occurrence in that call. The decision is made once per table row per call,
// not per distinct input id. In evaluation mode the lookup is unmodified.
//
// Scale, when non-zero, further multiplies the looked-up vectors; language
// models use it to rescale embeddings by sequence length.
type EmbedDropout[B tensor.Backend] struct {
	Embed    *Embedding[B]
	P        float64
	Scale    float64 // 0 means no extra scaling
	training bool
}

// NewEmbedDropout wraps an embedding table with row dropout.
// Returns an error if p is outside [0, 1).
func NewEmbedDropout[B tensor.Backend](embed *Embedding[B], p float64) (*EmbedDropout[B], error) {
	if err := checkProbability("embedding dropout", p); err != nil {
		return nil, err
	}
	return &EmbedDropout[B]{Embed: embed, P: p, training: true}, nil
}

// Forward looks up indices through the (possibly row-dropped) table.
//
// The stored weight parameter is read-only here: masking happens on a
// transient copy of the table, so gradient updates keep flowing to the raw
// embedding weights.
func (e *EmbedDropout[B]) Forward(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	weight := e.Embed.Weight.Tensor()

	if e.training && e.P > 0 {
		// One Bernoulli draw per table row, broadcast across the row.
		mask := dropoutMask(tensor.Shape{e.Embed.NumEmbed, 1}, e.P, weight.Backend())
		weight = weight.Mul(mask)
	}

	out := weight.Embedding(indices)
	if e.Scale != 0 {
		out = out.MulScalar(e.Scale)
	}
	return out
}

// Parameters returns the wrapped embedding's parameters.
func (e *EmbedDropout[B]) Parameters() []*Parameter[B] {
	return e.Embed.Parameters()
}

// SetTraining switches between training and evaluation mode.
func (e *EmbedDropout[B]) SetTraining(training bool) {
	e.training = training
}
