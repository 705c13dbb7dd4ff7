package text

import (
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// LMOutput is the result of one language-model forward pass. Raw and
// Dropped are the encoder's per-layer activation lists, passed through
// untouched for the activation-regularization collaborator.
type LMOutput[B tensor.Backend] struct {
	Logits  *tensor.Tensor[float32, B] // (seq, batch, vocab)
	Raw     []*tensor.Tensor[float32, B]
	Dropped []*tensor.Tensor[float32, B]
}

// LinearDecoder maps the encoder's final activation sequence to vocabulary
// logits: sequence-consistent output dropout followed by a linear
// projection.
//
// With weight tying the projection shares the embedding table's parameter
// tensor, not a copy: an update through either module is visible to both.
type LinearDecoder[B tensor.Backend] struct {
	outputDrop *nn.RNNDropout[B]
	proj       *nn.Linear[B]
}

// NewLinearDecoder creates a decoder projecting inFeatures-wide activations
// to vocabSize logits. Returns an error for an output dropout probability
// outside [0, 1).
func NewLinearDecoder[B tensor.Backend](vocabSize, inFeatures int, outputP float64, withBias bool, backend B) (*LinearDecoder[B], error) {
	outputDrop, err := nn.NewRNNDropout[B](outputP)
	if err != nil {
		return nil, err
	}
	return &LinearDecoder[B]{
		outputDrop: outputDrop,
		proj:       nn.NewLinear(inFeatures, vocabSize, withBias, backend),
	}, nil
}

// Tie shares the embedding table's weight with the projection. The encoder
// must have been built with TieWeights so the widths agree.
func (d *LinearDecoder[B]) Tie(embed *nn.Embedding[B]) {
	d.proj.TieWeight(embed.Weight)
}

// Forward decodes the encoder output into logits.
func (d *LinearDecoder[B]) Forward(enc EncoderOutput[B]) LMOutput[B] {
	x := d.outputDrop.Forward(enc.Last())
	return LMOutput[B]{
		Logits:  d.proj.Forward(x),
		Raw:     enc.Raw,
		Dropped: enc.Dropped,
	}
}

// SetTraining toggles output dropout.
func (d *LinearDecoder[B]) SetTraining(training bool) {
	d.outputDrop.SetTraining(training)
}

// Parameters returns the projection's parameters. When tied, the weight is
// the embedding parameter itself; containers deduplicate shared parameters.
func (d *LinearDecoder[B]) Parameters() []*nn.Parameter[B] {
	return d.proj.Parameters()
}

// Projection returns the underlying linear layer.
func (d *LinearDecoder[B]) Projection() *nn.Linear[B] {
	return d.proj
}
