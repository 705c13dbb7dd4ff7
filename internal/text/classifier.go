package text

import (
	"fmt"

	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// ClassifierOutput is the result of one classifier forward pass. Raw and
// Dropped pass through from the encoder for activation regularization.
type ClassifierOutput[B tensor.Backend] struct {
	Logits  *tensor.Tensor[float32, B] // (batch, classes)
	Raw     []*tensor.Tensor[float32, B]
	Dropped []*tensor.Tensor[float32, B]
}

// classifierBlock is one (norm, dropout, linear, activation) unit of the
// head. act is nil on the final block.
type classifierBlock[B tensor.Backend] struct {
	norm *nn.LayerNorm[B]
	drop *nn.Dropout[B]
	lin  *nn.Linear[B]
	act  *nn.ReLU[B]
}

// PoolingClassifier reduces the encoder's variable-length output to class
// logits: concat pooling (last step, max over the sequence, mean over the
// sequence, giving a 3*feature vector per batch item) followed by a stack
// of normalized linear blocks.
type PoolingClassifier[B tensor.Backend] struct {
	feature int
	blocks  []classifierBlock[B]
}

// NewPoolingClassifier builds a head for feature-wide encoder outputs.
// widths lists every block's output size, the last being the number of
// classes; drops gives one dropout probability per block. Mismatched list
// lengths are a construction error.
func NewPoolingClassifier[B tensor.Backend](feature int, widths []int, drops []float64, backend B) (*PoolingClassifier[B], error) {
	if feature <= 0 {
		return nil, fmt.Errorf("pooling classifier: feature size must be positive, got %d", feature)
	}
	if len(widths) == 0 {
		return nil, fmt.Errorf("pooling classifier: need at least one block")
	}
	if len(drops) != len(widths) {
		return nil, fmt.Errorf("pooling classifier: %d widths but %d dropout probabilities", len(widths), len(drops))
	}

	p := &PoolingClassifier[B]{feature: feature, blocks: make([]classifierBlock[B], 0, len(widths))}
	in := 3 * feature
	for i, out := range widths {
		if out <= 0 {
			return nil, fmt.Errorf("pooling classifier: block %d width must be positive, got %d", i, out)
		}
		drop, err := nn.NewDropout[B](drops[i])
		if err != nil {
			return nil, err
		}
		block := classifierBlock[B]{
			norm: nn.NewLayerNorm(in, 1e-5, backend),
			drop: drop,
			lin:  nn.NewLinear(in, out, true, backend),
		}
		if i < len(widths)-1 {
			block.act = nn.NewReLU[B]()
		}
		p.blocks = append(p.blocks, block)
		in = out
	}
	return p, nil
}

// Pool reduces a (seq, batch, feature) activation over the sequence axis
// for the first bs batch items: element-wise maximum when isMax is set,
// arithmetic mean otherwise. The result has shape (bs, feature).
//
// Panics if bs exceeds the input's batch axis.
func Pool[B tensor.Backend](x *tensor.Tensor[float32, B], bs int, isMax bool) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("Pool: expected (seq, batch, feature) input, got shape %v", shape))
	}
	if bs <= 0 || bs > shape[1] {
		panic(fmt.Sprintf("Pool: batch size %d outside input batch axis of %d", bs, shape[1]))
	}
	x = x.Narrow(1, 0, bs)
	if isMax {
		return x.MaxDim(0, false)
	}
	return x.MeanDim(0, false)
}

// Forward classifies the encoder output for the first bs batch items
// (padding items beyond bs are excluded from pooling).
func (p *PoolingClassifier[B]) Forward(enc EncoderOutput[B], bs int) ClassifierOutput[B] {
	x := enc.Last()
	shape := x.Shape()
	if shape[2] != p.feature {
		panic(fmt.Sprintf("PoolingClassifier.Forward: expected %d features, got %d", p.feature, shape[2]))
	}

	last := x.Narrow(0, shape[0]-1, 1).Narrow(1, 0, bs).Reshape(bs, p.feature)
	pooled := tensor.Cat([]*tensor.Tensor[float32, B]{
		last,
		Pool(x, bs, true),
		Pool(x, bs, false),
	}, 1)

	h := pooled
	for _, b := range p.blocks {
		h = b.lin.Forward(b.drop.Forward(b.norm.Forward(h)))
		if b.act != nil {
			h = b.act.Forward(h)
		}
	}
	return ClassifierOutput[B]{Logits: h, Raw: enc.Raw, Dropped: enc.Dropped}
}

// SetTraining toggles every block's dropout.
func (p *PoolingClassifier[B]) SetTraining(training bool) {
	for _, b := range p.blocks {
		b.drop.SetTraining(training)
	}
}

// Parameters returns every block's norm and linear parameters.
func (p *PoolingClassifier[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, b := range p.blocks {
		params = append(params, b.norm.Parameters()...)
		params = append(params, b.lin.Parameters()...)
	}
	return params
}

// NumClasses returns the final block's output width.
func (p *PoolingClassifier[B]) NumClasses() int {
	return p.blocks[len(p.blocks)-1].lin.OutFeatures()
}
