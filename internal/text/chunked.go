package text

import (
	"fmt"

	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// ChunkedEncoder feeds arbitrarily long token sequences to an Encoder in
// fixed-length chunks, carrying hidden state between chunks, and keeps only
// the trailing maxSeq positions of output. Memory for the downstream
// pooling head stays bounded no matter how long the document is, while the
// final hidden state is identical to an unchunked run.
type ChunkedEncoder[B tensor.Backend] struct {
	enc    *Encoder[B]
	window int // chunk length (the truncated-backprop window)
	maxSeq int // trailing positions kept for pooling
}

// NewChunkedEncoder wraps enc with a chunking loop. window is the chunk
// length, maxSeq the trailing output span to keep; both must be positive.
func NewChunkedEncoder[B tensor.Backend](enc *Encoder[B], window, maxSeq int) (*ChunkedEncoder[B], error) {
	if window <= 0 {
		return nil, fmt.Errorf("chunked encoder: window must be positive, got %d", window)
	}
	if maxSeq <= 0 {
		return nil, fmt.Errorf("chunked encoder: max sequence span must be positive, got %d", maxSeq)
	}
	return &ChunkedEncoder[B]{enc: enc, window: window, maxSeq: maxSeq}, nil
}

// Forward encodes a (seq, batch) token matrix chunk by chunk.
//
// The hidden state is reset first (each call is one document), then chunks
// run through the underlying encoder in order with state carried forward.
// Chunks that end before the trailing maxSeq span are dropped immediately;
// the kept chunks are concatenated and trimmed so every returned layer
// output covers exactly the last min(seq, maxSeq) positions.
func (c *ChunkedEncoder[B]) Forward(tokens *tensor.Tensor[int32, B]) EncoderOutput[B] {
	shape := tokens.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("ChunkedEncoder.Forward: expected (seq, batch) token matrix, got shape %v", shape))
	}
	seq := shape[0]
	c.enc.Reset()

	layers := c.enc.Config().NumLayers
	kept := make([]EncoderOutput[B], 0, (c.maxSeq+c.window-1)/c.window+1)
	for start := 0; start < seq; start += c.window {
		length := min(c.window, seq-start)
		out := c.enc.Forward(tokens.Narrow(0, start, length))
		if start+length > seq-c.maxSeq {
			kept = append(kept, out)
		}
	}

	result := EncoderOutput[B]{
		Raw:     make([]*tensor.Tensor[float32, B], layers),
		Dropped: make([]*tensor.Tensor[float32, B], layers),
	}
	keep := min(seq, c.maxSeq)
	for l := range layers {
		result.Raw[l] = concatTrailing(collect(kept, l, false), keep)
		result.Dropped[l] = concatTrailing(collect(kept, l, true), keep)
	}
	return result
}

func collect[B tensor.Backend](outs []EncoderOutput[B], layer int, dropped bool) []*tensor.Tensor[float32, B] {
	parts := make([]*tensor.Tensor[float32, B], 0, len(outs))
	for _, o := range outs {
		if dropped {
			parts = append(parts, o.Dropped[layer])
		} else {
			parts = append(parts, o.Raw[layer])
		}
	}
	return parts
}

// concatTrailing joins chunk outputs along the sequence axis and keeps the
// last keep positions.
func concatTrailing[B tensor.Backend](parts []*tensor.Tensor[float32, B], keep int) *tensor.Tensor[float32, B] {
	joined := parts[0]
	if len(parts) > 1 {
		joined = tensor.Cat(parts, 0)
	}
	total := joined.Shape()[0]
	if total <= keep {
		return joined
	}
	return joined.Narrow(0, total-keep, keep)
}

// Reset clears the underlying encoder's state.
func (c *ChunkedEncoder[B]) Reset() {
	c.enc.Reset()
}

// SetTraining propagates the mode to the underlying encoder.
func (c *ChunkedEncoder[B]) SetTraining(training bool) {
	c.enc.SetTraining(training)
}

// Parameters returns the underlying encoder's parameters.
func (c *ChunkedEncoder[B]) Parameters() []*nn.Parameter[B] {
	return c.enc.Parameters()
}

// Encoder returns the wrapped encoder.
func (c *ChunkedEncoder[B]) Encoder() *Encoder[B] {
	return c.enc
}
