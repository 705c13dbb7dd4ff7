package text

import (
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// SequentialRNN groups model components so that train/eval mode switches
// and state resets fan out to every child, and parameter collection
// deduplicates tensors shared by weight tying.
type SequentialRNN[B tensor.Backend] struct {
	children []paramModule[B]
}

func newSequentialRNN[B tensor.Backend](children ...paramModule[B]) SequentialRNN[B] {
	return SequentialRNN[B]{children: children}
}

// SetTraining propagates the mode to every child that distinguishes modes.
func (s *SequentialRNN[B]) SetTraining(training bool) {
	for _, c := range s.children {
		if m, ok := c.(nn.ModeSetter); ok {
			m.SetTraining(training)
		}
	}
}

// Reset clears per-sequence state on every stateful child.
func (s *SequentialRNN[B]) Reset() {
	for _, c := range s.children {
		if m, ok := c.(nn.StatefulModule); ok {
			m.Reset()
		}
	}
}

// Parameters returns all children's parameters with tied duplicates
// removed, so an optimizer steps each shared tensor exactly once.
func (s *SequentialRNN[B]) Parameters() []*nn.Parameter[B] {
	seen := make(map[*nn.Parameter[B]]bool)
	var params []*nn.Parameter[B]
	for _, c := range s.children {
		for _, p := range c.Parameters() {
			if seen[p] {
				continue
			}
			seen[p] = true
			params = append(params, p)
		}
	}
	return params
}

// LanguageModel ties an Encoder to a LinearDecoder.
type LanguageModel[B tensor.Backend] struct {
	SequentialRNN[B]
	encoder *Encoder[B]
	decoder *LinearDecoder[B]
}

// NewLanguageModel builds the standard AWD-LSTM language model: encoder,
// decoder with output dropout outputP and no bias, and weight tying when
// the encoder was configured for it.
func NewLanguageModel[B tensor.Backend](cfg EncoderConfig, outputP float64, backend B) (*LanguageModel[B], error) {
	encoder, err := NewEncoder(cfg, backend)
	if err != nil {
		return nil, err
	}
	decoder, err := NewLinearDecoder(cfg.VocabSize, encoder.OutputSize(), outputP, false, backend)
	if err != nil {
		return nil, err
	}
	if cfg.TieWeights {
		decoder.Tie(encoder.Embedding())
	}
	return &LanguageModel[B]{
		SequentialRNN: newSequentialRNN[B](encoder, decoder),
		encoder:       encoder,
		decoder:       decoder,
	}, nil
}

// Forward runs one language-model step over a (seq, batch) token matrix.
func (m *LanguageModel[B]) Forward(tokens *tensor.Tensor[int32, B]) LMOutput[B] {
	return m.decoder.Forward(m.encoder.Forward(tokens))
}

// Encoder returns the underlying encoder.
func (m *LanguageModel[B]) Encoder() *Encoder[B] {
	return m.encoder
}

// Decoder returns the underlying decoder.
func (m *LanguageModel[B]) Decoder() *LinearDecoder[B] {
	return m.decoder
}

// TextClassifier ties a ChunkedEncoder to a PoolingClassifier.
type TextClassifier[B tensor.Backend] struct {
	SequentialRNN[B]
	encoder *ChunkedEncoder[B]
	head    *PoolingClassifier[B]
}

// NewTextClassifier builds a document classifier: cfg's encoder behind a
// chunking loop (window-length chunks, trailing maxSeq positions kept) and
// a concat-pooling head with the given block widths and dropouts.
func NewTextClassifier[B tensor.Backend](cfg EncoderConfig, window, maxSeq int, widths []int, drops []float64, backend B) (*TextClassifier[B], error) {
	encoder, err := NewEncoder(cfg, backend)
	if err != nil {
		return nil, err
	}
	chunked, err := NewChunkedEncoder(encoder, window, maxSeq)
	if err != nil {
		return nil, err
	}
	head, err := NewPoolingClassifier(encoder.OutputSize(), widths, drops, backend)
	if err != nil {
		return nil, err
	}
	return &TextClassifier[B]{
		SequentialRNN: newSequentialRNN[B](chunked, head),
		encoder:       chunked,
		head:          head,
	}, nil
}

// Forward classifies a (seq, batch) token matrix; bs is the true unpadded
// batch size used for pooling.
func (m *TextClassifier[B]) Forward(tokens *tensor.Tensor[int32, B], bs int) ClassifierOutput[B] {
	return m.head.Forward(m.encoder.Forward(tokens), bs)
}

// Encoder returns the underlying chunked encoder.
func (m *TextClassifier[B]) Encoder() *ChunkedEncoder[B] {
	return m.encoder
}

// Head returns the pooling classifier head.
func (m *TextClassifier[B]) Head() *PoolingClassifier[B] {
	return m.head
}
