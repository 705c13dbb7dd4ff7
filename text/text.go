// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package text exposes Strand's assembled text models: the AWD-LSTM
// language model and the pooling document classifier.
//
// Example:
//
//	backend := cpu.New()
//	model, err := text.NewLanguageModel(text.EncoderConfig{
//	    VocabSize:  10000,
//	    EmbedSize:  400,
//	    HiddenSize: 1152,
//	    NumLayers:  3,
//	    PadID:      -1,
//	    TieWeights: true,
//	    Dropout: text.DropoutConfig{
//	        Embed: 0.1, Input: 0.6, Weight: 0.5, Hidden: 0.2,
//	    },
//	}, 0.4, backend)
package text

import (
	internaltext "github.com/strand-ml/strand/internal/text"
	"github.com/strand-ml/strand/internal/tensor"
)

// CellType selects the recurrent cell variant.
type CellType = internaltext.CellType

// Cell variants.
const (
	LSTMCell CellType = internaltext.LSTMCell
	QRNNCell CellType = internaltext.QRNNCell
)

// DropoutConfig groups the encoder-side dropout probabilities.
type DropoutConfig = internaltext.DropoutConfig

// EncoderConfig describes an AWD-LSTM style encoder.
type EncoderConfig = internaltext.EncoderConfig

// EncoderOutput carries per-layer raw and dropout-applied activations.
type EncoderOutput[B tensor.Backend] = internaltext.EncoderOutput[B]

// Encoder is the AWD-LSTM encoder.
type Encoder[B tensor.Backend] = internaltext.Encoder[B]

// NewEncoder builds the layer stack described by cfg.
func NewEncoder[B tensor.Backend](cfg EncoderConfig, backend B) (*Encoder[B], error) {
	return internaltext.NewEncoder(cfg, backend)
}

// LMOutput is the language-model forward result.
type LMOutput[B tensor.Backend] = internaltext.LMOutput[B]

// LinearDecoder maps encoder activations to vocabulary logits.
type LinearDecoder[B tensor.Backend] = internaltext.LinearDecoder[B]

// NewLinearDecoder creates a decoder with sequence-consistent output
// dropout.
func NewLinearDecoder[B tensor.Backend](vocabSize, inFeatures int, outputP float64, withBias bool, backend B) (*LinearDecoder[B], error) {
	return internaltext.NewLinearDecoder(vocabSize, inFeatures, outputP, withBias, backend)
}

// ChunkedEncoder processes long sequences in fixed-length chunks.
type ChunkedEncoder[B tensor.Backend] = internaltext.ChunkedEncoder[B]

// NewChunkedEncoder wraps enc with a chunking loop.
func NewChunkedEncoder[B tensor.Backend](enc *Encoder[B], window, maxSeq int) (*ChunkedEncoder[B], error) {
	return internaltext.NewChunkedEncoder(enc, window, maxSeq)
}

// ClassifierOutput is the classifier forward result.
type ClassifierOutput[B tensor.Backend] = internaltext.ClassifierOutput[B]

// PoolingClassifier is the concat-pooling classification head.
type PoolingClassifier[B tensor.Backend] = internaltext.PoolingClassifier[B]

// NewPoolingClassifier builds a head over feature-wide encoder outputs.
func NewPoolingClassifier[B tensor.Backend](feature int, widths []int, drops []float64, backend B) (*PoolingClassifier[B], error) {
	return internaltext.NewPoolingClassifier(feature, widths, drops, backend)
}

// Pool reduces a (seq, batch, feature) activation over the sequence axis.
func Pool[B tensor.Backend](x *tensor.Tensor[float32, B], bs int, isMax bool) *tensor.Tensor[float32, B] {
	return internaltext.Pool(x, bs, isMax)
}

// SequentialRNN fans out mode switches and resets to grouped components.
type SequentialRNN[B tensor.Backend] = internaltext.SequentialRNN[B]

// LanguageModel ties an Encoder to a LinearDecoder.
type LanguageModel[B tensor.Backend] = internaltext.LanguageModel[B]

// NewLanguageModel builds the standard AWD-LSTM language model.
func NewLanguageModel[B tensor.Backend](cfg EncoderConfig, outputP float64, backend B) (*LanguageModel[B], error) {
	return internaltext.NewLanguageModel(cfg, outputP, backend)
}

// TextClassifier ties a ChunkedEncoder to a PoolingClassifier.
type TextClassifier[B tensor.Backend] = internaltext.TextClassifier[B]

// NewTextClassifier builds a document classifier.
func NewTextClassifier[B tensor.Backend](cfg EncoderConfig, window, maxSeq int, widths []int, drops []float64, backend B) (*TextClassifier[B], error) {
	return internaltext.NewTextClassifier(cfg, window, maxSeq, widths, drops, backend)
}

// SamplerConfig configures next-token sampling.
type SamplerConfig = internaltext.SamplerConfig

// DefaultSamplerConfig returns sensible sampling defaults.
func DefaultSamplerConfig() SamplerConfig {
	return internaltext.DefaultSamplerConfig()
}

// Sampler draws next-token IDs from logits.
type Sampler = internaltext.Sampler

// NewSampler creates a sampler with the given configuration.
func NewSampler(cfg SamplerConfig) *Sampler {
	return internaltext.NewSampler(cfg)
}

// GeneratorConfig configures autoregressive generation.
type GeneratorConfig = internaltext.GeneratorConfig

// DefaultGeneratorConfig returns sensible generation defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return internaltext.DefaultGeneratorConfig()
}

// Generator produces token continuations from a language model.
type Generator[B tensor.Backend] = internaltext.Generator[B]

// NewGenerator creates a generator around a language model.
func NewGenerator[B tensor.Backend](model *LanguageModel[B], cfg GeneratorConfig, backend B) (*Generator[B], error) {
	return internaltext.NewGenerator(model, cfg, backend)
}
