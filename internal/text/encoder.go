package text

import (
	"fmt"

	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// CellType selects the recurrent cell variant used by the encoder.
type CellType int

const (
	// LSTMCell uses nn.LSTM for every layer.
	LSTMCell CellType = iota
	// QRNNCell uses nn.QRNN for every layer. Unidirectional only.
	QRNNCell
)

func (c CellType) String() string {
	switch c {
	case LSTMCell:
		return "lstm"
	case QRNNCell:
		return "qrnn"
	default:
		return fmt.Sprintf("CellType(%d)", int(c))
	}
}

// DropoutConfig groups the encoder-side dropout probabilities. Output
// dropout is not here: it is applied by the decoder.
type DropoutConfig struct {
	Embed  float64 // full embedding rows, before the lookup
	Input  float64 // sequence-consistent, after the lookup
	Weight float64 // DropConnect on recurrent weights
	Hidden float64 // sequence-consistent, between recurrent layers
}

// EncoderConfig describes an AWD-LSTM style encoder.
type EncoderConfig struct {
	VocabSize     int
	EmbedSize     int
	HiddenSize    int
	NumLayers     int
	PadID         int // -1 for none
	Bidirectional bool
	Cell          CellType
	TieWeights    bool // size the last layer to EmbedSize for decoder tying
	Dropout       DropoutConfig
}

func (c EncoderConfig) validate() error {
	if c.VocabSize <= 0 || c.EmbedSize <= 0 || c.HiddenSize <= 0 {
		return fmt.Errorf("encoder: vocab, embedding and hidden sizes must be positive, got %d/%d/%d",
			c.VocabSize, c.EmbedSize, c.HiddenSize)
	}
	if c.NumLayers <= 0 {
		return fmt.Errorf("encoder: need at least one layer, got %d", c.NumLayers)
	}
	if c.Bidirectional && c.Cell == QRNNCell {
		return fmt.Errorf("encoder: qrnn cells do not support bidirectional stacks")
	}
	if c.Bidirectional {
		if c.HiddenSize%2 != 0 {
			return fmt.Errorf("encoder: bidirectional hidden size %d must be even", c.HiddenSize)
		}
		if c.TieWeights && c.EmbedSize%2 != 0 {
			return fmt.Errorf("encoder: bidirectional tied embedding size %d must be even", c.EmbedSize)
		}
	}
	return nil
}

// Encoder is the AWD-LSTM encoder: an embedding table behind row dropout,
// sequence-consistent input dropout, and a stack of weight-dropped recurrent
// layers with sequence-consistent dropout between them.
//
// Hidden state is owned by the encoder and carried across Forward calls, so
// successive chunks of one document stay contiguous in the recurrence. Call
// Reset before starting an unrelated sequence. A change in batch size also
// reinitializes the state.
type Encoder[B tensor.Backend] struct {
	cfg       EncoderConfig
	embedDrop *nn.EmbedDropout[B]
	inputDrop *nn.RNNDropout[B]
	layers    []*nn.WeightDrop[B]
	hidDrops  []*nn.RNNDropout[B] // one per non-final layer
	states    []nn.State[B]
	batch     int
	backend   B
}

// NewEncoder builds the layer stack described by cfg.
//
// Layer sizing: the first layer reads EmbedSize features, intermediate
// layers HiddenSize, and the last layer emits EmbedSize when TieWeights is
// set (so the decoder can share the embedding matrix) and HiddenSize
// otherwise. Bidirectional stacks split each layer's width across the two
// directions.
func NewEncoder[B tensor.Backend](cfg EncoderConfig, backend B) (*Encoder[B], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	embed := nn.NewEmbedding(cfg.VocabSize, cfg.EmbedSize, cfg.PadID, backend)
	embedDrop, err := nn.NewEmbedDropout(embed, cfg.Dropout.Embed)
	if err != nil {
		return nil, err
	}
	inputDrop, err := nn.NewRNNDropout[B](cfg.Dropout.Input)
	if err != nil {
		return nil, err
	}

	dirs := 1
	if cfg.Bidirectional {
		dirs = 2
	}
	lastSize := cfg.HiddenSize
	if cfg.TieWeights {
		lastSize = cfg.EmbedSize
	}

	e := &Encoder[B]{
		cfg:       cfg,
		embedDrop: embedDrop,
		inputDrop: inputDrop,
		layers:    make([]*nn.WeightDrop[B], 0, cfg.NumLayers),
		hidDrops:  make([]*nn.RNNDropout[B], 0, cfg.NumLayers-1),
		states:    make([]nn.State[B], cfg.NumLayers),
		backend:   backend,
	}

	for i := range cfg.NumLayers {
		in := cfg.EmbedSize
		if i > 0 {
			in = cfg.HiddenSize
		}
		out := cfg.HiddenSize
		if i == cfg.NumLayers-1 {
			out = lastSize
		}

		var cell nn.RecurrentCell[B]
		var targets []string
		switch cfg.Cell {
		case QRNNCell:
			cell = nn.NewQRNN(in, out, backend)
			targets = []string{"weight"}
		default:
			cell = nn.NewLSTM(in, out/dirs, cfg.Bidirectional, backend)
			targets = []string{"weight_hh_l0"}
			if cfg.Bidirectional {
				targets = append(targets, "weight_hh_l0_reverse")
			}
		}
		wd, err := nn.NewWeightDrop(cell, targets, cfg.Dropout.Weight)
		if err != nil {
			return nil, err
		}
		e.layers = append(e.layers, wd)

		if i < cfg.NumLayers-1 {
			hd, err := nn.NewRNNDropout[B](cfg.Dropout.Hidden)
			if err != nil {
				return nil, err
			}
			e.hidDrops = append(e.hidDrops, hd)
		}
	}
	return e, nil
}

// Forward encodes a (seq, batch) int32 token matrix.
//
// Both returned lists have one entry per layer, see EncoderOutput. The
// shape of layer i's output is (seq, batch, width_i).
func (e *Encoder[B]) Forward(tokens *tensor.Tensor[int32, B]) EncoderOutput[B] {
	shape := tokens.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Encoder.Forward: expected (seq, batch) token matrix, got shape %v", shape))
	}
	if batch := shape[1]; batch != e.batch {
		e.batch = batch
		for i := range e.states {
			e.states[i] = nn.State[B]{}
		}
	}

	x := e.inputDrop.Forward(e.embedDrop.Forward(tokens))

	out := EncoderOutput[B]{
		Raw:     make([]*tensor.Tensor[float32, B], 0, len(e.layers)),
		Dropped: make([]*tensor.Tensor[float32, B], 0, len(e.layers)),
	}
	for i, layer := range e.layers {
		y, st := layer.Forward(x, e.states[i])
		e.states[i] = st
		out.Raw = append(out.Raw, y)
		if i < len(e.layers)-1 {
			y = e.hidDrops[i].Forward(y)
		}
		out.Dropped = append(out.Dropped, y)
		x = y
	}
	return out
}

// Reset zeroes all per-layer hidden states and restores raw recurrent
// weights. Call it between unrelated sequences.
func (e *Encoder[B]) Reset() {
	for i := range e.states {
		e.states[i] = nn.State[B]{}
	}
	for _, layer := range e.layers {
		layer.Reset()
	}
}

// SetTraining propagates the mode to every dropout component.
func (e *Encoder[B]) SetTraining(training bool) {
	e.embedDrop.SetTraining(training)
	e.inputDrop.SetTraining(training)
	for _, hd := range e.hidDrops {
		hd.SetTraining(training)
	}
	for _, layer := range e.layers {
		layer.SetTraining(training)
	}
}

// Parameters returns the embedding table followed by every layer's raw
// recurrent weights.
func (e *Encoder[B]) Parameters() []*nn.Parameter[B] {
	params := e.embedDrop.Parameters()
	for _, layer := range e.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// Embedding returns the wrapped embedding table, the tying target for a
// LinearDecoder.
func (e *Encoder[B]) Embedding() *nn.Embedding[B] {
	return e.embedDrop.Embed
}

// Config returns the construction parameters.
func (e *Encoder[B]) Config() EncoderConfig {
	return e.cfg
}

// OutputSize returns the feature width of the last layer's output.
func (e *Encoder[B]) OutputSize() int {
	return e.layers[len(e.layers)-1].OutputSize()
}

// States exposes the per-layer hidden states, one per recurrent layer.
func (e *Encoder[B]) States() []nn.State[B] {
	return e.states
}
