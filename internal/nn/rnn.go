package nn

import (
	"github.com/strand-ml/strand/internal/tensor"
)

// State holds the recurrent state of one layer.
//
// H has shape (directions, batch, hidden). C is the cell state for cells
// that carry one (LSTM, QRNN fo-pooling); nil otherwise. States belong to
// the encoder that created them and must not be shared between concurrent
// training streams without copying.
type State[B tensor.Backend] struct {
	H *tensor.Tensor[float32, B]
	C *tensor.Tensor[float32, B]
}

// Zero reports whether the state is uninitialized.
func (s State[B]) Zero() bool {
	return s.H == nil
}

// RecurrentCell is the capability interface shared by the LSTM and QRNN
// cells: both consume a (seq, batch, inputSize) activation plus state and
// produce a (seq, batch, outputSize) activation plus updated state, so the
// encoder can treat them interchangeably.
//
// The weight-substitution hooks exist for WeightDrop: a wrapper can install
// a transient masked weight for one call and later restore the raw
// parameter. Cells must read weights through the substitution table so the
// raw parameter tensor is never overwritten.
type RecurrentCell[B tensor.Backend] interface {
	// Forward runs the cell over a full sequence. A zero-valued State
	// means "start from zeros for this batch size".
	Forward(x *tensor.Tensor[float32, B], st State[B]) (*tensor.Tensor[float32, B], State[B])

	// InitState returns a zero state for the given batch size.
	InitState(batch int) State[B]

	// Parameters returns the cell's raw trainable parameters.
	Parameters() []*Parameter[B]

	// InputSize and OutputSize describe the feature axes of Forward.
	InputSize() int
	OutputSize() int

	// WeightParam returns the raw parameter registered under name.
	WeightParam(name string) (*Parameter[B], error)

	// UseWeight substitutes a transient tensor for the named weight until
	// RestoreWeights is called.
	UseWeight(name string, w *tensor.Tensor[float32, B]) error

	// RestoreWeights drops all substitutions, so forward passes read the
	// raw parameters again.
	RestoreWeights()
}
