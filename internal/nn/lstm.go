package nn

import (
	"fmt"
	"math"

	"github.com/strand-ml/strand/internal/tensor"
)

// LSTM is a single-layer long short-term memory cell, optionally
// bidirectional.
//
// Weights follow the usual naming scheme. The first layer's
// hidden-to-hidden matrix, the default weight-dropout target, is
// "weight_hh_l0":
//
//	weight_ih_l0 [4H, in]   weight_hh_l0 [4H, H]
//	bias_ih_l0   [4H]       bias_hh_l0   [4H]
//
// with a "_reverse" suffix for the backward direction. Gate order in the 4H
// axis is input, forget, cell, output.
//
// Forward contract: (seq, batch, in) + State -> (seq, batch, dirs*H) + State,
// where State.H and State.C have shape (dirs, batch, H).
type LSTM[B tensor.Backend] struct {
	inputSize  int
	hiddenSize int
	bidir      bool
	params     map[string]*Parameter[B]
	order      []string
	active     map[string]*tensor.Tensor[float32, B]
	backend    B
}

// NewLSTM creates a single-layer LSTM. All weights and biases are drawn
// from U(-1/sqrt(H), 1/sqrt(H)).
func NewLSTM[B tensor.Backend](inputSize, hiddenSize int, bidir bool, backend B) *LSTM[B] {
	l := &LSTM[B]{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		bidir:      bidir,
		params:     make(map[string]*Parameter[B]),
		active:     make(map[string]*tensor.Tensor[float32, B]),
		backend:    backend,
	}

	bound := 1.0 / math.Sqrt(float64(hiddenSize))
	suffixes := []string{""}
	if bidir {
		suffixes = append(suffixes, "_reverse")
	}
	for _, suffix := range suffixes {
		l.addParam("weight_ih_l0"+suffix, tensor.Shape{4 * hiddenSize, inputSize}, bound)
		l.addParam("weight_hh_l0"+suffix, tensor.Shape{4 * hiddenSize, hiddenSize}, bound)
		l.addParam("bias_ih_l0"+suffix, tensor.Shape{4 * hiddenSize}, bound)
		l.addParam("bias_hh_l0"+suffix, tensor.Shape{4 * hiddenSize}, bound)
	}
	return l
}

func (l *LSTM[B]) addParam(name string, shape tensor.Shape, bound float64) {
	l.params[name] = NewParameter(name, Uniform[B](shape, -bound, bound, l.backend))
	l.order = append(l.order, name)
}

// weight resolves a named weight, honoring any WeightDrop substitution.
func (l *LSTM[B]) weight(name string) *tensor.Tensor[float32, B] {
	if w, ok := l.active[name]; ok {
		return w
	}
	return l.params[name].Tensor()
}

// InitState returns zero hidden and cell states of shape (dirs, batch, H).
func (l *LSTM[B]) InitState(batch int) State[B] {
	dirs := 1
	if l.bidir {
		dirs = 2
	}
	shape := tensor.Shape{dirs, batch, l.hiddenSize}
	return State[B]{
		H: tensor.Zeros[float32](shape, l.backend),
		C: tensor.Zeros[float32](shape, l.backend),
	}
}

// Forward runs the LSTM over the whole sequence.
func (l *LSTM[B]) Forward(x *tensor.Tensor[float32, B], st State[B]) (*tensor.Tensor[float32, B], State[B]) {
	shape := x.Shape()
	if len(shape) != 3 || shape[2] != l.inputSize {
		panic(fmt.Sprintf("LSTM.Forward: expected (seq, batch, %d) input, got shape %v", l.inputSize, shape))
	}
	batch := shape[1]
	if st.Zero() {
		st = l.InitState(batch)
	}

	fwdOut, hF, cF := l.runDirection(x, st, 0, "")
	if !l.bidir {
		return fwdOut, State[B]{H: hF, C: cF}
	}

	// Backward direction: run over the reversed sequence, then restore
	// temporal order before concatenating along the feature axis.
	bwdOut, hB, cB := l.runDirection(x.Flip(0), st, 1, "_reverse")
	out := tensor.Cat([]*tensor.Tensor[float32, B]{fwdOut, bwdOut.Flip(0)}, 2)
	newState := State[B]{
		H: tensor.Cat([]*tensor.Tensor[float32, B]{hF, hB}, 0),
		C: tensor.Cat([]*tensor.Tensor[float32, B]{cF, cB}, 0),
	}
	return out, newState
}

// runDirection unrolls one direction. dir selects the state slice; suffix
// selects the weight set. Returned h and c have shape (1, batch, H).
func (l *LSTM[B]) runDirection(x *tensor.Tensor[float32, B], st State[B], dir int, suffix string,
) (out, hT, cT *tensor.Tensor[float32, B]) {
	shape := x.Shape()
	seq, batch := shape[0], shape[1]
	hs := l.hiddenSize

	h := st.H.Narrow(0, dir, 1).Reshape(batch, hs)
	c := st.C.Narrow(0, dir, 1).Reshape(batch, hs)

	wIH := l.weight("weight_ih_l0" + suffix).Transpose() // [in, 4H]
	wHH := l.weight("weight_hh_l0" + suffix).Transpose() // [H, 4H]
	bias := l.weight("bias_ih_l0" + suffix).
		Add(l.weight("bias_hh_l0" + suffix)).
		Reshape(1, 4*hs)

	// Input projections for every position at once.
	xProj := x.Reshape(seq*batch, l.inputSize).MatMul(wIH).Reshape(seq, batch, 4*hs)

	steps := make([]*tensor.Tensor[float32, B], 0, seq)
	for t := 0; t < seq; t++ {
		gates := xProj.Narrow(0, t, 1).Reshape(batch, 4*hs).
			Add(h.MatMul(wHH)).
			Add(bias)

		i := gates.Narrow(1, 0, hs).Sigmoid()
		f := gates.Narrow(1, hs, hs).Sigmoid()
		g := gates.Narrow(1, 2*hs, hs).Tanh()
		o := gates.Narrow(1, 3*hs, hs).Sigmoid()

		c = f.Mul(c).Add(i.Mul(g))
		h = o.Mul(c.Tanh())
		steps = append(steps, h.Reshape(1, batch, hs))
	}

	out = tensor.Cat(steps, 0)
	return out, h.Reshape(1, batch, hs), c.Reshape(1, batch, hs)
}

// Parameters returns the raw trainable parameters in a stable order.
func (l *LSTM[B]) Parameters() []*Parameter[B] {
	out := make([]*Parameter[B], 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.params[name])
	}
	return out
}

// InputSize returns the expected input feature size.
func (l *LSTM[B]) InputSize() int {
	return l.inputSize
}

// OutputSize returns dirs * hiddenSize.
func (l *LSTM[B]) OutputSize() int {
	if l.bidir {
		return 2 * l.hiddenSize
	}
	return l.hiddenSize
}

// WeightParam returns the raw parameter registered under name.
func (l *LSTM[B]) WeightParam(name string) (*Parameter[B], error) {
	p, ok := l.params[name]
	if !ok {
		return nil, &UnknownWeightError{Name: name}
	}
	return p, nil
}

// UseWeight installs a transient substitute for the named weight.
func (l *LSTM[B]) UseWeight(name string, w *tensor.Tensor[float32, B]) error {
	p, ok := l.params[name]
	if !ok {
		return &UnknownWeightError{Name: name}
	}
	if !w.Shape().Equal(p.Tensor().Shape()) {
		return &ShapeMismatchError{Name: name, Want: p.Tensor().Shape(), Got: w.Shape()}
	}
	l.active[name] = w
	return nil
}

// RestoreWeights drops all substitutions.
func (l *LSTM[B]) RestoreWeights() {
	clear(l.active)
}
