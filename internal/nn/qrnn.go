package nn

import (
	"fmt"
	"math"

	"github.com/strand-ml/strand/internal/tensor"
)

// QRNN is a single-layer quasi-recurrent cell: the candidate, forget and
// output gates are computed position-parallel with one matrix multiply, and
// only the cheap element-wise fo-pooling recurrence runs sequentially:
//
//	z, f, o = tanh/σ/σ of x @ W.T + b   (W: [3H, in], named "weight")
//	c_t = f_t * c_{t-1} + (1 - f_t) * z_t
//	h_t = o_t * c_t
//
// It satisfies the same RecurrentCell contract as LSTM, so an encoder can
// swap between the two at construction. The weight-dropout target for this
// cell is "weight".
type QRNN[B tensor.Backend] struct {
	inputSize  int
	hiddenSize int
	params     map[string]*Parameter[B]
	order      []string
	active     map[string]*tensor.Tensor[float32, B]
	backend    B
}

// NewQRNN creates a single-layer quasi-recurrent cell with weights drawn
// from U(-1/sqrt(H), 1/sqrt(H)).
func NewQRNN[B tensor.Backend](inputSize, hiddenSize int, backend B) *QRNN[B] {
	q := &QRNN[B]{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		params:     make(map[string]*Parameter[B]),
		active:     make(map[string]*tensor.Tensor[float32, B]),
		backend:    backend,
	}
	bound := 1.0 / math.Sqrt(float64(hiddenSize))
	q.params["weight"] = NewParameter("weight", Uniform[B](tensor.Shape{3 * hiddenSize, inputSize}, -bound, bound, backend))
	q.params["bias"] = NewParameter("bias", tensor.Zeros[float32](tensor.Shape{3 * hiddenSize}, backend))
	q.order = []string{"weight", "bias"}
	return q
}

func (q *QRNN[B]) weight(name string) *tensor.Tensor[float32, B] {
	if w, ok := q.active[name]; ok {
		return w
	}
	return q.params[name].Tensor()
}

// InitState returns zero hidden and cell states of shape (1, batch, H).
func (q *QRNN[B]) InitState(batch int) State[B] {
	shape := tensor.Shape{1, batch, q.hiddenSize}
	return State[B]{
		H: tensor.Zeros[float32](shape, q.backend),
		C: tensor.Zeros[float32](shape, q.backend),
	}
}

// Forward runs the cell over the whole sequence.
func (q *QRNN[B]) Forward(x *tensor.Tensor[float32, B], st State[B]) (*tensor.Tensor[float32, B], State[B]) {
	shape := x.Shape()
	if len(shape) != 3 || shape[2] != q.inputSize {
		panic(fmt.Sprintf("QRNN.Forward: expected (seq, batch, %d) input, got shape %v", q.inputSize, shape))
	}
	seq, batch := shape[0], shape[1]
	hs := q.hiddenSize
	if st.Zero() {
		st = q.InitState(batch)
	}

	// All gates for all positions in one shot.
	gates := x.Reshape(seq*batch, q.inputSize).
		MatMul(q.weight("weight").Transpose()).
		Add(q.weight("bias").Reshape(1, 3*hs)).
		Reshape(seq, batch, 3*hs)

	z := gates.Narrow(2, 0, hs).Tanh()
	f := gates.Narrow(2, hs, hs).Sigmoid()
	o := gates.Narrow(2, 2*hs, hs).Sigmoid()

	c := st.C.Reshape(batch, hs)
	var h *tensor.Tensor[float32, B]
	steps := make([]*tensor.Tensor[float32, B], 0, seq)
	for t := 0; t < seq; t++ {
		zt := z.Narrow(0, t, 1).Reshape(batch, hs)
		ft := f.Narrow(0, t, 1).Reshape(batch, hs)
		ot := o.Narrow(0, t, 1).Reshape(batch, hs)

		// fo-pooling: c = f*c + (1-f)*z, h = o*c.
		c = ft.Mul(c).Add(ft.MulScalar(-1).AddScalar(1).Mul(zt))
		h = ot.Mul(c)
		steps = append(steps, h.Reshape(1, batch, hs))
	}

	out := tensor.Cat(steps, 0)
	return out, State[B]{H: h.Reshape(1, batch, hs), C: c.Reshape(1, batch, hs)}
}

// Parameters returns the raw trainable parameters.
func (q *QRNN[B]) Parameters() []*Parameter[B] {
	out := make([]*Parameter[B], 0, len(q.order))
	for _, name := range q.order {
		out = append(out, q.params[name])
	}
	return out
}

// InputSize returns the expected input feature size.
func (q *QRNN[B]) InputSize() int {
	return q.inputSize
}

// OutputSize returns the hidden size.
func (q *QRNN[B]) OutputSize() int {
	return q.hiddenSize
}

// WeightParam returns the raw parameter registered under name.
func (q *QRNN[B]) WeightParam(name string) (*Parameter[B], error) {
	p, ok := q.params[name]
	if !ok {
		return nil, &UnknownWeightError{Name: name}
	}
	return p, nil
}

// UseWeight installs a transient substitute for the named weight.
func (q *QRNN[B]) UseWeight(name string, w *tensor.Tensor[float32, B]) error {
	p, ok := q.params[name]
	if !ok {
		return &UnknownWeightError{Name: name}
	}
	if !w.Shape().Equal(p.Tensor().Shape()) {
		return &ShapeMismatchError{Name: name, Want: p.Tensor().Shape(), Got: w.Shape()}
	}
	q.active[name] = w
	return nil
}

// RestoreWeights drops all substitutions.
func (q *QRNN[B]) RestoreWeights() {
	clear(q.active)
}
