package nn

import (
	"github.com/strand-ml/strand/internal/tensor"
)

// WeightDrop applies DropConnect to named weight matrices of a recurrent
// cell. Before every training-mode call it samples a fresh mask per target,
// installs the masked copy on the cell, runs it, and restores the raw
// weights afterwards. The raw parameters stay the only persistent leaves,
// so optimizers and checkpoints never see a masked weight.
type WeightDrop[B tensor.Backend] struct {
	cell     RecurrentCell[B]
	targets  []string
	p        float64
	training bool
}

// NewWeightDrop wraps cell, dropping each of the named weights with
// probability p. Every target must name a registered weight of the cell.
// For LSTM the conventional target is "weight_hh_l0", for QRNN "weight".
func NewWeightDrop[B tensor.Backend](cell RecurrentCell[B], targets []string, p float64) (*WeightDrop[B], error) {
	if err := checkProbability("WeightDrop", p); err != nil {
		return nil, err
	}
	for _, name := range targets {
		if _, err := cell.WeightParam(name); err != nil {
			return nil, err
		}
	}
	return &WeightDrop[B]{
		cell:     cell,
		targets:  append([]string(nil), targets...),
		p:        p,
		training: true,
	}, nil
}

// Forward runs the wrapped cell with freshly masked target weights.
func (w *WeightDrop[B]) Forward(x *tensor.Tensor[float32, B], st State[B]) (*tensor.Tensor[float32, B], State[B]) {
	if !w.training || w.p == 0 {
		return w.cell.Forward(x, st)
	}
	defer w.cell.RestoreWeights()
	for _, name := range w.targets {
		param, err := w.cell.WeightParam(name)
		if err != nil {
			// Targets were validated at construction.
			panic(err)
		}
		raw := param.Tensor()
		mask := dropoutMask[B](raw.Shape(), w.p, raw.Backend())
		if err := w.cell.UseWeight(name, raw.Mul(mask)); err != nil {
			panic(err)
		}
	}
	return w.cell.Forward(x, st)
}

// InitState delegates to the wrapped cell.
func (w *WeightDrop[B]) InitState(batch int) State[B] {
	return w.cell.InitState(batch)
}

// Parameters returns the wrapped cell's raw parameters.
func (w *WeightDrop[B]) Parameters() []*Parameter[B] {
	return w.cell.Parameters()
}

// InputSize returns the wrapped cell's input feature size.
func (w *WeightDrop[B]) InputSize() int {
	return w.cell.InputSize()
}

// OutputSize returns the wrapped cell's output feature size.
func (w *WeightDrop[B]) OutputSize() int {
	return w.cell.OutputSize()
}

// WeightParam delegates to the wrapped cell.
func (w *WeightDrop[B]) WeightParam(name string) (*Parameter[B], error) {
	return w.cell.WeightParam(name)
}

// UseWeight delegates to the wrapped cell.
func (w *WeightDrop[B]) UseWeight(name string, t *tensor.Tensor[float32, B]) error {
	return w.cell.UseWeight(name, t)
}

// RestoreWeights drops any masked substitutions on the wrapped cell.
func (w *WeightDrop[B]) RestoreWeights() {
	w.cell.RestoreWeights()
}

// Cell returns the wrapped cell.
func (w *WeightDrop[B]) Cell() RecurrentCell[B] {
	return w.cell
}

// P returns the drop probability.
func (w *WeightDrop[B]) P() float64 {
	return w.p
}

// SetTraining toggles mask sampling.
func (w *WeightDrop[B]) SetTraining(training bool) {
	w.training = training
	if ts, ok := w.cell.(ModeSetter); ok {
		ts.SetTraining(training)
	}
}

// Reset restores the raw weights on the wrapped cell.
func (w *WeightDrop[B]) Reset() {
	w.cell.RestoreWeights()
	if s, ok := w.cell.(StatefulModule); ok {
		s.Reset()
	}
}
