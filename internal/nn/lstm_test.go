package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/tensor"
)

func TestLSTM_ForwardShapes(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTM(6, 10, false, backend)

	x := tensor.Ones(tensor.Shape{7, 3, 6}, backend)
	out, st := cell.Forward(x, State[*cpu.CPUBackend]{})

	assert.Equal(t, tensor.Shape{7, 3, 10}, out.Shape())
	assert.Equal(t, tensor.Shape{1, 3, 10}, st.H.Shape())
	assert.Equal(t, tensor.Shape{1, 3, 10}, st.C.Shape())
	assert.Equal(t, 6, cell.InputSize())
	assert.Equal(t, 10, cell.OutputSize())
}

func TestLSTM_BidirectionalShapes(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTM(4, 5, true, backend)

	x := tensor.Ones(tensor.Shape{6, 2, 4}, backend)
	out, st := cell.Forward(x, State[*cpu.CPUBackend]{})

	assert.Equal(t, tensor.Shape{6, 2, 10}, out.Shape())
	assert.Equal(t, tensor.Shape{2, 2, 5}, st.H.Shape())
	assert.Equal(t, 10, cell.OutputSize())
}

func TestLSTM_LastStepMatchesState(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTM(3, 4, false, backend)

	x := tensor.Ones(tensor.Shape{5, 2, 3}, backend)
	out, st := cell.Forward(x, State[*cpu.CPUBackend]{})

	last := out.Narrow(0, 4, 1).Data()
	assert.Equal(t, st.H.Data(), last)
}

func TestLSTM_StateCarryMatchesFullSequence(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTM(3, 4, false, backend)

	data := make([]float32, 8*2*3)
	for i := range data {
		data[i] = float32(i%5)*0.1 - 0.2
	}
	x, err := tensor.FromSlice(data, tensor.Shape{8, 2, 3}, backend)
	require.NoError(t, err)

	full, fullSt := cell.Forward(x, State[*cpu.CPUBackend]{})

	// Running the two halves with carried state must reproduce the full
	// pass exactly.
	head, st := cell.Forward(x.Narrow(0, 0, 4), State[*cpu.CPUBackend]{})
	tail, tailSt := cell.Forward(x.Narrow(0, 4, 4), st)

	assert.Equal(t, full.Narrow(0, 0, 4).Data(), head.Data())
	assert.Equal(t, full.Narrow(0, 4, 4).Data(), tail.Data())
	assert.Equal(t, fullSt.H.Data(), tailSt.H.Data())
	assert.Equal(t, fullSt.C.Data(), tailSt.C.Data())
}

func TestLSTM_ParameterNames(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTM(3, 4, false, backend)

	names := make([]string, 0)
	for _, p := range cell.Parameters() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"weight_ih_l0", "weight_hh_l0", "bias_ih_l0", "bias_hh_l0"}, names)

	p, err := cell.WeightParam("weight_hh_l0")
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{16, 4}, p.Tensor().Shape())
}

func TestLSTM_BadInputPanics(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTM(3, 4, false, backend)

	x := tensor.Ones(tensor.Shape{5, 2, 7}, backend)
	assert.Panics(t, func() { cell.Forward(x, State[*cpu.CPUBackend]{}) })
}

func TestLSTM_UseWeightChangesOutput(t *testing.T) {
	backend := cpu.New()
	cell := NewLSTM(3, 4, false, backend)

	x := tensor.Ones(tensor.Shape{4, 1, 3}, backend)
	plain, _ := cell.Forward(x, State[*cpu.CPUBackend]{})

	zeroed := tensor.Zeros[float32](tensor.Shape{16, 4}, backend)
	require.NoError(t, cell.UseWeight("weight_hh_l0", zeroed))
	masked, _ := cell.Forward(x, State[*cpu.CPUBackend]{})
	assert.NotEqual(t, plain.Data(), masked.Data())

	cell.RestoreWeights()
	restored, _ := cell.Forward(x, State[*cpu.CPUBackend]{})
	assert.Equal(t, plain.Data(), restored.Data())
}
