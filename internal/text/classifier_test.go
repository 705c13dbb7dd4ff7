package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/tensor"
)

func TestPool_HandComputed(t *testing.T) {
	backend := cpu.New()

	// One batch item, three steps of a 2-wide feature.
	x, err := tensor.FromSlice([]float32{
		1, 2,
		3, 0,
		5, -1,
	}, tensor.Shape{3, 1, 2}, backend)
	require.NoError(t, err)

	maxed := Pool(x, 1, true)
	assert.Equal(t, tensor.Shape{1, 2}, maxed.Shape())
	assert.Equal(t, []float32{5, 2}, maxed.Data())

	mean := Pool(x, 1, false)
	assert.InDelta(t, 3.0, mean.Data()[0], 1e-6)
	assert.InDelta(t, 1.0/3.0, mean.Data()[1], 1e-6)
}

func TestPool_ExcludesPaddingItems(t *testing.T) {
	backend := cpu.New()

	// Second batch item is padding garbage that must not leak into the
	// pooled result for bs=1.
	x, err := tensor.FromSlice([]float32{
		1, 2, 100, 100,
		3, 0, 100, 100,
	}, tensor.Shape{2, 2, 2}, backend)
	require.NoError(t, err)

	maxed := Pool(x, 1, true)
	assert.Equal(t, tensor.Shape{1, 2}, maxed.Shape())
	assert.Equal(t, []float32{3, 2}, maxed.Data())
}

func TestPool_BadInputPanics(t *testing.T) {
	backend := cpu.New()

	flat := tensor.Ones(tensor.Shape{3, 2}, backend)
	assert.Panics(t, func() { Pool(flat, 1, true) })

	x := tensor.Ones(tensor.Shape{3, 2, 4}, backend)
	assert.Panics(t, func() { Pool(x, 3, true) })
}

func TestPoolingClassifier_InvalidConfig(t *testing.T) {
	backend := cpu.New()

	_, err := NewPoolingClassifier(0, []int{4, 2}, []float64{0, 0}, backend)
	assert.Error(t, err)

	_, err = NewPoolingClassifier(8, nil, nil, backend)
	assert.Error(t, err)

	_, err = NewPoolingClassifier(8, []int{4, 2}, []float64{0}, backend)
	assert.Error(t, err)

	_, err = NewPoolingClassifier(8, []int{4, 0}, []float64{0, 0}, backend)
	assert.Error(t, err)

	_, err = NewPoolingClassifier(8, []int{4, 2}, []float64{0, 1.5}, backend)
	assert.Error(t, err)
}

func TestPoolingClassifier_Forward(t *testing.T) {
	backend := cpu.New()

	head, err := NewPoolingClassifier(4, []int{6, 3}, []float64{0, 0}, backend)
	require.NoError(t, err)
	head.SetTraining(false)
	assert.Equal(t, 3, head.NumClasses())

	x := tensor.Randn(tensor.Shape{5, 2, 4}, backend)
	enc := EncoderOutput[*cpu.CPUBackend]{
		Raw:     []*tensor.Tensor[float32, *cpu.CPUBackend]{x},
		Dropped: []*tensor.Tensor[float32, *cpu.CPUBackend]{x},
	}

	out := head.Forward(enc, 2)
	assert.Equal(t, tensor.Shape{2, 3}, out.Logits.Shape())

	// A smaller true batch narrows the logits accordingly.
	narrow := head.Forward(enc, 1)
	assert.Equal(t, tensor.Shape{1, 3}, narrow.Logits.Shape())
}

func TestPoolingClassifier_Parameters(t *testing.T) {
	backend := cpu.New()

	head, err := NewPoolingClassifier(4, []int{6, 3}, []float64{0, 0}, backend)
	require.NoError(t, err)

	// Two blocks, each with norm gamma/beta and linear weight/bias.
	assert.Len(t, head.Parameters(), 8)
}
