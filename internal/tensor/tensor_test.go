package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/tensor"
)

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 3}, x.Shape())
	assert.Equal(t, tensor.Float32, x.DType())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x.Data())
}

func TestFromSlice_SizeMismatch(t *testing.T) {
	backend := cpu.New()

	_, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend)
	assert.Error(t, err)
}

func TestAdd_Broadcast(t *testing.T) {
	backend := cpu.New()

	a, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float32{10, 20, 30}, tensor.Shape{1, 3}, backend)
	require.NoError(t, err)

	out := a.Add(b)

	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.Data())
}

func TestMul_BroadcastTrailingOne(t *testing.T) {
	backend := cpu.New()

	// (2, 2) activations scaled by a per-row (2, 1) mask.
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	mask, err := tensor.FromSlice([]float32{2, 0}, tensor.Shape{2, 1}, backend)
	require.NoError(t, err)

	out := x.Mul(mask)
	assert.Equal(t, []float32{2, 4, 0, 0}, out.Data())
}

func TestBroadcast_RankPromotion(t *testing.T) {
	backend := cpu.New()

	// (seq, batch, feature) times a (batch, feature) mask: the mask must
	// apply identically at every sequence position.
	x, err := tensor.FromSlice([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}, tensor.Shape{2, 2, 2}, backend)
	require.NoError(t, err)
	mask, err := tensor.FromSlice([]float32{2, 0, 1, 3}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	out := x.Mul(mask)
	assert.Equal(t, []float32{2, 0, 3, 12, 10, 0, 7, 24}, out.Data())
}

func TestReshape_SharesBuffer(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	v := x.Reshape(3, 2)
	assert.Equal(t, tensor.Shape{3, 2}, v.Shape())

	v.Data()[0] = 99
	assert.Equal(t, float32(99), x.Data()[0])
}

func TestClone_Detaches(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	y := x.Clone()
	y.Data()[0] = 99
	assert.Equal(t, float32(1), x.Data()[0])
}

func TestNarrow(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{
		1, 2,
		3, 4,
		5, 6,
	}, tensor.Shape{3, 2}, backend)
	require.NoError(t, err)

	mid := x.Narrow(0, 1, 2)
	assert.Equal(t, tensor.Shape{2, 2}, mid.Shape())
	assert.Equal(t, []float32{3, 4, 5, 6}, mid.Data())

	col := x.Narrow(1, 1, 1)
	assert.Equal(t, tensor.Shape{3, 1}, col.Shape())
	assert.Equal(t, []float32{2, 4, 6}, col.Data())
}

func TestFlip(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2}, backend)
	require.NoError(t, err)

	out := x.Flip(0)
	assert.Equal(t, []float32{5, 6, 3, 4, 1, 2}, out.Data())

	// Flipping twice restores the original.
	assert.Equal(t, x.Data(), out.Flip(0).Data())
}

func TestCat(t *testing.T) {
	backend := cpu.New()

	a, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float32{3, 4, 5, 6}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	rows := tensor.Cat([]*tensor.Tensor[float32, *cpu.CPUBackend]{a, b}, 0)
	assert.Equal(t, tensor.Shape{3, 2}, rows.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, rows.Data())

	c, err := tensor.FromSlice([]float32{7, 8, 9}, tensor.Shape{3, 1}, backend)
	require.NoError(t, err)
	cols := tensor.Cat([]*tensor.Tensor[float32, *cpu.CPUBackend]{rows, c}, 1)
	assert.Equal(t, tensor.Shape{3, 3}, cols.Shape())
	assert.Equal(t, []float32{1, 2, 7, 3, 4, 8, 5, 6, 9}, cols.Data())
}

func TestReductions(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{
		1, 2,
		3, 0,
		5, -1,
	}, tensor.Shape{3, 2}, backend)
	require.NoError(t, err)

	sum := x.SumDim(0, false)
	assert.Equal(t, tensor.Shape{2}, sum.Shape())
	assert.Equal(t, []float32{9, 1}, sum.Data())

	mean := x.MeanDim(0, false)
	assert.InDelta(t, 3.0, mean.Data()[0], 1e-6)
	assert.InDelta(t, 1.0/3.0, mean.Data()[1], 1e-6)

	maxed := x.MaxDim(0, false)
	assert.Equal(t, []float32{5, 2}, maxed.Data())

	kept := x.SumDim(1, true)
	assert.Equal(t, tensor.Shape{3, 1}, kept.Shape())
	assert.Equal(t, []float32{3, 3, 4}, kept.Data())
}

func TestMeanDim_NegativeDim(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{2, 4, 6, 8}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	mean := x.MeanDim(-1, true)
	assert.Equal(t, tensor.Shape{2, 1}, mean.Shape())
	assert.Equal(t, []float32{3, 7}, mean.Data())
}

func TestSoftmax(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{0, 0, 1000, 1000}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	out := x.Softmax(1)
	data := out.Data()
	// Uniform rows, and large logits must not overflow.
	for _, v := range data {
		assert.InDelta(t, 0.5, v, 1e-6)
	}
}

func TestEmbedding_Lookup(t *testing.T) {
	backend := cpu.New()

	weight, err := tensor.FromSlice([]float32{
		0, 0,
		1, 10,
		2, 20,
	}, tensor.Shape{3, 2}, backend)
	require.NoError(t, err)

	indices, err := tensor.FromSlice([]int32{2, 0, 1, 1}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	out := weight.Embedding(indices)
	assert.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
	assert.Equal(t, []float32{2, 20, 0, 0, 1, 10, 1, 10}, out.Data())
}

func TestCreation(t *testing.T) {
	backend := cpu.New()

	z := tensor.Zeros[float32](tensor.Shape{2, 2}, backend)
	assert.Equal(t, []float32{0, 0, 0, 0}, z.Data())

	o := tensor.Ones(tensor.Shape{3}, backend)
	assert.Equal(t, []float32{1, 1, 1}, o.Data())

	f := tensor.Full(tensor.Shape{2}, 2.5, backend)
	assert.Equal(t, []float32{2.5, 2.5}, f.Data())
}

func TestBroadcastShapes(t *testing.T) {
	out, broadcast, err := tensor.BroadcastShapes(tensor.Shape{2, 3}, tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.False(t, broadcast)
	assert.Equal(t, tensor.Shape{2, 3}, out)

	out, broadcast, err = tensor.BroadcastShapes(tensor.Shape{4, 1, 3}, tensor.Shape{2, 1})
	require.NoError(t, err)
	assert.True(t, broadcast)
	assert.Equal(t, tensor.Shape{4, 2, 3}, out)

	_, _, err = tensor.BroadcastShapes(tensor.Shape{2, 3}, tensor.Shape{4, 3})
	assert.Error(t, err)
}

func TestShape_Helpers(t *testing.T) {
	s := tensor.Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.True(t, s.Equal(tensor.Shape{2, 3, 4}))
	assert.False(t, s.Equal(tensor.Shape{2, 3}))

	c := s.Clone()
	c[0] = 9
	assert.Equal(t, 2, s[0])
}
