package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/tensor"
)

func raw(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func TestMatMul(t *testing.T) {
	c := New()

	a := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := raw(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := c.MatMul(a, b)

	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestMatMul_Identity(t *testing.T) {
	c := New()

	x := raw(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	eye := raw(t, []float32{1, 0, 0, 1}, tensor.Shape{2, 2})

	assert.Equal(t, x.AsFloat32(), c.MatMul(x, eye).AsFloat32())
}

func TestMatMul_LargeMatchesSequential(t *testing.T) {
	// Large enough that the row loop actually fans out across workers.
	c := New()
	seq := &CPUBackend{} // zero Config disables parallelism

	m, k, n := 130, 7, 5
	aData := make([]float32, m*k)
	bData := make([]float32, k*n)
	for i := range aData {
		aData[i] = float32(i%13) - 6
	}
	for i := range bData {
		bData[i] = float32(i%7) - 3
	}
	a := raw(t, aData, tensor.Shape{m, k})
	b := raw(t, bData, tensor.Shape{k, n})

	assert.Equal(t, seq.MatMul(a, b).AsFloat32(), c.MatMul(a, b).AsFloat32())
}

func TestMatMul_ShapeMismatchPanics(t *testing.T) {
	c := New()

	a := raw(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := raw(t, []float32{1, 2, 3}, tensor.Shape{3, 1})

	assert.Panics(t, func() { c.MatMul(a, b) })
}

func TestElementwise(t *testing.T) {
	c := New()

	a := raw(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := raw(t, []float32{4, 3, 2, 1}, tensor.Shape{2, 2})

	assert.Equal(t, []float32{5, 5, 5, 5}, c.Add(a, b).AsFloat32())
	assert.Equal(t, []float32{-3, -1, 1, 3}, c.Sub(a, b).AsFloat32())
	assert.Equal(t, []float32{4, 6, 6, 4}, c.Mul(a, b).AsFloat32())
	assert.Equal(t, []float32{0.25, 2.0 / 3.0, 1.5, 4}, c.Div(a, b).AsFloat32())
}

func TestScalarOps(t *testing.T) {
	c := New()

	x := raw(t, []float32{1, -2, 3}, tensor.Shape{3})

	assert.Equal(t, []float32{2, -1, 4}, c.AddScalar(x, 1).AsFloat32())
	assert.Equal(t, []float32{2, -4, 6}, c.MulScalar(x, 2).AsFloat32())
}

func TestUnaryMath(t *testing.T) {
	c := New()

	x := raw(t, []float32{0, 1}, tensor.Shape{2})

	exp := c.Exp(x).AsFloat32()
	assert.InDelta(t, 1.0, exp[0], 1e-6)
	assert.InDelta(t, 2.7182817, exp[1], 1e-5)

	sq := raw(t, []float32{4, 9}, tensor.Shape{2})
	assert.Equal(t, []float32{2, 3}, c.Sqrt(sq).AsFloat32())

	tanh := c.Tanh(x).AsFloat32()
	assert.InDelta(t, 0.0, tanh[0], 1e-6)
	assert.InDelta(t, 0.7615942, tanh[1], 1e-5)

	sig := c.Sigmoid(x).AsFloat32()
	assert.InDelta(t, 0.5, sig[0], 1e-6)
	assert.InDelta(t, 0.7310586, sig[1], 1e-5)
}

func TestTranspose(t *testing.T) {
	c := New()

	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	out := c.Transpose(x)

	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())
}

func TestAdd_Int32Panics(t *testing.T) {
	c := New()

	x, err := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU)
	require.NoError(t, err)

	assert.Panics(t, func() { c.Add(x, x) })
}

func TestNarrow_Int32(t *testing.T) {
	c := New()

	x, err := tensor.NewRaw(tensor.Shape{4, 1}, tensor.Int32, tensor.CPU)
	require.NoError(t, err)
	copy(x.AsInt32(), []int32{10, 20, 30, 40})

	out := c.Narrow(x, 0, 1, 2)
	assert.Equal(t, tensor.Shape{2, 1}, out.Shape())
	assert.Equal(t, []int32{20, 30}, out.AsInt32())
}
