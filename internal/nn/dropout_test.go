package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/tensor"
)

func TestDropout_InvalidProbability(t *testing.T) {
	for _, p := range []float64{-0.1, 1.0, 1.5} {
		_, err := NewDropout[*cpu.CPUBackend](p)
		var perr *InvalidProbabilityError
		require.ErrorAs(t, err, &perr, "p=%v", p)
		assert.Equal(t, p, perr.P)
	}
}

func TestDropout_ZeroPIsIdentity(t *testing.T) {
	backend := cpu.New()
	d, err := NewDropout[*cpu.CPUBackend](0)
	require.NoError(t, err)

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	out := d.Forward(x)
	assert.Same(t, x, out)
}

func TestDropout_EvalIsIdentity(t *testing.T) {
	backend := cpu.New()
	d, err := NewDropout[*cpu.CPUBackend](0.9)
	require.NoError(t, err)
	d.SetTraining(false)

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	assert.Same(t, x, d.Forward(x))
}

func TestDropout_ValuesZeroOrScaled(t *testing.T) {
	SetSeed(11)
	backend := cpu.New()
	p := 0.25
	d, err := NewDropout[*cpu.CPUBackend](p)
	require.NoError(t, err)

	x := tensor.Ones(tensor.Shape{32, 32}, backend)
	out := d.Forward(x)

	keep := float32(1.0 / (1.0 - p))
	dropped := 0
	for _, v := range out.Data() {
		if v == 0 {
			dropped++
			continue
		}
		assert.InDelta(t, keep, v, 1e-6)
	}
	// 1024 draws at p=0.25: expect roughly 256 zeros.
	assert.Greater(t, dropped, 150)
	assert.Less(t, dropped, 370)

	// Input untouched.
	for _, v := range x.Data() {
		assert.Equal(t, float32(1), v)
	}
}

func TestDropout_NearOneDropsAlmostEverything(t *testing.T) {
	SetSeed(13)
	backend := cpu.New()
	p := 0.999
	d, err := NewDropout[*cpu.CPUBackend](p)
	require.NoError(t, err)

	x := tensor.Ones(tensor.Shape{32, 32}, backend)
	out := d.Forward(x)

	keep := float32(1.0 / (1.0 - p))
	survived := 0
	for _, v := range out.Data() {
		if v == 0 {
			continue
		}
		survived++
		assert.InDelta(t, keep, v, 1e-2)
	}
	// 1024 draws at p=0.999: roughly one survivor, each scaled to 1000.
	assert.Less(t, survived, 16)
}

func TestDropout_FreshMaskPerCall(t *testing.T) {
	SetSeed(3)
	backend := cpu.New()
	d, err := NewDropout[*cpu.CPUBackend](0.5)
	require.NoError(t, err)

	x := tensor.Ones(tensor.Shape{16, 16}, backend)
	a := d.Forward(x).Data()
	b := d.Forward(x).Data()

	assert.NotEqual(t, a, b)
}

func TestRNNDropout_SequenceConsistent(t *testing.T) {
	SetSeed(5)
	backend := cpu.New()
	d, err := NewRNNDropout[*cpu.CPUBackend](0.5)
	require.NoError(t, err)

	seq, batch, feat := 6, 3, 8
	x := tensor.Ones(tensor.Shape{seq, batch, feat}, backend)
	out := d.Forward(x)

	// Every sequence position must carry the exact same (batch, feature)
	// mask.
	first := out.Narrow(0, 0, 1).Data()
	for s := 1; s < seq; s++ {
		assert.Equal(t, first, out.Narrow(0, s, 1).Data(), "position %d", s)
	}

	// And the mask must actually drop something at p=0.5.
	zeros := 0
	for _, v := range first {
		if v == 0 {
			zeros++
		} else {
			assert.InDelta(t, 2.0, v, 1e-6)
		}
	}
	assert.Greater(t, zeros, 0)
	assert.Less(t, zeros, batch*feat)
}

func TestRNNDropout_Non3DPanics(t *testing.T) {
	backend := cpu.New()
	d, err := NewRNNDropout[*cpu.CPUBackend](0.5)
	require.NoError(t, err)

	x := tensor.Ones(tensor.Shape{4, 4}, backend)
	assert.Panics(t, func() { d.Forward(x) })
}

func TestRNNDropout_EvalIsIdentity(t *testing.T) {
	backend := cpu.New()
	d, err := NewRNNDropout[*cpu.CPUBackend](0.5)
	require.NoError(t, err)
	d.SetTraining(false)

	x := tensor.Ones(tensor.Shape{2, 2, 2}, backend)
	assert.Same(t, x, d.Forward(x))
}
