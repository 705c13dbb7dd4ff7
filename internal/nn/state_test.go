package nn

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/tensor"
)

func TestStateDict_RoundTrip(t *testing.T) {
	backend := cpu.New()

	src := NewLSTM(3, 4, false, backend)
	dst := NewLSTM(3, 4, false, backend)

	sd := StateDict(src.Parameters())
	require.Len(t, sd, 4)
	assert.Contains(t, sd, "1.weight_hh_l0")

	require.NoError(t, LoadStateDict(dst.Parameters(), sd))
	for i, p := range src.Parameters() {
		assert.Equal(t, p.Tensor().Data(), dst.Parameters()[i].Tensor().Data())
	}
}

func TestStateDict_RepeatedNames(t *testing.T) {
	backend := cpu.New()

	// Two layers with colliding parameter names must produce distinct keys.
	a := NewQRNN(3, 4, backend)
	b := NewQRNN(4, 4, backend)
	params := append(a.Parameters(), b.Parameters()...)

	sd := StateDict(params)
	assert.Len(t, sd, 4)
	assert.Contains(t, sd, "0.weight")
	assert.Contains(t, sd, "2.weight")
}

func TestLoadStateDict_Missing(t *testing.T) {
	backend := cpu.New()
	cell := NewQRNN(3, 4, backend)

	err := LoadStateDict(cell.Parameters(), map[string]*tensor.RawTensor{})
	var merr *MissingParameterError
	assert.ErrorAs(t, err, &merr)
}

func TestLoadStateDict_ShapeMismatch(t *testing.T) {
	backend := cpu.New()

	src := NewQRNN(3, 8, backend)
	dst := NewQRNN(3, 4, backend)

	err := LoadStateDict(dst.Parameters(), StateDict(src.Parameters()))
	var serr *ShapeMismatchError
	assert.ErrorAs(t, err, &serr)
}

func TestSaveLoad_Checkpoint(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "model.strand")

	src := NewLSTM(3, 4, true, backend)
	require.NoError(t, Save(path, "lstm", src.Parameters()))

	dst := NewLSTM(3, 4, true, backend)
	require.NoError(t, Load(path, dst.Parameters()))

	for i, p := range src.Parameters() {
		assert.Equal(t, p.Tensor().Data(), dst.Parameters()[i].Tensor().Data())
	}
}

func TestParameter_GradLifecycle(t *testing.T) {
	backend := cpu.New()

	p := NewParameter("weight", tensor.Ones(tensor.Shape{2}, backend))
	assert.Nil(t, p.Grad())

	g := tensor.Full(tensor.Shape{2}, 0.5, backend)
	p.SetGrad(g)
	assert.Same(t, g, p.Grad())

	p.ZeroGrad()
	assert.Nil(t, p.Grad())
}
