package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/backend/cpu"
)

func TestChunkedEncoder_InvalidConfig(t *testing.T) {
	backend := cpu.New()
	enc, err := NewEncoder(testConfig(), backend)
	require.NoError(t, err)

	_, err = NewChunkedEncoder(enc, 0, 10)
	assert.Error(t, err)
	_, err = NewChunkedEncoder(enc, 10, 0)
	assert.Error(t, err)
}

func TestChunkedEncoder_MatchesUnchunkedTail(t *testing.T) {
	backend := cpu.New()
	enc, err := NewEncoder(testConfig(), backend)
	require.NoError(t, err)
	enc.SetTraining(false)

	window, maxSeq := 5, 8
	chunked, err := NewChunkedEncoder(enc, window, maxSeq)
	require.NoError(t, err)

	seq := 17 // neither a multiple of window nor shorter than maxSeq
	x := seqTokens(t, seq, 2)

	got := chunked.Forward(x)

	enc.Reset()
	want := enc.Forward(x)

	for l := range 3 {
		assert.Equal(t, maxSeq, got.Raw[l].Shape()[0], "layer %d", l)
		assert.Equal(t,
			want.Raw[l].Narrow(0, seq-maxSeq, maxSeq).Data(),
			got.Raw[l].Data(),
			"layer %d", l)
	}
}

func TestChunkedEncoder_FinalStateMatchesUnchunked(t *testing.T) {
	backend := cpu.New()
	enc, err := NewEncoder(testConfig(), backend)
	require.NoError(t, err)
	enc.SetTraining(false)

	chunked, err := NewChunkedEncoder(enc, 4, 6)
	require.NoError(t, err)

	x := seqTokens(t, 13, 2)
	chunked.Forward(x)
	chunkedH := append([]float32{}, enc.States()[2].H.Data()...)

	enc.Reset()
	enc.Forward(x)

	assert.Equal(t, enc.States()[2].H.Data(), chunkedH)
}

func TestChunkedEncoder_ShortSequence(t *testing.T) {
	backend := cpu.New()
	enc, err := NewEncoder(testConfig(), backend)
	require.NoError(t, err)
	enc.SetTraining(false)

	chunked, err := NewChunkedEncoder(enc, 4, 100)
	require.NoError(t, err)

	x := seqTokens(t, 6, 2)
	out := chunked.Forward(x)

	// Shorter than maxSeq: the whole sequence is kept.
	assert.Equal(t, 6, out.Raw[2].Shape()[0])
}

func TestChunkedEncoder_ResetsBetweenDocuments(t *testing.T) {
	backend := cpu.New()
	enc, err := NewEncoder(testConfig(), backend)
	require.NoError(t, err)
	enc.SetTraining(false)

	chunked, err := NewChunkedEncoder(enc, 4, 8)
	require.NoError(t, err)

	x := seqTokens(t, 10, 2)
	a := chunked.Forward(x)
	// A second call on the same document must not see the first call's
	// hidden state.
	b := chunked.Forward(x)

	assert.Equal(t, a.Raw[2].Data(), b.Raw[2].Data())
}
