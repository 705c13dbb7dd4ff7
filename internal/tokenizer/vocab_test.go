package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVocab(t *testing.T) {
	corpus := []string{
		"the cat sat on the mat",
		"the dog sat",
	}
	v, err := BuildVocab(corpus, 1, 0)
	require.NoError(t, err)

	// pad, unk, then words by descending frequency with alphabetical ties:
	// the(3), sat(2), cat, dog, mat, on.
	assert.Equal(t, []string{"the", "sat", "cat", "dog", "mat", "on"}, v.Words())
	assert.Equal(t, 8, v.VocabSize())
	assert.Equal(t, PadID, v.PadToken())
	assert.Equal(t, UnkID, v.UnkToken())
}

func TestBuildVocab_Deterministic(t *testing.T) {
	corpus := []string{"b a d c e f g h"}
	a, err := BuildVocab(corpus, 1, 0)
	require.NoError(t, err)
	b, err := BuildVocab(corpus, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, a.Words(), b.Words())
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, a.Words())
}

func TestBuildVocab_MinFreq(t *testing.T) {
	v, err := BuildVocab([]string{"a a a b b c"}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.Words())

	_, err = BuildVocab(nil, 0, 0)
	assert.Error(t, err)
}

func TestBuildVocab_MaxSize(t *testing.T) {
	v, err := BuildVocab([]string{"a a a b b c"}, 1, 4)
	require.NoError(t, err)

	// Two reserved slots leave room for the two most frequent words.
	assert.Equal(t, 4, v.VocabSize())
	assert.Equal(t, []string{"a", "b"}, v.Words())
}

func TestVocab_EncodeDecode(t *testing.T) {
	v, err := BuildVocab([]string{"the cat sat"}, 1, 0)
	require.NoError(t, err)

	ids, err := v.Encode("The CAT flew")
	require.NoError(t, err)
	require.Len(t, ids, 3)

	// Case folds, unknown words map to unk.
	assert.NotEqual(t, UnkID, ids[0])
	assert.NotEqual(t, UnkID, ids[1])
	assert.Equal(t, UnkID, ids[2])

	text, err := v.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, "the cat <unk>", text)

	_, err = v.Decode([]int32{99})
	assert.Error(t, err)
}

func TestVocab_WordLookup(t *testing.T) {
	v := NewVocab([]string{"alpha", "beta"})

	assert.Equal(t, "<pad>", v.Word(PadID))
	assert.Equal(t, "alpha", v.Word(2))
	assert.Equal(t, "<unk>", v.Word(-5))
	assert.Equal(t, "<unk>", v.Word(99))
}

func TestNewVocab_RoundTripsWords(t *testing.T) {
	src, err := BuildVocab([]string{"x y z y z z"}, 1, 0)
	require.NoError(t, err)

	dst := NewVocab(src.Words())
	assert.Equal(t, src.Words(), dst.Words())
	assert.Equal(t, src.VocabSize(), dst.VocabSize())

	a, err := src.Encode("x y z")
	require.NoError(t, err)
	b, err := dst.Encode("x y z")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPadBatch(t *testing.T) {
	flat, seqLen := PadBatch([][]int32{
		{1, 2, 3},
		{4},
	}, PadID)

	assert.Equal(t, 3, seqLen)
	// (seq, batch) row-major: row i holds position i of every sequence.
	assert.Equal(t, []int32{1, 4, 2, 0, 3, 0}, flat)
}

func TestPadBatch_Empty(t *testing.T) {
	flat, seqLen := PadBatch(nil, PadID)
	assert.Zero(t, seqLen)
	assert.Empty(t, flat)
}
