package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEncoding(t *testing.T, name string) *TikToken {
	t.Helper()
	tok, err := NewTikToken(name)
	if err != nil {
		t.Skipf("encoding %q unavailable: %v", name, err)
	}
	return tok
}

func TestTikToken_RoundTrip(t *testing.T) {
	tok := loadEncoding(t, "cl100k_base")

	text := "hello world, this is a test"
	ids, err := tok.Encode(text)
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	decoded, err := tok.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, text, decoded)
}

func TestTikToken_VocabSize(t *testing.T) {
	tok := loadEncoding(t, "cl100k_base")
	assert.Equal(t, 100256, tok.VocabSize())
	assert.Equal(t, "cl100k_base", tok.Name())

	// No pad or unk in BPE land.
	assert.Equal(t, int32(-1), tok.PadToken())
	assert.Equal(t, int32(-1), tok.UnkToken())
}

func TestTikToken_UnknownEncoding(t *testing.T) {
	_, err := NewTikToken("no_such_encoding")
	assert.Error(t, err)
}
