package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// encodingCL100kBase is the GPT-4 family encoding.
	encodingCL100kBase = "cl100k_base"
	// encodingP50kBase and encodingR50kBase are the GPT-3 era encodings.
	encodingP50kBase = "p50k_base"
	encodingR50kBase = "r50k_base"
)

// TikToken wraps pkoukk/tiktoken-go as a subword tokenizer for language
// modeling. It has no pad or unk tokens: BPE covers arbitrary byte
// sequences, and language-model batches are built contiguous, not padded.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken loads the named encoding ("cl100k_base", "p50k_base", ...).
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encodingName, err)
	}
	return &TikToken{encoding: encoding, name: encodingName}, nil
}

// Encode converts text to token ids.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)
	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		result[i] = int32(tok) //nolint:gosec // G115: vocab sizes are far below 2^31.
	}
	return result, nil
}

// Decode converts token ids back to text.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	intTokens := make([]int, len(tokens))
	for i, tok := range tokens {
		intTokens[i] = int(tok)
	}
	return t.encoding.Decode(intTokens), nil
}

// VocabSize returns the encoding's vocabulary size. tiktoken-go does not
// expose it, so the known sizes are hardcoded per encoding.
func (t *TikToken) VocabSize() int {
	switch t.name {
	case encodingCL100kBase:
		return 100256
	case encodingP50kBase, encodingR50kBase:
		return 50257
	default:
		return 100000
	}
}

// PadToken returns -1: tiktoken has no padding token.
func (t *TikToken) PadToken() int32 {
	return -1
}

// UnkToken returns -1: BPE never produces unknown tokens.
func (t *TikToken) UnkToken() int32 {
	return -1
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}
