// Package tokenizer turns text into the int32 token-id matrices the text
// models consume.
//
// Two implementations are provided: a tiktoken BPE wrapper for subword
// language modeling, and a corpus-built word-level Vocab for the classifier
// path, where pad and unk handling matter more than subword coverage.
package tokenizer

// Tokenizer converts between text and token ids.
type Tokenizer interface {
	// Encode converts text to token ids.
	Encode(text string) ([]int32, error)

	// Decode converts token ids back to text.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the total vocabulary size.
	VocabSize() int

	// PadToken returns the padding token id, or -1 when the tokenizer has
	// none.
	PadToken() int32

	// UnkToken returns the unknown token id, or -1.
	UnkToken() int32
}

// PadBatch right-pads token sequences to a common length with pad and
// arranges them as a (seq, batch) row-major matrix, the layout the encoder
// expects after tensor.FromSlice. Returns the flattened matrix and the
// padded sequence length.
func PadBatch(sequences [][]int32, pad int32) ([]int32, int) {
	maxLen := 0
	for _, seq := range sequences {
		if len(seq) > maxLen {
			maxLen = len(seq)
		}
	}

	batch := len(sequences)
	flat := make([]int32, maxLen*batch)
	for col, seq := range sequences {
		for row := range maxLen {
			v := pad
			if row < len(seq) {
				v = seq[row]
			}
			flat[row*batch+col] = v
		}
	}
	return flat, maxLen
}
