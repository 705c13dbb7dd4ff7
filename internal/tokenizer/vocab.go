package tokenizer

import (
	"fmt"
	"sort"
	"strings"
)

// Reserved word-level vocabulary slots.
const (
	// PadID is the padding token id in every Vocab.
	PadID int32 = 0
	// UnkID is the unknown-word token id in every Vocab.
	UnkID int32 = 1

	padWord = "<pad>"
	unkWord = "<unk>"
)

// Vocab is a word-level tokenizer built from a corpus: lowercased
// whitespace tokens mapped to dense ids, with reserved pad and unk slots.
// Words below the frequency cutoff fall back to unk.
type Vocab struct {
	itos []string
	stoi map[string]int32
}

// BuildVocab scans the corpus and keeps words occurring at least minFreq
// times, most frequent first (ties broken alphabetically, so builds are
// deterministic). maxSize bounds the vocabulary including the two reserved
// slots; 0 means unbounded.
func BuildVocab(corpus []string, minFreq, maxSize int) (*Vocab, error) {
	if minFreq < 1 {
		return nil, fmt.Errorf("vocab: min frequency must be at least 1, got %d", minFreq)
	}
	counts := make(map[string]int)
	for _, doc := range corpus {
		for _, w := range splitWords(doc) {
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w, n := range counts {
		if n >= minFreq {
			words = append(words, w)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if maxSize > 2 && len(words) > maxSize-2 {
		words = words[:maxSize-2]
	}

	v := &Vocab{
		itos: append([]string{padWord, unkWord}, words...),
		stoi: make(map[string]int32, len(words)+2),
	}
	for i, w := range v.itos {
		v.stoi[w] = int32(i) //nolint:gosec // G115: vocab sizes are far below 2^31.
	}
	return v, nil
}

// NewVocab builds a vocabulary directly from an ordered word list, as
// stored alongside a trained model. Reserved slots are prepended.
func NewVocab(words []string) *Vocab {
	v := &Vocab{
		itos: append([]string{padWord, unkWord}, words...),
		stoi: make(map[string]int32, len(words)+2),
	}
	for i, w := range v.itos {
		v.stoi[w] = int32(i) //nolint:gosec // G115: vocab sizes are far below 2^31.
	}
	return v
}

// Words returns the vocabulary without the reserved slots, in id order.
func (v *Vocab) Words() []string {
	return append([]string(nil), v.itos[2:]...)
}

func splitWords(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Encode maps each word to its id, unknown words to UnkID.
func (v *Vocab) Encode(text string) ([]int32, error) {
	words := splitWords(text)
	ids := make([]int32, len(words))
	for i, w := range words {
		id, ok := v.stoi[w]
		if !ok {
			id = UnkID
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode maps ids back to space-joined words.
func (v *Vocab) Decode(tokens []int32) (string, error) {
	words := make([]string, len(tokens))
	for i, id := range tokens {
		if id < 0 || int(id) >= len(v.itos) {
			return "", fmt.Errorf("vocab: token id %d outside vocabulary of size %d", id, len(v.itos))
		}
		words[i] = v.itos[id]
	}
	return strings.Join(words, " "), nil
}

// VocabSize returns the vocabulary size including reserved slots.
func (v *Vocab) VocabSize() int {
	return len(v.itos)
}

// PadToken returns PadID.
func (v *Vocab) PadToken() int32 {
	return PadID
}

// UnkToken returns UnkID.
func (v *Vocab) UnkToken() int32 {
	return UnkID
}

// Word returns the surface form of id, or unk for out-of-range ids.
func (v *Vocab) Word(id int32) string {
	if id < 0 || int(id) >= len(v.itos) {
		return unkWord
	}
	return v.itos[id]
}
