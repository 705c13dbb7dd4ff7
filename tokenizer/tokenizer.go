// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer exposes Strand's text tokenizers.
package tokenizer

import (
	"github.com/strand-ml/strand/internal/tokenizer"
)

// Tokenizer converts between text and token ids.
type Tokenizer = tokenizer.Tokenizer

// TikToken wraps the tiktoken BPE encodings for subword tokenization.
type TikToken = tokenizer.TikToken

// NewTikToken loads the named tiktoken encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}

// Vocab is a corpus-built word-level vocabulary with pad and unk slots.
type Vocab = tokenizer.Vocab

// Reserved word-level vocabulary slots.
const (
	PadID = tokenizer.PadID
	UnkID = tokenizer.UnkID
)

// BuildVocab scans a corpus and keeps words above the frequency cutoff.
func BuildVocab(corpus []string, minFreq, maxSize int) (*Vocab, error) {
	return tokenizer.BuildVocab(corpus, minFreq, maxSize)
}

// NewVocab builds a vocabulary from an ordered word list.
func NewVocab(words []string) *Vocab {
	return tokenizer.NewVocab(words)
}

// PadBatch right-pads sequences into a row-major (seq, batch) matrix.
func PadBatch(sequences [][]int32, pad int32) ([]int32, int) {
	return tokenizer.PadBatch(sequences, pad)
}
