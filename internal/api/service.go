package api

import (
	"errors"
	"fmt"
	"math"

	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/tensor"
	"github.com/strand-ml/strand/internal/text"
	"github.com/strand-ml/strand/internal/tokenizer"
)

// ErrNoLanguageModel is returned by Perplexity when the service was built
// without a language model checkpoint.
var ErrNoLanguageModel = errors.New("no language model is loaded")

// Prediction is the classification result for one document.
type Prediction struct {
	Label  int       `json:"label"`
	Scores []float32 `json:"scores"`
}

// Service runs inference for the HTTP handlers: word-level tokenization,
// chunked encoding, and the pooling head, all on the CPU backend.
type Service struct {
	model   *text.TextClassifier[*cpu.CPUBackend]
	lm      *text.LanguageModel[*cpu.CPUBackend]
	vocab   *tokenizer.Vocab
	backend *cpu.CPUBackend
}

// NewService wraps a trained classifier and its vocabulary. The model is
// switched to evaluation mode: no serving path ever samples dropout masks.
func NewService(model *text.TextClassifier[*cpu.CPUBackend], vocab *tokenizer.Vocab, backend *cpu.CPUBackend) *Service {
	model.SetTraining(false)
	return &Service{model: model, vocab: vocab, backend: backend}
}

// SetLanguageModel attaches a language model for the perplexity endpoint.
// The model is switched to evaluation mode.
func (s *Service) SetLanguageModel(lm *text.LanguageModel[*cpu.CPUBackend]) {
	lm.SetTraining(false)
	s.lm = lm
}

// Encode tokenizes one document with the service vocabulary.
func (s *Service) Encode(doc string) ([]int32, error) {
	return s.vocab.Encode(doc)
}

// Classify scores each document against the model's classes. Documents are
// padded into one batch; empty documents are rejected.
func (s *Service) Classify(docs []string) ([]Prediction, error) {
	sequences := make([][]int32, len(docs))
	for i, doc := range docs {
		ids, err := s.vocab.Encode(doc)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("document %d is empty", i)
		}
		sequences[i] = ids
	}

	flat, seqLen := tokenizer.PadBatch(sequences, tokenizer.PadID)
	tokens, err := tensor.FromSlice(flat, tensor.Shape{seqLen, len(docs)}, s.backend)
	if err != nil {
		return nil, err
	}

	out := s.model.Forward(tokens, len(docs))
	scores := out.Logits.Softmax(1)

	classes := s.model.Head().NumClasses()
	data := scores.Data()
	preds := make([]Prediction, len(docs))
	for i := range preds {
		row := data[i*classes : (i+1)*classes]
		label := 0
		for j, v := range row {
			if v > row[label] {
				label = j
			}
		}
		preds[i] = Prediction{
			Label:  label,
			Scores: append([]float32(nil), row...),
		}
	}
	return preds, nil
}

// Perplexity scores one document under the language model: the exponential
// of the mean next-token negative log likelihood. Needs at least two tokens.
// The second return value is the number of predicted positions.
func (s *Service) Perplexity(doc string) (float64, int, error) {
	if s.lm == nil {
		return 0, 0, ErrNoLanguageModel
	}
	ids, err := s.vocab.Encode(doc)
	if err != nil {
		return 0, 0, err
	}
	if len(ids) < 2 {
		return 0, 0, fmt.Errorf("need at least two tokens to score, got %d", len(ids))
	}

	steps := len(ids) - 1
	tokens, err := tensor.FromSlice(ids[:steps], tensor.Shape{steps, 1}, s.backend)
	if err != nil {
		return 0, 0, err
	}

	s.lm.Reset()
	out := s.lm.Forward(tokens)

	vocab := s.vocab.VocabSize()
	logits := out.Logits.Data()
	var nll float64
	for t := 0; t < steps; t++ {
		row := logits[t*vocab : (t+1)*vocab]
		nll += negLogProb(row, ids[t+1])
	}
	return math.Exp(nll / float64(steps)), steps, nil
}

// negLogProb computes -log softmax(row)[target] with the usual max shift.
func negLogProb(row []float32, target int32) float64 {
	maxLogit := float64(row[0])
	for _, v := range row[1:] {
		if float64(v) > maxLogit {
			maxLogit = float64(v)
		}
	}
	var sum float64
	for _, v := range row {
		sum += math.Exp(float64(v) - maxLogit)
	}
	return math.Log(sum) + maxLogit - float64(row[target])
}
