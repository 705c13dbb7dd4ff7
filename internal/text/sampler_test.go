package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampler_Greedy(t *testing.T) {
	cfg := DefaultSamplerConfig()
	cfg.Temperature = 0
	s := NewSampler(cfg)

	logits := []float32{0.1, 2.5, -1.0, 2.4}
	assert.Equal(t, int32(1), s.Sample(logits, nil))

	// Greedy never consults the RNG, so repeated calls agree.
	assert.Equal(t, int32(1), s.Sample(logits, nil))
}

func TestSampler_SeededDeterminism(t *testing.T) {
	logits := []float32{1, 2, 3, 4, 5}

	cfg := DefaultSamplerConfig()
	cfg.Seed = 99
	a := NewSampler(cfg)
	b := NewSampler(cfg)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Sample(logits, nil), b.Sample(logits, nil), "draw %d", i)
	}
}

func TestSampler_TopKRestricts(t *testing.T) {
	cfg := DefaultSamplerConfig()
	cfg.TopK = 2
	cfg.Seed = 1
	s := NewSampler(cfg)

	// Tokens 1 and 3 dominate; top-2 filtering must never emit the others.
	logits := []float32{0, 10, -5, 9}
	for i := 0; i < 50; i++ {
		tok := s.Sample(logits, nil)
		assert.Contains(t, []int32{1, 3}, tok)
	}
}

func TestSampler_TopPKeepsNucleus(t *testing.T) {
	cfg := DefaultSamplerConfig()
	cfg.TopP = 0.5
	cfg.Seed = 2
	s := NewSampler(cfg)

	// One token holds nearly all the mass; a tight nucleus keeps only it.
	logits := []float32{0, 20, 0, 0}
	for i := 0; i < 50; i++ {
		assert.Equal(t, int32(1), s.Sample(logits, nil))
	}
}

func TestSampler_RepeatPenalty(t *testing.T) {
	cfg := DefaultSamplerConfig()
	cfg.Temperature = 0
	cfg.RepeatPenalty = 3.0
	s := NewSampler(cfg)

	logits := []float32{2.0, 1.9, 0.1}

	// Unpenalized, token 0 wins.
	assert.Equal(t, int32(0), s.Sample(logits, nil))
	// After producing token 0, the penalty hands the argmax to token 1.
	assert.Equal(t, int32(1), s.Sample(logits, []int32{0}))
}

func TestSampler_DoesNotModifyLogits(t *testing.T) {
	cfg := DefaultSamplerConfig()
	cfg.TopK = 1
	cfg.Seed = 3
	s := NewSampler(cfg)

	logits := []float32{1, 2, 3}
	s.Sample(logits, []int32{2})
	assert.Equal(t, []float32{1, 2, 3}, logits)
}
