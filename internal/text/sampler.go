package text

import (
	"math"
	"math/rand"
	"sort"
)

// SamplerConfig configures the next-token sampling strategy.
type SamplerConfig struct {
	// Temperature controls randomness. 0 = greedy, 1 = unchanged, >1 = flatter.
	Temperature float32

	// TopK limits sampling to the K highest-scoring tokens. 0 = disabled.
	TopK int

	// TopP (nucleus sampling) limits to tokens with cumulative probability
	// up to P. 1.0 = disabled.
	TopP float32

	// RepeatPenalty divides positive logits (and multiplies negative ones)
	// of recently produced tokens. 1.0 = no penalty.
	RepeatPenalty float32

	// RepeatWindow is how many trailing tokens the penalty considers. 0 = all.
	RepeatWindow int

	// Seed for reproducibility. -1 = random.
	Seed int64
}

// DefaultSamplerConfig returns sensible defaults for generation.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		Temperature:   1.0,
		TopK:          0,
		TopP:          1.0,
		RepeatPenalty: 1.0,
		RepeatWindow:  64,
		Seed:          -1,
	}
}

// Sampler draws next-token IDs from model logits.
type Sampler struct {
	cfg SamplerConfig
	rng *rand.Rand
}

// NewSampler creates a sampler with the given configuration.
func NewSampler(cfg SamplerConfig) *Sampler {
	var rng *rand.Rand
	if cfg.Seed >= 0 {
		rng = rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic replay
	} else {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // non-crypto use
	}
	return &Sampler{cfg: cfg, rng: rng}
}

// Sample returns the next token ID given the logits over the vocabulary.
// previous holds tokens produced so far and feeds the repetition penalty.
func (s *Sampler) Sample(logits []float32, previous []int32) int32 {
	logits = append([]float32{}, logits...)

	if s.cfg.RepeatPenalty != 1.0 && len(previous) > 0 {
		s.applyRepeatPenalty(logits, previous)
	}

	if s.cfg.Temperature == 0 {
		return argmax(logits)
	}
	if s.cfg.Temperature != 1.0 {
		for i := range logits {
			logits[i] /= s.cfg.Temperature
		}
	}

	if s.cfg.TopK > 0 && s.cfg.TopK < len(logits) {
		s.topKFilter(logits)
	}
	if s.cfg.TopP > 0 && s.cfg.TopP < 1.0 {
		s.topPFilter(logits)
	}

	return s.multinomial(softmaxSlice(logits))
}

func (s *Sampler) applyRepeatPenalty(logits []float32, previous []int32) {
	recent := previous
	if s.cfg.RepeatWindow > 0 && len(previous) > s.cfg.RepeatWindow {
		recent = previous[len(previous)-s.cfg.RepeatWindow:]
	}

	seen := make(map[int32]bool, len(recent))
	for _, tok := range recent {
		seen[tok] = true
	}
	for tok := range seen {
		if int(tok) >= len(logits) {
			continue
		}
		if logits[tok] > 0 {
			logits[tok] /= s.cfg.RepeatPenalty
		} else {
			logits[tok] *= s.cfg.RepeatPenalty
		}
	}
}

// topKFilter sets everything below the K-th largest logit to -inf.
func (s *Sampler) topKFilter(logits []float32) {
	sorted := append([]float32{}, logits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	threshold := sorted[s.cfg.TopK-1]

	for i := range logits {
		if logits[i] < threshold {
			logits[i] = float32(math.Inf(-1))
		}
	}
}

// topPFilter keeps the smallest set of tokens whose cumulative probability
// exceeds P, masking the rest to -inf.
func (s *Sampler) topPFilter(logits []float32) {
	probs := softmaxSlice(logits)

	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return probs[order[i]] > probs[order[j]] })

	var cum float32
	cutoff := len(order)
	for rank, idx := range order {
		cum += probs[idx]
		if cum > s.cfg.TopP {
			cutoff = rank + 1
			break
		}
	}

	keep := make(map[int]bool, cutoff)
	for _, idx := range order[:cutoff] {
		keep[idx] = true
	}
	for i := range logits {
		if !keep[i] {
			logits[i] = float32(math.Inf(-1))
		}
	}
}

func (s *Sampler) multinomial(probs []float32) int32 {
	r := s.rng.Float32()
	var cum float32
	for i, p := range probs {
		cum += p
		if r < cum {
			return int32(i) //nolint:gosec // bounded by vocab size
		}
	}
	return int32(len(probs) - 1) //nolint:gosec // bounded by vocab size
}

func argmax(logits []float32) int32 {
	best := 0
	for i, v := range logits[1:] {
		if v > logits[best] {
			best = i + 1
		}
	}
	return int32(best) //nolint:gosec // bounded by vocab size
}

// softmaxSlice converts logits to probabilities with max subtraction for
// numerical stability. -inf entries map to zero probability.
func softmaxSlice(logits []float32) []float32 {
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	probs := make([]float32, len(logits))
	var sum float32
	for i, v := range logits {
		if math.IsInf(float64(v), -1) {
			continue
		}
		probs[i] = float32(math.Exp(float64(v - maxVal)))
		sum += probs[i]
	}
	if sum > 0 {
		for i := range probs {
			probs[i] /= sum
		}
	}
	return probs
}
