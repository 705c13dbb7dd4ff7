package text

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// GeneratorConfig configures autoregressive generation.
type GeneratorConfig struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// StopTokens are token IDs that end generation when sampled.
	StopTokens []int32

	// Sampling is the next-token sampling configuration.
	Sampling SamplerConfig
}

// DefaultGeneratorConfig returns sensible defaults for generation.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxTokens: 256,
		Sampling:  DefaultSamplerConfig(),
	}
}

// Generator produces token continuations from a language model.
//
// The model is recurrent, so generation is incremental: the prompt is fed
// once to warm the hidden state, then each sampled token is fed back one
// step at a time. The generator owns the model's hidden state for the
// duration of a Generate call and resets it at the start of each call.
type Generator[B tensor.Backend] struct {
	model   *LanguageModel[B]
	sampler *Sampler
	cfg     GeneratorConfig
	backend B
}

// NewGenerator creates a generator around a language model.
func NewGenerator[B tensor.Backend](model *LanguageModel[B], cfg GeneratorConfig, backend B) (*Generator[B], error) {
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("text: MaxTokens must be positive, got %d", cfg.MaxTokens)
	}
	return &Generator[B]{
		model:   model,
		sampler: NewSampler(cfg.Sampling),
		cfg:     cfg,
		backend: backend,
	}, nil
}

// Generate extends prompt with up to MaxTokens sampled tokens and returns
// only the newly generated IDs.
func (g *Generator[B]) Generate(prompt []int32) ([]int32, error) {
	if len(prompt) == 0 {
		return nil, fmt.Errorf("text: empty prompt")
	}

	g.model.SetTraining(false)
	g.model.Reset()

	logits, err := g.step(prompt)
	if err != nil {
		return nil, err
	}

	history := append([]int32{}, prompt...)
	generated := make([]int32, 0, g.cfg.MaxTokens)

	for len(generated) < g.cfg.MaxTokens {
		next := g.sampler.Sample(logits, history)
		if g.isStop(next) {
			break
		}
		generated = append(generated, next)
		history = append(history, next)

		logits, err = g.step([]int32{next})
		if err != nil {
			return nil, err
		}
	}
	return generated, nil
}

// step feeds tokens as a single-document batch and returns the logits of
// the final position.
func (g *Generator[B]) step(tokens []int32) ([]float32, error) {
	input, err := tensor.FromSlice(tokens, tensor.Shape{len(tokens), 1}, g.backend)
	if err != nil {
		return nil, fmt.Errorf("text: building input: %w", err)
	}
	out := g.model.Forward(input)
	last := out.Logits.Narrow(0, len(tokens)-1, 1)
	vocab := last.Shape()[2]
	return last.Reshape(vocab).Data(), nil
}

func (g *Generator[B]) isStop(tok int32) bool {
	for _, s := range g.cfg.StopTokens {
		if tok == s {
			return true
		}
	}
	return false
}
