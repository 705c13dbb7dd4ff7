package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/strand-ml/strand/internal/api"
	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/logger"
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/text"
	"github.com/strand-ml/strand/internal/tokenizer"
)

func classifyCmd() *cli.Command {
	var (
		modelPath, vocabPath                           string
		embed, hidden, layers, classes, window, maxSeq int
	)

	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify documents with a trained model",
		ArgsUsage: "DOCUMENT...",
		Flags:     modelFlags(&modelPath, &vocabPath, &embed, &hidden, &layers, &classes, &window, &maxSeq),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			docs := cmd.Args().Slice()
			if len(docs) == 0 {
				return fmt.Errorf("classify: no documents given")
			}
			applyModelConfig(cmd, loadConfig(), &modelPath, &vocabPath,
				&embed, &hidden, &layers, &classes, &window, &maxSeq)
			if vocabPath == "" {
				return fmt.Errorf("classify: --vocab is required")
			}
			if modelPath == "" {
				logger.FromContext(ctx).Warn("no checkpoint given, classifying with untrained weights")
			}

			service, err := buildService(modelPath, vocabPath, embed, hidden, layers, classes, window, maxSeq)
			if err != nil {
				return err
			}

			preds, err := service.Classify(docs)
			if err != nil {
				return err
			}
			for i, p := range preds {
				fmt.Printf("doc %d: class %d scores %v\n", i, p.Label, p.Scores)
			}
			return nil
		},
	}
}

// buildService assembles the classifier and its vocabulary; when modelPath
// is set, trained weights are restored from the checkpoint.
func buildService(modelPath, vocabPath string, embed, hidden, layers, classes, window, maxSeq int) (*api.Service, error) {
	words, err := readWordList(vocabPath)
	if err != nil {
		return nil, err
	}
	vocab := tokenizer.NewVocab(words)

	backend := cpu.New()
	model, err := text.NewTextClassifier(
		classifierConfig(vocab.VocabSize(), embed, hidden, layers),
		window, maxSeq,
		[]int{50, classes},
		[]float64{0.2, 0.1},
		backend,
	)
	if err != nil {
		return nil, err
	}
	if modelPath != "" {
		if err := nn.Load(modelPath, model.Parameters()); err != nil {
			return nil, fmt.Errorf("load checkpoint %s: %w", modelPath, err)
		}
	}
	return api.NewService(model, vocab, backend), nil
}

// buildLanguageModel restores a tied language model for perplexity scoring.
func buildLanguageModel(lmPath, vocabPath string, embed, hidden, layers int) (*text.LanguageModel[*cpu.CPUBackend], error) {
	words, err := readWordList(vocabPath)
	if err != nil {
		return nil, err
	}
	vocab := tokenizer.NewVocab(words)

	cfg := classifierConfig(vocab.VocabSize(), embed, hidden, layers)
	cfg.TieWeights = true
	lm, err := text.NewLanguageModel(cfg, 0.4, cpu.New())
	if err != nil {
		return nil, err
	}
	if err := nn.Load(lmPath, lm.Parameters()); err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", lmPath, err)
	}
	return lm, nil
}
