package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/strand-ml/strand/internal/tokenizer"
)

func encodeCmd() *cli.Command {
	var (
		encoding  string
		vocabPath string
	)

	return &cli.Command{
		Name:      "encode",
		Usage:     "Tokenize text to token ids",
		ArgsUsage: "TEXT...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "encoding",
				Usage:       "tiktoken encoding name",
				Value:       "cl100k_base",
				Destination: &encoding,
			},
			&cli.StringFlag{
				Name:        "vocab",
				Usage:       "word list file; overrides --encoding with a word-level vocabulary",
				Destination: &vocabPath,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			txt := strings.Join(cmd.Args().Slice(), " ")
			if txt == "" {
				return fmt.Errorf("encode: no text given")
			}

			var tok tokenizer.Tokenizer
			if vocabPath != "" {
				words, err := readWordList(vocabPath)
				if err != nil {
					return err
				}
				tok = tokenizer.NewVocab(words)
			} else {
				tt, err := tokenizer.NewTikToken(encoding)
				if err != nil {
					return err
				}
				tok = tt
			}

			tokens, err := tok.Encode(txt)
			if err != nil {
				return err
			}
			for i, id := range tokens {
				if i > 0 {
					fmt.Print(" ")
				}
				fmt.Print(id)
			}
			fmt.Println()
			return nil
		},
	}
}
