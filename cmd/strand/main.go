// Package main provides the strand CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/strand-ml/strand/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:  "strand",
		Usage: "AWD-LSTM text modeling toolkit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			encodeCmd(),
			classifyCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	// Commands pick this logger up through logger.FromContext; serve swaps
	// in its own JSON logger. STRAND_LOG_LEVEL overrides the info default.
	log := logger.Text(os.Stderr, logger.ParseLevel(os.Getenv("STRAND_LOG_LEVEL")))
	ctx := logger.WithContext(context.Background(), log)

	if err := app.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
