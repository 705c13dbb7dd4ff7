package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/strand-ml/strand/internal/api"
	"github.com/strand-ml/strand/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		modelPath, lmPath, vocabPath                   string
		embed, hidden, layers, classes, window, maxSeq int
		addr, logLevel                                 string
		readTimeout                                    time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the classification REST API",
		Flags: append(modelFlags(&modelPath, &vocabPath, &embed, &hidden, &layers, &classes, &window, &maxSeq),
			&cli.StringFlag{
				Name:        "lm",
				Usage:       "path to a language model .strand checkpoint for /v1/perplexity",
				Destination: &lmPath,
			},
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Value:       "info",
				Destination: &logLevel,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := loadConfig()
			applyModelConfig(cmd, cfg, &modelPath, &vocabPath,
				&embed, &hidden, &layers, &classes, &window, &maxSeq)
			if cfg.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = cfg.ServerAddress
			}
			if cfg.LogLevel != "" && !cmd.IsSet("log-level") {
				logLevel = cfg.LogLevel
			}
			if vocabPath == "" {
				return fmt.Errorf("serve: --vocab is required")
			}

			log := logger.JSON(os.Stderr, logger.ParseLevel(logLevel))

			if cfg.LMPath != "" && !cmd.IsSet("lm") {
				lmPath = cfg.LMPath
			}

			service, err := buildService(modelPath, vocabPath, embed, hidden, layers, classes, window, maxSeq)
			if err != nil {
				return err
			}
			if lmPath != "" {
				lm, err := buildLanguageModel(lmPath, vocabPath, embed, hidden, layers)
				if err != nil {
					return err
				}
				service.SetLanguageModel(lm)
			}
			server := api.NewServer(service, log)

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr)
			ctx = logger.WithContext(ctx, log)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
