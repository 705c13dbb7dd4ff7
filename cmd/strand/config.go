package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/strand-ml/strand/internal/text"
)

// Config is the strand configuration file (~/.config/strand/config.yaml).
// Flags take precedence; file values fill in anything not set explicitly.
type Config struct {
	ModelPath string `yaml:"model_path"`
	LMPath    string `yaml:"lm_path"`
	VocabPath string `yaml:"vocab_path"`

	// Model dimensions, matching the checkpoint being loaded.
	EmbedSize  *int `yaml:"embed_size"`
	HiddenSize *int `yaml:"hidden_size"`
	NumLayers  *int `yaml:"num_layers"`
	Classes    *int `yaml:"classes"`

	// Classifier windowing
	Window *int `yaml:"window"`
	MaxSeq *int `yaml:"max_seq"`

	LogLevel      string `yaml:"log_level"`
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "strand", "config.yaml")
}

// loadConfig reads the config file, returning a zero Config when absent or
// unreadable.
func loadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// modelFlags are shared by classify and serve.
func modelFlags(model, vocab *string, embed, hidden, layers, classes, window, maxSeq *int) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "model", Usage: "path to a .strand checkpoint", Destination: model},
		&cli.StringFlag{Name: "vocab", Usage: "path to the word list, one word per line", Destination: vocab},
		&cli.IntFlag{Name: "embed-size", Usage: "embedding size", Value: 400, Destination: embed},
		&cli.IntFlag{Name: "hidden-size", Usage: "hidden size per layer", Value: 1152, Destination: hidden},
		&cli.IntFlag{Name: "layers", Usage: "recurrent layer count", Value: 3, Destination: layers},
		&cli.IntFlag{Name: "classes", Usage: "number of output classes", Value: 2, Destination: classes},
		&cli.IntFlag{Name: "window", Usage: "chunk length for long documents", Value: 70, Destination: window},
		&cli.IntFlag{Name: "max-seq", Usage: "trailing positions kept for pooling", Value: 280, Destination: maxSeq},
	}
}

// applyModelConfig fills unset model flags from the config file.
func applyModelConfig(c *cli.Command, cfg Config,
	model, vocab *string, embed, hidden, layers, classes, window, maxSeq *int,
) {
	if cfg.ModelPath != "" && !c.IsSet("model") {
		*model = cfg.ModelPath
	}
	if cfg.VocabPath != "" && !c.IsSet("vocab") {
		*vocab = cfg.VocabPath
	}
	if cfg.EmbedSize != nil && !c.IsSet("embed-size") {
		*embed = *cfg.EmbedSize
	}
	if cfg.HiddenSize != nil && !c.IsSet("hidden-size") {
		*hidden = *cfg.HiddenSize
	}
	if cfg.NumLayers != nil && !c.IsSet("layers") {
		*layers = *cfg.NumLayers
	}
	if cfg.Classes != nil && !c.IsSet("classes") {
		*classes = *cfg.Classes
	}
	if cfg.Window != nil && !c.IsSet("window") {
		*window = *cfg.Window
	}
	if cfg.MaxSeq != nil && !c.IsSet("max-seq") {
		*maxSeq = *cfg.MaxSeq
	}
}

// readWordList loads a vocabulary file, one word per line.
func readWordList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			words = append(words, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab %s: %w", path, err)
	}
	return words, nil
}

// classifierConfig maps the CLI dimensions onto an encoder config using the
// standard classifier dropout schedule.
func classifierConfig(vocabSize, embed, hidden, layers int) text.EncoderConfig {
	return text.EncoderConfig{
		VocabSize:  vocabSize,
		EmbedSize:  embed,
		HiddenSize: hidden,
		NumLayers:  layers,
		PadID:      0,
		Cell:       text.LSTMCell,
		Dropout: text.DropoutConfig{
			Embed:  0.05,
			Input:  0.4,
			Weight: 0.5,
			Hidden: 0.3,
		},
	}
}
