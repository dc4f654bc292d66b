package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	quill "go.quill.dev/pkg"
)

const (
	configFileName  = ".quill.yaml"
	historyFileName = ".quill_history"
	defaultPrompt   = "quill> "
)

// config is the optional YAML file read by every subcommand. Flags given on
// the command line win over it.
type config struct {
	Prompt        string `yaml:"prompt"`
	Debug         bool   `yaml:"debug"`
	HistoryFile   string `yaml:"history_file"`
	MaxCallDepth  int    `yaml:"max_call_depth"`
	KeepLastScope bool   `yaml:"keep_last_scope"`
}

func defaultConfig() config {
	cfg := config{
		Prompt:       defaultPrompt,
		MaxCallDepth: quill.DefaultMaxCallDepth,
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, historyFileName)
	}

	return cfg
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, configFileName)
}

// loadConfig reads path over the defaults. An empty path falls back to the
// file in the home directory, which may be missing; a path given explicitly
// must exist.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "config")
	}
	defer file.Close()

	if err := decodeConfig(file, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}

	return cfg, nil
}

func decodeConfig(reader io.Reader, cfg *config) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if cfg.Prompt == "" {
		cfg.Prompt = defaultPrompt
	}

	return nil
}

func (c config) level() log.Level {
	if c.Debug {
		return log.DebugLevel
	}

	return log.InfoLevel
}

func (c config) logger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:  c.level(),
		Prefix: "quill",
	})
}

func (c config) engine(logger *log.Logger) *quill.Engine {
	return quill.NewEngine(quill.Config{
		Logger:        logger,
		MaxCallDepth:  c.MaxCallDepth,
		KeepLastScope: c.KeepLastScope,
	})
}
