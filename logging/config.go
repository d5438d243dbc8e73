package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config is the LOGGING section of the facade configuration file.
type Config struct {
	// Level is one of trace, debug, info, warn, error. Defaults to info.
	Level string `yaml:"level"`
	// Format is json or console. Defaults to json.
	Format string `yaml:"format"`
	// Output is stdout or stderr. Defaults to stderr.
	Output string `yaml:"output"`
}

// New builds a zerolog backed Logger from cfg.
func New(cfg Config) (Zerolog, error) {
	return newWithWriter(cfg, nil)
}

func newWithWriter(cfg Config, w io.Writer) (Zerolog, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return Zerolog{}, fmt.Errorf("logging: invalid level %q: %w", cfg.Level, err)
		}
		level = l
	}

	if w == nil {
		switch strings.ToLower(cfg.Output) {
		case "", "stderr":
			w = os.Stderr
		case "stdout":
			w = os.Stdout
		default:
			return Zerolog{}, fmt.Errorf("logging: invalid output %q", cfg.Output)
		}
	}

	switch strings.ToLower(cfg.Format) {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	default:
		return Zerolog{}, fmt.Errorf("logging: invalid format %q", cfg.Format)
	}

	return NewZerolog(zerolog.New(w).With().Timestamp().Logger().Level(level)), nil
}

func sprint(args []interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}
