package cmd

import (
	"io"
	"time"

	"github.com/etnz/cartera/config"
	"github.com/rs/zerolog"
)

// newLogger creates the structured logger of the command line. An empty or
// unknown level logs at info.
func newLogger(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
