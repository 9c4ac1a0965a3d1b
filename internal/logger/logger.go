package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/tgienger/taskdesk/internal/config"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
}

// New builds a logger writing to w at the configured level. The local env
// gets a human-readable console writer.
func New(cfg *config.Config, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}

	if cfg.Env == config.EnvLocal {
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		w = consoleWriter
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger(), nil
}

// NewFile opens (appending) the log file at path and builds a logger on it.
// The returned closer must be closed on shutdown.
func NewFile(cfg *config.Config, path string) (zerolog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	log, err := New(cfg, f)
	if err != nil {
		f.Close()
		return zerolog.Nop(), nil, err
	}
	return log, f, nil
}
