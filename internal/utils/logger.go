package utils

import (
	"fmt"
	"io"
	"time"

	"github.com/benmeehan/gps-ingestor/internal/constants"
	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Output is JSON unless pretty is set.
func NewLogger(out io.Writer, level string, pretty bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", constants.ServiceName).
		Logger(), nil
}
