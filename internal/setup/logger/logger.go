package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a leveled logger writing to stderr, so stdout stays free for
// protocol traffic (MCP stdio) and batch output. Unknown levels fall back to info.
func New(level string, console bool) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, console)
}

func NewWithWriter(w io.Writer, level string, console bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
