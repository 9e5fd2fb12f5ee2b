package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger. Development gets the human readable console writer.
func New(env string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return zerolog.New(out).With().Timestamp().Str("service", "hms").Logger()
}

// Nop is used by tests and by services constructed without a logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
