package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the application logger. Development gets a human readable console
// writer, everything else structured JSON on stdout.
func New(env string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return zerolog.New(out).With().Timestamp().Str("service", "nutricare").Logger()
}
