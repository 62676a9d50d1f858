package fixture

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// Logger returns the package logger. Diagnostics go through it (stderr);
// supervisor-facing readiness and crash lines are plain stdout.
func Logger() zerolog.Logger {
	return logger
}
