package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup initializes the pipeline logger. format "text" gets a console
// writer for interactive runs; anything else emits structured JSON for
// scheduled batch jobs. Logs go to stderr so report artifacts written to
// stdout stay clean.
func Setup(format string) zerolog.Logger {
	if format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
