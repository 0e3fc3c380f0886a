package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger builds the structured logger for long-running services and
// installs it as the process global. Short-lived CLI commands configure
// logging through internal/logging instead.
func InitLogger(service string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("service", service).Logger()
	log.Logger = logger
	return logger
}
