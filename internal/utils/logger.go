package utils

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global logger. Logs always go to stderr so
// stdout stays reserved for command output.
func SetupLogging(loglevel string, pretty bool) {
	setupLogging(os.Stderr, loglevel, pretty)
}

func setupLogging(out io.Writer, loglevel string, pretty bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(ParseLogLevel(loglevel))

	if pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func ParseLogLevel(loglevel string) zerolog.Level {
	switch loglevel {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		log.Error().Msgf("loglevel %s not recognized; defaulting to warn", loglevel)
		return zerolog.WarnLevel
	}
}
