// Package ledger defines the global settings of the module.
//
// It exposes the logger instance shared by the packages and the list of
// prometheus collectors that an integrator can register to its own registry.
package ledger

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// EnvLogLevel is the name of the environment variable to change the logging
// level.
const EnvLogLevel = "LEDGER_LOG_LEVEL"

const defaultLevel = zerolog.InfoLevel

func init() {
	switch os.Getenv(EnvLogLevel) {
	case "error":
		Logger = Logger.Level(zerolog.ErrorLevel)
	case "warn":
		Logger = Logger.Level(zerolog.WarnLevel)
	case "info":
		Logger = Logger.Level(zerolog.InfoLevel)
	case "debug":
		Logger = Logger.Level(zerolog.DebugLevel)
	case "":
		Logger = Logger.Level(defaultLevel)
	}
}

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(defaultLevel)

// PromCollectors exposes the prometheus collectors created by the module. An
// integrator can use this list to register the metrics to its own registry.
var PromCollectors []prometheus.Collector
