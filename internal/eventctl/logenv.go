package eventctl

import (
	"os"
	"strings"

	"github.com/rs/zerolog"

	"eventgate/internal/logging"
)

// log is the CLI logger; stderr, console format.
var log = newLogger(envStr("EVENTCTL_LOG_LEVEL", "warn"))

func newLogger(level string) zerolog.Logger {
	return logging.New(os.Stderr, logging.Config{Level: level, Format: "console"})
}

// SetLogLevel replaces the CLI logger level.
func SetLogLevel(level string) { log = newLogger(level) }

// Env helpers
func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}
