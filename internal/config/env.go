package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "EVENTGATE_"

// LoadDotEnv loads variables from the given .env files (default ".env"),
// overriding the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Overload(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays EVENTGATE_* variables onto c. lookup is usually
// os.LookupEnv.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) (Config, error) {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = splitCSV(v)
		}
	}
	var errs []error
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("ADDR", &c.Addr)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("EVENT_TYPES_PATH", &c.EventTypesPath)
	boolean("STRICT_EVENT_CLASSES", &c.StrictEventClasses)
	str("JOURNAL_PATH", &c.JournalPath)
	str("JWT_SECRET", &c.JWTSecret)
	if v, ok := lookup(EnvPrefix + "MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_BODY_BYTES: %w", EnvPrefix, err))
		} else {
			c.MaxBodyBytes = n
		}
	}
	str("QUEUE_BACKEND", &c.Queue.Backend)
	integer("QUEUE_MAX_DEPTH", &c.Queue.MaxDepth)
	integer("QUEUE_MAX_WAIT_MS", &c.Queue.MaxWaitMS)
	integer("QUEUE_WORKERS", &c.Queue.Workers)
	integer("QUEUE_MAX_ATTEMPTS", &c.Queue.MaxAttempts)
	integer("QUEUE_RETRY_BACKOFF_MS", &c.Queue.RetryBackoffMS)
	list("KAFKA_BROKERS", &c.Kafka.Brokers)
	str("KAFKA_TOPIC_PREFIX", &c.Kafka.TopicPrefix)
	str("KAFKA_GROUP_ID", &c.Kafka.GroupID)
	boolean("CORS_ENABLED", &c.CORS.Enabled)
	list("CORS_ALLOWED_ORIGINS", &c.CORS.AllowedOrigins)

	return c, errors.Join(errs...)
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
