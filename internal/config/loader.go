package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr               string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel           string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat          string `json:"log_format" yaml:"log_format" toml:"log_format"`
	EventTypesPath     string `json:"event_types_path" yaml:"event_types_path" toml:"event_types_path"`
	StrictEventClasses bool   `json:"strict_event_classes" yaml:"strict_event_classes" toml:"strict_event_classes"`
	JournalPath        string `json:"journal_path" yaml:"journal_path" toml:"journal_path"`
	JWTSecret          string `json:"jwt_secret" yaml:"jwt_secret" toml:"jwt_secret"`
	MaxBodyBytes       int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`

	Queue QueueConfig `json:"queue" yaml:"queue" toml:"queue"`
	Kafka KafkaConfig `json:"kafka" yaml:"kafka" toml:"kafka"`
	CORS  CORSConfig  `json:"cors" yaml:"cors" toml:"cors"`
}

// QueueConfig selects and tunes the queue backend.
type QueueConfig struct {
	Backend        string `json:"backend" yaml:"backend" toml:"backend"`
	MaxDepth       int    `json:"max_depth" yaml:"max_depth" toml:"max_depth"`
	MaxWaitMS      int    `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms"`
	Workers        int    `json:"workers" yaml:"workers" toml:"workers"`
	MaxAttempts    int    `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts"`
	RetryBackoffMS int    `json:"retry_backoff_ms" yaml:"retry_backoff_ms" toml:"retry_backoff_ms"`
}

type KafkaConfig struct {
	Brokers     []string `json:"brokers" yaml:"brokers" toml:"brokers"`
	TopicPrefix string   `json:"topic_prefix" yaml:"topic_prefix" toml:"topic_prefix"`
	GroupID     string   `json:"group_id" yaml:"group_id" toml:"group_id"`
}

type CORSConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
}

// Queue backends.
const (
	BackendMemory = "memory"
	BackendKafka  = "kafka"
)

const (
	DefaultAddr         = ":8080"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultMaxBodyBytes = 1 << 20
	DefaultTopicPrefix  = "eventgate."
	DefaultGroupID      = "eventgate"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// WithDefaults returns a copy with unspecified fields filled in. Queue
// tuning zeros are left for the queue package's own defaults.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Queue.Backend == "" {
		c.Queue.Backend = BackendMemory
	}
	if c.Kafka.TopicPrefix == "" {
		c.Kafka.TopicPrefix = DefaultTopicPrefix
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = DefaultGroupID
	}
	return c
}

// Validate checks cross-field constraints after defaults are applied.
func (c Config) Validate() error {
	switch c.Queue.Backend {
	case BackendMemory:
	case BackendKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("queue backend kafka requires kafka.brokers")
		}
	default:
		return fmt.Errorf("unknown queue backend %q", c.Queue.Backend)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
