package config

import (
	"os"
	"path/filepath"
	"testing"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"EVENTGATE_ADDR":                 ":9000",
		"EVENTGATE_STRICT_EVENT_CLASSES": "true",
		"EVENTGATE_MAX_BODY_BYTES":       "4096",
		"EVENTGATE_QUEUE_WORKERS":        "8",
		"EVENTGATE_KAFKA_BROKERS":        " a:1 , b:2 ,,",
		"EVENTGATE_CORS_ALLOWED_ORIGINS": "*",
		"EVENTGATE_LOG_LEVEL":            "",
	}
	cfg, err := Config{LogLevel: "warn"}.ApplyEnv(mapLookup(env))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Addr != ":9000" || !cfg.StrictEventClasses || cfg.MaxBodyBytes != 4096 || cfg.Queue.Workers != 8 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "a:1" || cfg.Kafka.Brokers[1] != "b:2" {
		t.Fatalf("brokers=%v", cfg.Kafka.Brokers)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("empty env value must not override, got %q", cfg.LogLevel)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	env := map[string]string{
		"EVENTGATE_QUEUE_MAX_DEPTH":   "lots",
		"EVENTGATE_CORS_ENABLED":      "maybe",
		"EVENTGATE_MAX_BODY_BYTES":    "big",
		"EVENTGATE_QUEUE_MAX_WAIT_MS": "5",
	}
	cfg, err := Config{}.ApplyEnv(mapLookup(env))
	if err == nil {
		t.Fatal("expected parse errors")
	}
	if cfg.Queue.MaxWaitMS != 5 {
		t.Fatalf("valid values should still apply, got %+v", cfg.Queue)
	}
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "test.env")
	if err := os.WriteFile(p, []byte("EVENTGATE_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EVENTGATE_TEST_DOTENV", "from-process")
	if err := LoadDotEnv(p, filepath.Join(d, "missing.env")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("EVENTGATE_TEST_DOTENV"); got != "from-file" {
		t.Fatalf(".env should override the environment, got %q", got)
	}
}
