package eventctl

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestEnvStr(t *testing.T) {
	key := "EVENTCTL_TEST_STR"
	t.Setenv(key, "")
	if got := envStr(key, "def"); got != "def" {
		t.Fatalf("envStr default: got %q", got)
	}
	t.Setenv(key, "  val ")
	if got := envStr(key, "def"); got != "val" {
		t.Fatalf("envStr set: got %q", got)
	}
}

func TestEnvBool(t *testing.T) {
	key := "EVENTCTL_TEST_BOOL"
	t.Setenv(key, "")
	if !envBool(key, true) || envBool(key, false) {
		t.Fatalf("envBool should fall back to default when unset")
	}
	for _, v := range []string{"1", "true", "YES"} {
		t.Setenv(key, v)
		if !envBool(key, false) {
			t.Fatalf("envBool %q -> false", v)
		}
	}
	t.Setenv(key, "no")
	if envBool(key, true) {
		t.Fatalf("envBool no -> true")
	}
}

func TestSetLogLevel(t *testing.T) {
	SetLogLevel("debug")
	if log.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("level = %v", log.GetLevel())
	}
	SetLogLevel("bogus")
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("fallback level = %v", log.GetLevel())
	}
	SetLogLevel("warn")
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("EVENTCTL_SERVER", "http://gate:9000")
	t.Setenv("EVENTCTL_TOKEN", "abc")
	t.Setenv("EVENTCTL_LOG_LEVEL", "")
	t.Setenv("EVENTCTL_COMPACT", "true")
	c := DefaultConfig()
	if c.Server != "http://gate:9000" || c.Token != "abc" || c.LogLvl != "warn" || !c.Compact {
		t.Fatalf("unexpected config: %+v", c)
	}
}
