package envconf

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

type nested struct {
	Brokers []string      `env:"T_BROKERS" default:""`
	Delay   time.Duration `env:"T_DELAY" default:"20ms"`
}

type sample struct {
	DSN    string     `env:"T_DSN"`
	Port   uint16     `env:"T_PORT" default:"8080"`
	Level  slog.Level `env:"T_LEVEL" default:"INFO"`
	Addr   string     `env:"T_ADDR" default:""`
	Nested nested
	Ptr    *nested
	Skip   string `env:"-"`
}

func lookupFrom(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadFunc_DefaultsAndOverrides(t *testing.T) {
	t.Parallel()

	var cfg sample

	err := LoadFunc(&cfg, lookupFrom(map[string]string{
		"T_DSN":     "postgres://x",
		"T_LEVEL":   "DEBUG",
		"T_BROKERS": "a:9092, b:9092,,",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.DSN != "postgres://x" {
		t.Fatalf("dsn: got %q", cfg.DSN)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port default: got %d", cfg.Port)
	}
	if cfg.Level != slog.LevelDebug {
		t.Fatalf("level: got %v", cfg.Level)
	}
	if cfg.Addr != "" {
		t.Fatalf("empty default should keep zero value, got %q", cfg.Addr)
	}
	if len(cfg.Nested.Brokers) != 2 || cfg.Nested.Brokers[1] != "b:9092" {
		t.Fatalf("brokers: got %v", cfg.Nested.Brokers)
	}
	if cfg.Nested.Delay != 20*time.Millisecond {
		t.Fatalf("delay: got %v", cfg.Nested.Delay)
	}
	if cfg.Ptr == nil || cfg.Ptr.Delay != 20*time.Millisecond {
		t.Fatalf("pointer struct not loaded: %+v", cfg.Ptr)
	}
}

func TestLoadFunc_ReportsEveryMissingVariable(t *testing.T) {
	t.Parallel()

	var cfg struct {
		A string `env:"T_A"`
		B int    `env:"T_B"`
	}

	err := LoadFunc(&cfg, lookupFrom(nil))
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("want ErrMissingRequired, got %v", err)
	}

	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 2 {
		t.Fatalf("want two joined errors, got %v", err)
	}
}

func TestLoadFunc_BadValue(t *testing.T) {
	t.Parallel()

	var cfg struct {
		Port uint16 `env:"T_PORT"`
	}

	err := LoadFunc(&cfg, lookupFrom(map[string]string{"T_PORT": "not-a-port"}))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFunc_RejectsNonPointer(t *testing.T) {
	t.Parallel()

	err := LoadFunc(sample{}, lookupFrom(nil))
	if err == nil {
		t.Fatal("expected error for non-pointer destination")
	}
}
