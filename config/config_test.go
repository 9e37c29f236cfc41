package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadConfig_Defaults(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":8080"
grpc:
  addr: ":9090"
postgres:
  dsn: "postgres://x"
`)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Service != "liveroom" || cfg.Logging.Env != "dev" || cfg.Logging.Backend != "std" {
		t.Fatalf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.WS.SendBuffer != 256 || cfg.WS.ReadLimit != 1<<20 {
		t.Fatalf("ws defaults = %+v", cfg.WS)
	}
	if cfg.WS.PingEvery() != 15*time.Second || cfg.WS.WriteWait() != 5*time.Second {
		t.Fatalf("ws durations = %v %v", cfg.WS.PingEvery(), cfg.WS.WriteWait())
	}
	if cfg.Rooms.DefaultMaxParticipants != 50 || cfg.Rooms.MaxMaxParticipants != 50 {
		t.Fatalf("rooms defaults = %+v", cfg.Rooms)
	}
}

func TestLoadConfig_Required(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing http", "grpc:\n  addr: \":1\"\npostgres:\n  dsn: x\n"},
		{"missing grpc", "http:\n  addr: \":1\"\npostgres:\n  dsn: x\n"},
		{"missing dsn", "http:\n  addr: \":1\"\ngrpc:\n  addr: \":2\"\n"},
		{"key without issuer", "http:\n  addr: \":1\"\ngrpc:\n  addr: \":2\"\npostgres:\n  dsn: x\nauth:\n  publicKeyPath: /k.pem\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.body)
			if _, err := LoadConfig(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseDurationOr(t *testing.T) {
	if got := parseDurationOr(time.Second, "250ms"); got != 250*time.Millisecond {
		t.Fatalf("got %v", got)
	}
	if got := parseDurationOr(time.Second, "bogus"); got != time.Second {
		t.Fatalf("got %v", got)
	}
	if got := parseDurationOr(time.Second, "-5s"); got != time.Second {
		t.Fatalf("got %v", got)
	}
}
