package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	def := Default()
	if cfg.Addr != def.Addr || cfg.ShutdownTimeout != def.ShutdownTimeout || cfg.RoomIDBytes != def.RoomIDBytes {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.AnnounceUsersOnConnect != def.AnnounceUsersOnConnect || cfg.SocketIOEnabled != def.SocketIOEnabled {
		t.Fatalf("boolean defaults lost: %+v", cfg)
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: \":7000\"\nack_timeout: 2s\nadmin_api: true\nallowed_origins:\n  - example.com\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BUZZER_LOG_LEVEL", "debug")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("expected addr from file, got %q", cfg.Addr)
	}
	if cfg.AckTimeout != 2*time.Second {
		t.Fatalf("expected ack timeout 2s, got %v", cfg.AckTimeout)
	}
	if !cfg.AdminAPI {
		t.Fatalf("expected admin_api from file")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "example.com" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level from env, got %q", cfg.LogLevel)
	}
	if cfg.EventBuffer != Default().EventBuffer {
		t.Fatalf("unset keys should keep defaults, got %d", cfg.EventBuffer)
	}
}

func TestUpdateFromOverridesNonZeroOnly(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":9000", LogLevel: "warn"})

	if cfg.Addr != ":9000" || cfg.LogLevel != "warn" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ShutdownTimeout != Default().ShutdownTimeout || cfg.Mode != Default().Mode {
		t.Fatalf("zero values must not override: %+v", cfg)
	}
}
