package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Exam.Bank != "utbk" || cfg.Exam.Duration != "10m" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
  publicURL: "https://exam.example.com"
redis:
  addr: "localhost:6379"
exam:
  duration: "90s"
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.PublicURL != "https://exam.example.com" {
		t.Fatalf("server section not applied: %+v", cfg.Server)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.TTL != "1h" {
		t.Fatalf("redis section not merged with defaults: %+v", cfg.Redis)
	}
	if cfg.Exam.Bank != "utbk" {
		t.Fatalf("expected default bank to survive, got %q", cfg.Exam.Bank)
	}
	if got := TTLDuration(cfg.Exam.Duration, time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [oops"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("empty: got %v", got)
	}
	if got := TTLDuration("nonsense", time.Minute); got != time.Minute {
		t.Fatalf("invalid: got %v", got)
	}
	if got := TTLDuration("2h", time.Minute); got != 2*time.Hour {
		t.Fatalf("valid: got %v", got)
	}
}
