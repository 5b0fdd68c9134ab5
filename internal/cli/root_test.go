package cli

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestApplyEnvFillsUnsetFlags(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CONFIG_PATH", "/etc/exam/config.yaml")

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("config", "CONFIG_PATH")

	opts := &rootOptions{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringVar(&opts.port, "port", "", "")
	fs.StringVar(&opts.configPath, "config", "config/config.yaml", "")
	fs.StringVar(&opts.logLevel, "log-level", "", "")
	if err := fs.Parse([]string{"--log-level", "warn"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	applyEnv(v, fs)

	if opts.port != "9191" {
		t.Fatalf("expected port from env, got %q", opts.port)
	}
	if opts.configPath != "/etc/exam/config.yaml" {
		t.Fatalf("expected config path from env, got %q", opts.configPath)
	}
	if opts.logLevel != "warn" {
		t.Fatalf("explicit flag must win over env, got %q", opts.logLevel)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := parseLevel(raw); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
