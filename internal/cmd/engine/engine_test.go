package engine

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("engine", flag.ContinueOnError)
	t.Setenv("DRIFTWATCH_ENGINE_PORT", "9099")
	t.Setenv("DRIFTWATCH_ENGINE_SPOOL_DIR", "/var/spool/driftwatch")

	cfg, err := ParseConfig(fs, []string{"-poll-interval", "30s", "-default-mission", "keep releases dependable"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9099 {
		t.Fatalf("port = %d, want 9099", cfg.Port)
	}
	if cfg.SpoolDir != "/var/spool/driftwatch" {
		t.Fatalf("spool dir = %q, want %q", cfg.SpoolDir, "/var/spool/driftwatch")
	}
	if cfg.PollInterval != 30*time.Second {
		t.Fatalf("poll interval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.DefaultMission != "keep releases dependable" {
		t.Fatalf("default mission = %q, want %q", cfg.DefaultMission, "keep releases dependable")
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("engine", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8090 {
		t.Fatalf("port = %d, want 8090", cfg.Port)
	}
	if cfg.DBPath != "data/driftwatch.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "data/driftwatch.db")
	}
	if cfg.SpoolDir != "data/spool" {
		t.Fatalf("spool dir = %q, want %q", cfg.SpoolDir, "data/spool")
	}
	if cfg.PollInterval != 5*time.Minute {
		t.Fatalf("poll interval = %v, want 5m", cfg.PollInterval)
	}
	if cfg.MaxSamples != 500 {
		t.Fatalf("max samples = %d, want 500", cfg.MaxSamples)
	}
	if cfg.MaxConcurrentUnits != 4 {
		t.Fatalf("max concurrent units = %d, want 4", cfg.MaxConcurrentUnits)
	}
	if cfg.OpenAIAPIKey != "" {
		t.Fatalf("openai api key = %q, want empty", cfg.OpenAIAPIKey)
	}
}
