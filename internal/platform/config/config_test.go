package config

import "testing"

type spoolConfig struct {
	Dir      string `env:"CONFIG_TEST_SPOOL_DIR" envDefault:"data/spool"`
	MaxBatch int    `env:"CONFIG_TEST_MAX_BATCH" envDefault:"200"`
}

func TestParseEnvUsesDefaults(t *testing.T) {
	var cfg spoolConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Dir != "data/spool" {
		t.Errorf("expected default spool dir, got %q", cfg.Dir)
	}
	if cfg.MaxBatch != 200 {
		t.Errorf("expected default max batch, got %d", cfg.MaxBatch)
	}
}

func TestParseEnvReadsOverrides(t *testing.T) {
	t.Setenv("CONFIG_TEST_SPOOL_DIR", "/tmp/spool")
	t.Setenv("CONFIG_TEST_MAX_BATCH", "50")

	var cfg spoolConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Dir != "/tmp/spool" {
		t.Errorf("expected env spool dir, got %q", cfg.Dir)
	}
	if cfg.MaxBatch != 50 {
		t.Errorf("expected env max batch, got %d", cfg.MaxBatch)
	}
}

func TestParseEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv("CONFIG_TEST_MAX_BATCH", "not-a-number")

	var cfg spoolConfig
	if err := ParseEnv(&cfg); err == nil {
		t.Fatal("expected malformed int to fail parsing")
	}
}
