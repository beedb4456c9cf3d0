package cmd

import (
	"context"
	"flag"
	"testing"
)

type testConfig struct {
	SpoolDir string `env:"CMD_TEST_SPOOL_DIR" envDefault:"data/spool"`
	Mission  string `env:"CMD_TEST_MISSION" envDefault:"default mission"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_SPOOL_DIR", "env:/var/spool")
	t.Setenv("CMD_TEST_MISSION", "env-mission")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfgRef.SpoolDir, "spool-dir", cfgRef.SpoolDir, "spool dir")
	fs.StringVar(&cfgRef.Mission, "mission", cfgRef.Mission, "mission")

	if err := ParseArgs(fs, []string{"-spool-dir", "flag:/srv/spool"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfgRef.SpoolDir != "flag:/srv/spool" {
		t.Fatalf("expected flag value for spool dir, got %q", cfgRef.SpoolDir)
	}
	if cfgRef.Mission != "env-mission" {
		t.Fatalf("expected env mission, got %q", cfgRef.Mission)
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(nil, "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(nil, ServiceEngine, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryRunsClosure(t *testing.T) {
	t.Setenv("DRIFTWATCH_OTEL_ENDPOINT", "")

	ran := false
	err := RunWithTelemetry(context.Background(), ServiceAnalyze, func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("RunWithTelemetry() error = %v", err)
	}
	if !ran {
		t.Fatal("expected run closure to execute")
	}
}
