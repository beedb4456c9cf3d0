// Package analyze parses analyze command flags and runs a one-shot batch report.
package analyze

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
	engineapp "github.com/cadencelabs/driftwatch/internal/analysis/engine"
	"github.com/cadencelabs/driftwatch/internal/analysis/source"
	entrypoint "github.com/cadencelabs/driftwatch/internal/platform/cmd"
	"github.com/cadencelabs/driftwatch/internal/platform/discovery"
	platformgrpc "github.com/cadencelabs/driftwatch/internal/platform/grpc"
	"github.com/cadencelabs/driftwatch/internal/platform/id"
	"github.com/cadencelabs/driftwatch/internal/platform/timeouts"
)

// Config holds analyze command configuration.
type Config struct {
	File           string `env:"DRIFTWATCH_ANALYZE_FILE"`
	DBPath         string `env:"DRIFTWATCH_ANALYZE_DB_PATH"   envDefault:"data/driftwatch.db"`
	EngineAddr     string `env:"DRIFTWATCH_ENGINE_ADDR"`
	MaxSamples     int    `env:"DRIFTWATCH_ENGINE_MAX_SAMPLES" envDefault:"500"`
	OpenAIAPIKey   string `env:"DRIFTWATCH_OPENAI_API_KEY"`
	EmbeddingModel string `env:"DRIFTWATCH_EMBEDDING_MODEL"`
	SentimentModel string `env:"DRIFTWATCH_SENTIMENT_MODEL"`
	DefaultMission string `env:"DRIFTWATCH_DEFAULT_MISSION"`
	MissionsFile   string `env:"DRIFTWATCH_MISSIONS_FILE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.File, "file", cfg.File, "Path to the JSONL batch file to analyze")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the engine SQLite database")
	fs.StringVar(&cfg.EngineAddr, "engine-addr", cfg.EngineAddr, "Engine address probed before touching its database")
	fs.IntVar(&cfg.MaxSamples, "max-samples", cfg.MaxSamples, "Baseline samples retained per unit")
	fs.StringVar(&cfg.OpenAIAPIKey, "openai-api-key", cfg.OpenAIAPIKey, "OpenAI API key; empty selects deterministic local providers")
	fs.StringVar(&cfg.EmbeddingModel, "embedding-model", cfg.EmbeddingModel, "OpenAI embedding model name")
	fs.StringVar(&cfg.SentimentModel, "sentiment-model", cfg.SentimentModel, "OpenAI sentiment model name")
	fs.StringVar(&cfg.DefaultMission, "default-mission", cfg.DefaultMission, "Mission statement for units without an explicit one")
	fs.StringVar(&cfg.MissionsFile, "missions-file", cfg.MissionsFile, "Path to a JSON file mapping unit IDs to mission statements")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.EngineAddr = discovery.OrDefaultGRPCAddr(cfg.EngineAddr, discovery.ServiceEngine)
	return cfg, nil
}

// Run analyzes one batch file against the configured database and prints a
// JSON report to stdout.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAnalyze, func(context.Context) error {
		return run(ctx, cfg, os.Stdout)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	if strings.TrimSpace(cfg.File) == "" {
		return fmt.Errorf("batch file is required (use -file)")
	}
	if err := refuseLiveEngine(ctx, cfg.EngineAddr); err != nil {
		return err
	}

	eng, store, err := engineapp.BuildEngine(engineapp.RuntimeConfig{
		DBPath:         cfg.DBPath,
		MaxSamples:     cfg.MaxSamples,
		OpenAIAPIKey:   cfg.OpenAIAPIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		SentimentModel: cfg.SentimentModel,
		DefaultMission: cfg.DefaultMission,
		MissionsFile:   cfg.MissionsFile,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close sqlite store: %v", closeErr)
		}
	}()

	batch, err := source.ReadFile(cfg.File)
	if err != nil {
		return err
	}
	result, err := eng.ProcessBatch(ctx, batch.Messages)
	if err != nil {
		return err
	}

	rep, err := newReport(batch, result)
	if err != nil {
		return err
	}
	return writeReport(out, rep)
}

// refuseLiveEngine aborts when a running engine answers the health probe at
// addr. The engine holds the SQLite writer while it runs.
func refuseLiveEngine(ctx context.Context, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeouts.HealthProbe)
	defer cancel()
	conn, err := platformgrpc.ConnectWithHealth(probeCtx, addr, nil)
	if err != nil {
		log.Printf("engine at %s is not serving, analyzing offline", addr)
		return nil
	}
	_ = conn.Close()
	return fmt.Errorf("engine at %s is serving; stop it before analyzing its database", addr)
}

// report is the JSON document printed for one analyzed batch.
type report struct {
	Source    string          `json:"source"`
	Processed int             `json:"processed"`
	Skipped   int             `json:"skipped"`
	Malformed int             `json:"malformed"`
	Scores    []scoreReport   `json:"scores"`
	Alerts    []alertReport   `json:"alerts"`
	Failures  []failureReport `json:"failures,omitempty"`
}

type scoreReport struct {
	UnitID             string  `json:"unit_id"`
	Score              float64 `json:"score"`
	Status             string  `json:"status"`
	Trend              string  `json:"trend"`
	DeviationFromIdeal float64 `json:"deviation_from_ideal"`
}

type alertReport struct {
	ID        string  `json:"id"`
	UnitID    string  `json:"unit_id"`
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	Deviation float64 `json:"deviation"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
}

type failureReport struct {
	UnitID string `json:"unit_id"`
	Error  string `json:"error"`
}

// newReport flattens a batch result into its printable form, minting an
// identifier per alert.
func newReport(batch source.Batch, result domain.BatchResult) (report, error) {
	rep := report{
		Source:    batch.Source,
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Malformed: batch.Malformed,
		Scores:    make([]scoreReport, 0, len(result.Scores)),
		Alerts:    make([]alertReport, 0, len(result.Alerts)),
	}
	for _, score := range result.Scores {
		rep.Scores = append(rep.Scores, scoreReport{
			UnitID:             score.UnitID,
			Score:              score.Score,
			Status:             string(score.Status),
			Trend:              string(score.Trend),
			DeviationFromIdeal: score.DeviationFromIdeal,
		})
	}
	for _, alert := range result.Alerts {
		alertID, err := id.NewID()
		if err != nil {
			return report{}, fmt.Errorf("mint alert id: %w", err)
		}
		rep.Alerts = append(rep.Alerts, alertReport{
			ID:        alertID,
			UnitID:    alert.UnitID,
			Type:      string(alert.Type),
			Severity:  string(alert.Severity),
			Deviation: alert.Deviation,
			Message:   alert.Message,
			Timestamp: alert.Timestamp.Format(time.RFC3339),
		})
	}
	for _, failure := range result.Failures {
		rep.Failures = append(rep.Failures, failureReport{UnitID: failure.UnitID, Error: failure.Err.Error()})
	}
	return rep, nil
}

func writeReport(out io.Writer, rep report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
