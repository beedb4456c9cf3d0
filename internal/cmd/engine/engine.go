// Package engine parses engine command flags and launches the analysis runtime.
package engine

import (
	"context"
	"flag"
	"time"

	engineapp "github.com/cadencelabs/driftwatch/internal/analysis/engine"
	entrypoint "github.com/cadencelabs/driftwatch/internal/platform/cmd"
)

// Config holds engine command configuration.
type Config struct {
	Port               int           `env:"DRIFTWATCH_ENGINE_PORT"                 envDefault:"8090"`
	DBPath             string        `env:"DRIFTWATCH_ENGINE_DB_PATH"              envDefault:"data/driftwatch.db"`
	SpoolDir           string        `env:"DRIFTWATCH_ENGINE_SPOOL_DIR"            envDefault:"data/spool"`
	PollInterval       time.Duration `env:"DRIFTWATCH_ENGINE_POLL_INTERVAL"        envDefault:"5m"`
	MaxSamples         int           `env:"DRIFTWATCH_ENGINE_MAX_SAMPLES"          envDefault:"500"`
	MaxConcurrentUnits int           `env:"DRIFTWATCH_ENGINE_MAX_CONCURRENT_UNITS" envDefault:"4"`
	OpenAIAPIKey       string        `env:"DRIFTWATCH_OPENAI_API_KEY"`
	EmbeddingModel     string        `env:"DRIFTWATCH_EMBEDDING_MODEL"`
	SentimentModel     string        `env:"DRIFTWATCH_SENTIMENT_MODEL"`
	DefaultMission     string        `env:"DRIFTWATCH_DEFAULT_MISSION"`
	MissionsFile       string        `env:"DRIFTWATCH_MISSIONS_FILE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "The engine health server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the engine SQLite database")
	fs.StringVar(&cfg.SpoolDir, "spool-dir", cfg.SpoolDir, "Directory polled for message batch files")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Interval between spool polling cycles")
	fs.IntVar(&cfg.MaxSamples, "max-samples", cfg.MaxSamples, "Baseline samples retained per unit")
	fs.IntVar(&cfg.MaxConcurrentUnits, "max-concurrent-units", cfg.MaxConcurrentUnits, "Parallel unit workers per batch")
	fs.StringVar(&cfg.OpenAIAPIKey, "openai-api-key", cfg.OpenAIAPIKey, "OpenAI API key; empty selects deterministic local providers")
	fs.StringVar(&cfg.EmbeddingModel, "embedding-model", cfg.EmbeddingModel, "OpenAI embedding model name")
	fs.StringVar(&cfg.SentimentModel, "sentiment-model", cfg.SentimentModel, "OpenAI sentiment model name")
	fs.StringVar(&cfg.DefaultMission, "default-mission", cfg.DefaultMission, "Mission statement for units without an explicit one")
	fs.StringVar(&cfg.MissionsFile, "missions-file", cfg.MissionsFile, "Path to a JSON file mapping unit IDs to mission statements")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the engine service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEngine, func(context.Context) error {
		return engineapp.Run(ctx, engineapp.RuntimeConfig{
			Port:               cfg.Port,
			DBPath:             cfg.DBPath,
			SpoolDir:           cfg.SpoolDir,
			PollInterval:       cfg.PollInterval,
			MaxSamples:         cfg.MaxSamples,
			MaxConcurrentUnits: cfg.MaxConcurrentUnits,
			OpenAIAPIKey:       cfg.OpenAIAPIKey,
			EmbeddingModel:     cfg.EmbeddingModel,
			SentimentModel:     cfg.SentimentModel,
			DefaultMission:     cfg.DefaultMission,
			MissionsFile:       cfg.MissionsFile,
		})
	})
}
