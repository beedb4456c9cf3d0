// Package mcp wires configuration for the MCP stdio server.
package mcp

import (
	"context"
	"flag"
	"log"

	engineapp "github.com/cadencelabs/driftwatch/internal/analysis/engine"
	mcpserver "github.com/cadencelabs/driftwatch/internal/mcp"
	entrypoint "github.com/cadencelabs/driftwatch/internal/platform/cmd"
)

// Config holds MCP server configuration loaded from environment
// variables and flags.
type Config struct {
	DBPath         string `env:"DRIFTWATCH_MCP_DB_PATH"        envDefault:"data/driftwatch.db"`
	MaxSamples     int    `env:"DRIFTWATCH_ENGINE_MAX_SAMPLES" envDefault:"500"`
	OpenAIAPIKey   string `env:"DRIFTWATCH_OPENAI_API_KEY"`
	EmbeddingModel string `env:"DRIFTWATCH_EMBEDDING_MODEL"`
	SentimentModel string `env:"DRIFTWATCH_SENTIMENT_MODEL"`
	DefaultMission string `env:"DRIFTWATCH_DEFAULT_MISSION"`
	MissionsFile   string `env:"DRIFTWATCH_MISSIONS_FILE"`
}

// ParseConfig loads configuration from environment variables and
// command-line flags. Flags take precedence over environment variables.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the engine SQLite database")
	fs.IntVar(&cfg.MaxSamples, "max-samples", cfg.MaxSamples, "Baseline samples retained per unit")
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

// Run builds the analysis engine and serves the MCP tool surface on
// stdio until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(context.Context) error {
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
				log.Printf("close engine store: %v", closeErr)
			}
		}()

		server, err := mcpserver.New(eng)
		if err != nil {
			return err
		}
		return server.Run(ctx)
	})
}
