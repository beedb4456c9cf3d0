package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
	"github.com/cadencelabs/driftwatch/internal/analysis/embedding"
	"github.com/cadencelabs/driftwatch/internal/analysis/sentiment"
	"github.com/cadencelabs/driftwatch/internal/analysis/source"
	"github.com/cadencelabs/driftwatch/internal/analysis/storage/sqlite"
)

// RuntimeConfig controls engine startup, dependencies, and loop behavior.
type RuntimeConfig struct {
	Port               int
	DBPath             string
	SpoolDir           string
	PollInterval       time.Duration
	MaxSamples         int
	MaxConcurrentUnits int
	OpenAIAPIKey       string
	EmbeddingModel     string
	SentimentModel     string
	DefaultMission     string
	MissionsFile       string
}

const (
	defaultEnginePort   = 8090
	defaultEngineDB     = "data/driftwatch.db"
	defaultSpoolDir     = "data/spool"
	defaultPollInterval = 5 * time.Minute
)

// Run starts the engine runtime: the SQLite store, the providers, a gRPC
// health listener, and the spool polling loop. It blocks until ctx is
// canceled.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultEnginePort
	}
	if strings.TrimSpace(cfg.SpoolDir) == "" {
		cfg.SpoolDir = defaultSpoolDir
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	if err := os.MkdirAll(cfg.SpoolDir, 0o755); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}

	eng, store, err := BuildEngine(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close engine sqlite store: %v", closeErr)
		}
	}()

	spool, err := source.NewSpool(cfg.SpoolDir)
	if err != nil {
		return fmt.Errorf("open spool: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on engine port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("driftwatch.engine", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("engine server listening at %v", listener.Addr())

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		if err := runCycle(ctx, eng, spool); err != nil && ctx.Err() == nil {
			log.Printf("cycle failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// BuildEngine opens the SQLite store at cfg.DBPath and assembles an Engine
// around it with providers selected from cfg. The caller owns the returned
// store and closes it when done with the engine.
func BuildEngine(cfg RuntimeConfig) (*Engine, *sqlite.Store, error) {
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultEngineDB
	}
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create engine storage dir: %w", err)
		}
	}

	var storeOpts []sqlite.Option
	if cfg.MaxSamples > 0 {
		storeOpts = append(storeOpts, sqlite.WithMaxSamples(cfg.MaxSamples))
	}
	store, err := sqlite.Open(cfg.DBPath, storeOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("open engine sqlite store: %w", err)
	}

	missions, err := loadMissions(cfg.MissionsFile)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	embedder, classifier := buildProviders(cfg)
	eng, err := New(Config{
		Store:              store,
		Embeddings:         embedder,
		Sentiment:          classifier,
		Missions:           missions,
		DefaultMission:     cfg.DefaultMission,
		MaxConcurrentUnits: cfg.MaxConcurrentUnits,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}
	return eng, store, nil
}

// buildProviders picks real providers when an API key is configured and
// deterministic local fallbacks otherwise.
func buildProviders(cfg RuntimeConfig) (embedding.Provider, sentiment.Provider) {
	key := strings.TrimSpace(cfg.OpenAIAPIKey)
	if key == "" {
		return embedding.NewHashing(embedding.DefaultHashingDimensions), sentiment.NewLexicon()
	}
	client := openai.NewClient(option.WithAPIKey(key))
	return embedding.NewOpenAI(&client, cfg.EmbeddingModel), sentiment.NewOpenAI(&client, cfg.SentimentModel)
}

// loadMissions reads a JSON object mapping unit IDs to mission statements.
// An empty path means no per-unit missions.
func loadMissions(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read missions file: %w", err)
	}
	missions := make(map[string]string)
	if err := json.Unmarshal(data, &missions); err != nil {
		return nil, fmt.Errorf("parse missions file %s: %w", path, err)
	}
	return missions, nil
}

// runCycle drains the spool, one batch file at a time.
func runCycle(ctx context.Context, eng *Engine, spool *source.Spool) error {
	tracer := otel.Tracer("driftwatch/engine")
	for {
		batch, err := spool.Next(ctx)
		if err != nil {
			return err
		}
		if batch.Source == "" {
			return nil
		}
		if batch.Malformed > 0 {
			log.Printf("batch %s: skipped %d malformed lines", batch.Source, batch.Malformed)
		}

		batchCtx, span := tracer.Start(ctx, "engine/process_batch", trace.WithAttributes(
			attribute.String("batch.source", batch.Source),
			attribute.Int("batch.messages", len(batch.Messages)),
		))
		result, err := eng.ProcessBatch(batchCtx, batch.Messages)
		if err != nil {
			span.RecordError(err)
			span.End()
			return err
		}
		span.End()
		logBatchResult(batch.Source, result)
	}
}

func logBatchResult(sourceName string, result domain.BatchResult) {
	log.Printf("batch %s: processed=%d skipped=%d alerts=%d scores=%d failures=%d",
		sourceName, result.Processed, result.Skipped, len(result.Alerts), len(result.Scores), len(result.Failures))
	for _, alert := range result.Alerts {
		log.Printf("alert unit=%s type=%s severity=%s deviation=%.1f: %s",
			alert.UnitID, alert.Type, alert.Severity, alert.Deviation, alert.Message)
	}
	for _, score := range result.Scores {
		log.Printf("resonance unit=%s score=%.1f status=%s trend=%s",
			score.UnitID, score.Score, score.Status, score.Trend)
	}
	for _, failure := range result.Failures {
		log.Printf("unit %s failed: %v", failure.UnitID, failure.Err)
	}
}
