package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
	"github.com/cadencelabs/driftwatch/internal/analysis/engine"
	"github.com/cadencelabs/driftwatch/internal/analysis/source"
	"github.com/cadencelabs/driftwatch/internal/platform/id"
)

// AnalyzeBatchInput represents the MCP tool input for analyzing a batch.
type AnalyzeBatchInput struct {
	Path     string         `json:"path,omitempty" jsonschema:"path to a JSONL batch file on the engine host"`
	Messages []BatchMessage `json:"messages,omitempty" jsonschema:"inline messages analyzed when no path is given"`
}

// BatchMessage is one inline message in an analyze_batch call.
type BatchMessage struct {
	ID        string `json:"id,omitempty" jsonschema:"message identifier"`
	UnitID    string `json:"unit_id" jsonschema:"unit the message belongs to"`
	Text      string `json:"text" jsonschema:"message text"`
	Timestamp string `json:"timestamp,omitempty" jsonschema:"RFC3339 observation time, defaults to now"`
	UserID    string `json:"user_id,omitempty" jsonschema:"author identifier, anonymized before analysis"`
}

// AnalyzeBatchResult represents the MCP tool output for one analyzed batch.
type AnalyzeBatchResult struct {
	Source    string           `json:"source,omitempty" jsonschema:"batch file name when a path was analyzed"`
	Processed int              `json:"processed" jsonschema:"messages analyzed"`
	Skipped   int              `json:"skipped" jsonschema:"messages rejected by validation"`
	Malformed int              `json:"malformed" jsonschema:"lines or timestamps that did not decode"`
	Scores    []ResonanceEntry `json:"scores" jsonschema:"per-unit mission resonance"`
	Alerts    []AlertEntry     `json:"alerts" jsonschema:"drift alerts raised by this batch"`
	Failures  []FailureEntry   `json:"failures,omitempty" jsonschema:"units whose persistence failed"`
}

// ResonanceEntry is one unit's mission resonance score.
type ResonanceEntry struct {
	UnitID             string  `json:"unit_id"`
	Score              float64 `json:"score"`
	Status             string  `json:"status"`
	Trend              string  `json:"trend"`
	DeviationFromIdeal float64 `json:"deviation_from_ideal"`
}

// AlertEntry is one drift alert.
type AlertEntry struct {
	ID        string  `json:"id"`
	UnitID    string  `json:"unit_id"`
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	Deviation float64 `json:"deviation"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
}

// FailureEntry is one unit whose batch could not be persisted.
type FailureEntry struct {
	UnitID string `json:"unit_id"`
	Error  string `json:"error"`
}

// AnalyzeBatchTool defines the MCP tool schema for analyzing a message batch.
func AnalyzeBatchTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "analyze_batch",
		Description: "Analyzes a batch of unit messages: updates baselines, detects linguistic drift, and scores mission resonance.",
	}
}

// AnalyzeBatchHandler executes a batch analysis through the engine.
func AnalyzeBatchHandler(eng *engine.Engine) mcp.ToolHandlerFor[AnalyzeBatchInput, AnalyzeBatchResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeBatchInput) (*mcp.CallToolResult, AnalyzeBatchResult, error) {
		batch, err := resolveBatch(input)
		if err != nil {
			return nil, AnalyzeBatchResult{}, err
		}

		result, err := eng.ProcessBatch(ctx, batch.Messages)
		if err != nil {
			return nil, AnalyzeBatchResult{}, fmt.Errorf("analyze batch failed: %w", err)
		}

		summary, err := newAnalyzeBatchResult(batch, result)
		if err != nil {
			return nil, AnalyzeBatchResult{}, err
		}
		return nil, summary, nil
	}
}

// resolveBatch loads the referenced batch file or decodes the inline
// messages. Inline timestamps that fail to parse count as malformed.
func resolveBatch(input AnalyzeBatchInput) (source.Batch, error) {
	if strings.TrimSpace(input.Path) != "" {
		return source.ReadFile(input.Path)
	}
	if len(input.Messages) == 0 {
		return source.Batch{}, fmt.Errorf("either path or messages is required")
	}

	var batch source.Batch
	for _, wire := range input.Messages {
		msg := domain.Message{
			ID:     wire.ID,
			UnitID: wire.UnitID,
			Text:   wire.Text,
			UserID: wire.UserID,
		}
		if strings.TrimSpace(wire.Timestamp) != "" {
			ts, err := time.Parse(time.RFC3339, wire.Timestamp)
			if err != nil {
				batch.Malformed++
				continue
			}
			msg.Timestamp = ts
		}
		batch.Messages = append(batch.Messages, msg.Normalize())
	}
	return batch, nil
}

// newAnalyzeBatchResult flattens a batch result into the tool output shape,
// minting an identifier per alert.
func newAnalyzeBatchResult(batch source.Batch, result domain.BatchResult) (AnalyzeBatchResult, error) {
	summary := AnalyzeBatchResult{
		Source:    batch.Source,
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Malformed: batch.Malformed,
		Scores:    make([]ResonanceEntry, 0, len(result.Scores)),
		Alerts:    make([]AlertEntry, 0, len(result.Alerts)),
	}
	for _, score := range result.Scores {
		summary.Scores = append(summary.Scores, ResonanceEntry{
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
			return AnalyzeBatchResult{}, fmt.Errorf("mint alert id: %w", err)
		}
		summary.Alerts = append(summary.Alerts, AlertEntry{
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
		summary.Failures = append(summary.Failures, FailureEntry{
			UnitID: failure.UnitID,
			Error:  failure.Err.Error(),
		})
	}
	return summary, nil
}

// UnitStatusInput represents the MCP tool input for inspecting a unit.
type UnitStatusInput struct {
	UnitID string `json:"unit_id" jsonschema:"unit identifier"`
}

// UnitStatusResult represents the MCP tool output for a unit's stored state.
type UnitStatusResult struct {
	UnitID       string          `json:"unit_id"`
	HasBaseline  bool            `json:"has_baseline"`
	Samples      int             `json:"samples"`
	Mission      string          `json:"mission,omitempty"`
	CreatedAt    string          `json:"created_at,omitempty" jsonschema:"RFC3339 timestamp of the first sample"`
	UpdatedAt    string          `json:"updated_at,omitempty" jsonschema:"RFC3339 timestamp of the latest sample"`
	Aggregate    *FeatureSummary `json:"aggregate,omitempty" jsonschema:"field-wise mean over the retained samples"`
	LastScore    *float64        `json:"last_score,omitempty" jsonschema:"most recent mission resonance score"`
	LastScoredAt string          `json:"last_scored_at,omitempty"`
}

// FeatureSummary is the aggregate feature view included in unit status.
type FeatureSummary struct {
	SymbolAlignment        float64 `json:"symbol_alignment"`
	MetaphorDensity        float64 `json:"metaphor_density"`
	NarrativeCoherence     float64 `json:"narrative_coherence"`
	ModalCompression       float64 `json:"modal_compression"`
	PronounIndividual      float64 `json:"pronoun_individual"`
	PronounCollective      float64 `json:"pronoun_collective"`
	PronounRatio           float64 `json:"pronoun_ratio"`
	EmotionalStability     float64 `json:"emotional_stability"`
	EmotionalFragmentation float64 `json:"emotional_fragmentation"`
	SentimentLabel         string  `json:"sentiment_label"`
	SentimentScore         float64 `json:"sentiment_score"`
}

// UnitStatusTool defines the MCP tool schema for unit status lookups.
func UnitStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "unit_status",
		Description: "Reports a unit's baseline sample count, aggregate linguistic features, mission, and last resonance score.",
	}
}

// UnitStatusHandler executes a unit status lookup.
func UnitStatusHandler(eng *engine.Engine) mcp.ToolHandlerFor[UnitStatusInput, UnitStatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UnitStatusInput) (*mcp.CallToolResult, UnitStatusResult, error) {
		status, err := eng.UnitStatus(ctx, input.UnitID)
		if err != nil {
			return nil, UnitStatusResult{}, fmt.Errorf("unit status failed: %w", err)
		}

		result := UnitStatusResult{
			UnitID:      status.UnitID,
			HasBaseline: status.HasBaseline,
			Samples:     status.Samples,
			Mission:     status.Mission,
			LastScore:   status.LastScore,
		}
		if status.HasBaseline {
			result.CreatedAt = status.CreatedAt.Format(time.RFC3339)
			result.UpdatedAt = status.UpdatedAt.Format(time.RFC3339)
			aggregate := newFeatureSummary(status.Aggregate)
			result.Aggregate = &aggregate
		}
		if status.LastScore != nil {
			result.LastScoredAt = status.LastScoredAt.Format(time.RFC3339)
		}
		return nil, result, nil
	}
}

func newFeatureSummary(vector domain.FeatureVector) FeatureSummary {
	return FeatureSummary{
		SymbolAlignment:        vector.SymbolAlignment,
		MetaphorDensity:        vector.MetaphorDensity,
		NarrativeCoherence:     vector.NarrativeCoherence,
		ModalCompression:       vector.ModalCompression,
		PronounIndividual:      vector.PronounIndividual,
		PronounCollective:      vector.PronounCollective,
		PronounRatio:           vector.PronounRatio,
		EmotionalStability:     vector.EmotionalStability,
		EmotionalFragmentation: vector.EmotionalFragmentation,
		SentimentLabel:         string(vector.SentimentLabel),
		SentimentScore:         vector.SentimentScore,
	}
}

// ResetBaselineInput represents the MCP tool input for resetting a unit.
type ResetBaselineInput struct {
	UnitID string `json:"unit_id" jsonschema:"unit identifier"`
}

// ResetBaselineResult represents the MCP tool output for a baseline reset.
type ResetBaselineResult struct {
	UnitID string `json:"unit_id"`
	Reset  bool   `json:"reset"`
}

// ResetBaselineTool defines the MCP tool schema for discarding a unit's history.
func ResetBaselineTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "reset_baseline",
		Description: "Discards a unit's accumulated baseline samples and retained resonance score. The next batch seeds a fresh baseline.",
	}
}

// ResetBaselineHandler executes a baseline reset.
func ResetBaselineHandler(eng *engine.Engine) mcp.ToolHandlerFor[ResetBaselineInput, ResetBaselineResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ResetBaselineInput) (*mcp.CallToolResult, ResetBaselineResult, error) {
		if err := eng.ResetBaseline(ctx, input.UnitID); err != nil {
			return nil, ResetBaselineResult{}, fmt.Errorf("reset baseline failed: %w", err)
		}
		return nil, ResetBaselineResult{UnitID: strings.TrimSpace(input.UnitID), Reset: true}, nil
	}
}
