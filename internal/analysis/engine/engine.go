// Package engine composes the analysis pipeline behind a batch facade.
package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cadencelabs/driftwatch/internal/analysis/anonymize"
	"github.com/cadencelabs/driftwatch/internal/analysis/baseline"
	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
	"github.com/cadencelabs/driftwatch/internal/analysis/drift"
	"github.com/cadencelabs/driftwatch/internal/analysis/embedding"
	"github.com/cadencelabs/driftwatch/internal/analysis/feature"
	"github.com/cadencelabs/driftwatch/internal/analysis/resonance"
	"github.com/cadencelabs/driftwatch/internal/analysis/sentiment"
	"github.com/cadencelabs/driftwatch/internal/analysis/storage"
	apperrors "github.com/cadencelabs/driftwatch/internal/errors"
)

// DefaultMaxConcurrentUnits bounds parallel unit workers per batch.
const DefaultMaxConcurrentUnits = 4

// Config wires the engine's capabilities. Store and Embeddings are required;
// everything else has a working default.
type Config struct {
	Store      storage.BaselineStore
	Embeddings embedding.Provider
	// Sentiment is optional; nil yields neutral verdicts.
	Sentiment  sentiment.Provider
	Anonymizer *anonymize.Anonymizer
	Extractor  *feature.Extractor
	// Missions maps unit IDs to mission statements. An explicit empty
	// statement disables resonance for that unit even when DefaultMission
	// is set.
	Missions           map[string]string
	DefaultMission     string
	MaxConcurrentUnits int
	Now                func() time.Time
}

// Engine processes message batches: anonymization, feature extraction,
// sentiment enrichment, drift detection against the baseline, baseline
// growth, and mission resonance scoring.
type Engine struct {
	store          storage.BaselineStore
	baselines      *baseline.Service
	detector       *drift.Detector
	resonance      *resonance.Scorer
	sentiment      sentiment.Provider
	anonymizer     *anonymize.Anonymizer
	extractor      *feature.Extractor
	missions       map[string]string
	defaultMission string
	workers        int
	now            func() time.Time
}

// New constructs an engine from explicit capabilities.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, apperrors.New(apperrors.CodeBaselineStoreClosed, "baseline store is required")
	}
	if cfg.Embeddings == nil {
		return nil, apperrors.New(apperrors.CodeProviderUnavailable, "embedding provider is required")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	anonymizer := cfg.Anonymizer
	if anonymizer == nil {
		anonymizer = anonymize.New()
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = feature.New()
	}
	workers := cfg.MaxConcurrentUnits
	if workers <= 0 {
		workers = DefaultMaxConcurrentUnits
	}
	missions := make(map[string]string, len(cfg.Missions))
	for unit, mission := range cfg.Missions {
		missions[strings.TrimSpace(unit)] = strings.TrimSpace(mission)
	}

	return &Engine{
		store:          cfg.Store,
		baselines:      baseline.NewService(cfg.Store),
		detector:       drift.NewDetector(drift.WithNow(now)),
		resonance:      resonance.NewScorer(embedding.NewScorer(cfg.Embeddings), cfg.Store, resonance.WithNow(now)),
		sentiment:      cfg.Sentiment,
		anonymizer:     anonymizer,
		extractor:      extractor,
		missions:       missions,
		defaultMission: strings.TrimSpace(cfg.DefaultMission),
		workers:        workers,
		now:            now,
	}, nil
}

// Mission returns the mission statement in force for a unit, empty when
// resonance is disabled for it.
func (e *Engine) Mission(unitID string) string {
	if mission, ok := e.missions[unitID]; ok {
		return mission
	}
	return e.defaultMission
}

type unitOutcome struct {
	unitID    string
	processed int
	alerts    []domain.DriftAlert
	score     *domain.ResonanceScore
	err       error
}

// ProcessBatch analyzes one batch of messages. Messages with a blank unit or
// blank text are skipped and counted. Units run concurrently under a worker
// bound; exactly one worker owns a unit per batch, so within-unit append
// order is batch arrival order. A storage failure aborts only its unit.
func (e *Engine) ProcessBatch(ctx context.Context, messages []domain.Message) (domain.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.BatchResult{}, err
	}

	var result domain.BatchResult
	order := make([]string, 0, len(messages))
	grouped := make(map[string][]domain.Message, len(messages))
	for _, raw := range messages {
		msg := raw.Normalize()
		if err := msg.Validate(); err != nil {
			result.Skipped++
			continue
		}
		msg.Text = e.anonymizer.Text(msg.Text)
		msg.UserID = e.anonymizer.UserID(msg.UserID)
		if _, ok := grouped[msg.UnitID]; !ok {
			order = append(order, msg.UnitID)
		}
		grouped[msg.UnitID] = append(grouped[msg.UnitID], msg)
	}
	if len(order) == 0 {
		return result, nil
	}

	outcomes := make([]unitOutcome, len(order))
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, unitID := range order {
		wg.Add(1)
		go func(i int, unitID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = e.processUnit(ctx, unitID, grouped[unitID])
		}(i, unitID)
	}
	wg.Wait()

	for _, outcome := range outcomes {
		if outcome.err != nil {
			result.Failures = append(result.Failures, domain.UnitFailure{UnitID: outcome.unitID, Err: outcome.err})
			continue
		}
		result.Processed += outcome.processed
		result.Alerts = append(result.Alerts, outcome.alerts...)
		if outcome.score != nil {
			result.Scores = append(result.Scores, *outcome.score)
		}
	}
	return result, nil
}

func (e *Engine) processUnit(ctx context.Context, unitID string, msgs []domain.Message) unitOutcome {
	outcome := unitOutcome{unitID: unitID}

	texts := make([]string, 0, len(msgs))
	vectors := make([]domain.FeatureVector, 0, len(msgs))
	for _, msg := range msgs {
		vector := e.extractor.Extract(msg.Text)
		vectors = append(vectors, vector.WithSentiment(e.classify(ctx, msg.Text)))
		texts = append(texts, msg.Text)
	}
	current := domain.MeanVector(vectors)

	snapshot, found, err := e.baselines.Aggregate(ctx, unitID)
	if err != nil {
		outcome.err = err
		return outcome
	}
	// First cycle has nothing to compare against; it only seeds the baseline.
	if found {
		outcome.alerts = e.detector.Detect(current, snapshot.Vector, unitID)
	}

	for i, vector := range vectors {
		observedAt := msgs[i].Timestamp
		if observedAt.IsZero() {
			observedAt = e.now().UTC()
		}
		if err := e.baselines.Append(ctx, unitID, vector, observedAt); err != nil {
			outcome.err = err
			return outcome
		}
	}

	if mission := e.Mission(unitID); mission != "" {
		score, missionAlerts, err := e.resonance.Score(ctx, unitID, texts, mission)
		if err != nil {
			outcome.err = err
			return outcome
		}
		outcome.score = &score
		outcome.alerts = append(outcome.alerts, missionAlerts...)
	}

	outcome.processed = len(msgs)
	return outcome
}

func (e *Engine) classify(ctx context.Context, text string) domain.Sentiment {
	if e.sentiment == nil {
		return domain.NeutralSentiment()
	}
	verdict, err := e.sentiment.Classify(ctx, text)
	if err != nil {
		return domain.NeutralSentiment()
	}
	return verdict
}

// UnitStatus is the stored state of one unit.
type UnitStatus struct {
	UnitID       string
	HasBaseline  bool
	Samples      int
	Aggregate    domain.FeatureVector
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Mission      string
	LastScore    *float64
	LastScoredAt time.Time
}

// UnitStatus reports a unit's baseline and resonance state without processing
// any messages.
func (e *Engine) UnitStatus(ctx context.Context, unitID string) (UnitStatus, error) {
	unitID = strings.TrimSpace(unitID)
	if unitID == "" {
		return UnitStatus{}, apperrors.New(apperrors.CodeBaselineEmptyUnitID, "unit id is required")
	}

	status := UnitStatus{UnitID: unitID, Mission: e.Mission(unitID)}

	rec, found, err := e.baselines.Describe(ctx, unitID)
	if err != nil {
		return UnitStatus{}, err
	}
	if found {
		status.HasBaseline = true
		status.CreatedAt = rec.CreatedAt
		status.UpdatedAt = rec.UpdatedAt
	}

	snapshot, found, err := e.baselines.Aggregate(ctx, unitID)
	if err != nil {
		return UnitStatus{}, err
	}
	if found {
		status.Samples = snapshot.Samples
		status.Aggregate = snapshot.Vector
	}

	resonanceRec, err := e.store.GetResonance(ctx, unitID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return UnitStatus{}, apperrors.Wrap(apperrors.CodeBaselineReadFailed, "get retained resonance", err)
	default:
		score := resonanceRec.Score
		status.LastScore = &score
		status.LastScoredAt = resonanceRec.UpdatedAt
	}
	return status, nil
}

// ResetBaseline discards a unit's accumulated history and retained resonance
// score.
func (e *Engine) ResetBaseline(ctx context.Context, unitID string) error {
	return e.baselines.Reset(ctx, unitID)
}
