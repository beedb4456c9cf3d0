// Package resonance scores how closely a unit's language tracks its mission
// statement and grades the direction between cycles.
package resonance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
	"github.com/cadencelabs/driftwatch/internal/analysis/embedding"
	"github.com/cadencelabs/driftwatch/internal/analysis/storage"
	apperrors "github.com/cadencelabs/driftwatch/internal/errors"
)

// Sentinel inputs errors.
var (
	ErrEmptyUnitID = apperrors.New(apperrors.CodeResonanceEmptyUnitID, "unit id is required")
	ErrNoMission   = apperrors.New(apperrors.CodeResonanceNoMission, "mission statement is required")
)

// Scoring boundaries.
const (
	// AlignedFloor and DriftingFloor split scores into statuses.
	AlignedFloor  = 70.0
	DriftingFloor = 50.0
	// MissionDriftFloor is the score below which a mission_drift alert fires.
	MissionDriftFloor = 60.0
	// TrendDeadBand absorbs score jitter between cycles.
	TrendDeadBand = 2.0
)

// Scorer computes per-cycle mission resonance for a unit.
type Scorer struct {
	embeddings *embedding.Scorer
	store      storage.BaselineStore
	now        func() time.Time
}

// Option adjusts scorer behavior.
type Option func(*Scorer)

// WithNow overrides the clock used to stamp alerts and records.
func WithNow(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScorer returns a scorer over the given embedding scorer and store.
func NewScorer(embeddings *embedding.Scorer, store storage.BaselineStore, opts ...Option) *Scorer {
	s := &Scorer{embeddings: embeddings, store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score averages per-text mission resonance, grades the trend against the
// unit's previous cycle, and persists the new score for the next one. The
// error covers persistence failures only; embedding failures degrade each
// text to the neutral midpoint. With no texts the score is neutral.
func (s *Scorer) Score(ctx context.Context, unitID string, texts []string, mission string) (domain.ResonanceScore, []domain.DriftAlert, error) {
	if strings.TrimSpace(unitID) == "" {
		return domain.ResonanceScore{}, nil, ErrEmptyUnitID
	}
	if strings.TrimSpace(mission) == "" {
		return domain.ResonanceScore{}, nil, ErrNoMission
	}

	score := embedding.NeutralResonance
	if len(texts) > 0 {
		var sum float64
		for _, text := range texts {
			sum += s.embeddings.MissionResonance(ctx, text, mission)
		}
		score = sum / float64(len(texts))
	}

	// Missing history and read failures both fall back to a stable trend.
	trend := domain.TrendStable
	if previous, err := s.store.GetResonance(ctx, unitID); err == nil {
		switch {
		case score > previous.Score+TrendDeadBand:
			trend = domain.TrendUp
		case score < previous.Score-TrendDeadBand:
			trend = domain.TrendDown
		}
	}

	now := s.now().UTC()
	record := storage.ResonanceRecord{UnitID: unitID, Score: score, UpdatedAt: now}
	if err := s.store.PutResonance(ctx, record); err != nil {
		return domain.ResonanceScore{}, nil, apperrors.Wrap(apperrors.CodeBaselineWriteFailed, "persist resonance score", err)
	}

	result := domain.ResonanceScore{
		UnitID:             unitID,
		Score:              score,
		DeviationFromIdeal: 100 - score,
		Trend:              trend,
		Status:             statusFor(score),
	}

	var alerts []domain.DriftAlert
	if score < MissionDriftFloor {
		alerts = append(alerts, domain.DriftAlert{
			Type:      domain.AlertMissionDrift,
			Severity:  missionDriftSeverity(score),
			Deviation: 100 - score,
			UnitID:    unitID,
			Timestamp: now,
			Message:   fmt.Sprintf("mission resonance at %.1f", score),
		})
	}
	return result, alerts, nil
}

func statusFor(score float64) domain.ResonanceStatus {
	switch {
	case score >= AlignedFloor:
		return domain.ResonanceAligned
	case score >= DriftingFloor:
		return domain.ResonanceDrifting
	default:
		return domain.ResonanceCritical
	}
}

func missionDriftSeverity(score float64) domain.Severity {
	switch {
	case score < 30:
		return domain.SeverityCritical
	case score < 45:
		return domain.SeverityHigh
	case score < 55:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
