// Package storage defines the persistence boundary for baselines and
// resonance history.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
)

// ErrNotFound reports that a unit has no stored record. Callers distinguish
// this from a zero-valued aggregate: a unit with no history is absent, not
// neutral.
var ErrNotFound = errors.New("record not found")

// DefaultPeriod labels baselines accumulated over a rolling window.
const DefaultPeriod = "rolling"

// BaselineRecord is one unit's baseline row.
type BaselineRecord struct {
	UnitID    string
	Period    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SampleRecord is one persisted feature vector observation. Position is the
// per-unit arrival index, starting at 1.
type SampleRecord struct {
	ID        int64
	UnitID    string
	Position  int64
	Vector    domain.FeatureVector
	CreatedAt time.Time
}

// ResonanceRecord retains a unit's latest resonance score so the next cycle
// can compute a deterministic trend.
type ResonanceRecord struct {
	UnitID    string
	Score     float64
	UpdatedAt time.Time
}

// BaselineStore persists per-unit linguistic baselines.
type BaselineStore interface {
	// AppendSample adds one observation to the unit's baseline, creating
	// the baseline when absent. A zero observedAt means now.
	AppendSample(ctx context.Context, unitID string, vector domain.FeatureVector, observedAt time.Time) error
	// GetBaseline returns the unit's baseline row or ErrNotFound.
	GetBaseline(ctx context.Context, unitID string) (BaselineRecord, error)
	// ListSamples returns up to limit samples in arrival order (oldest
	// first). A limit at or below zero means all retained samples.
	ListSamples(ctx context.Context, unitID string, limit int) ([]SampleRecord, error)
	// Aggregate returns the field-wise mean over the retained samples and
	// the sample count, or ErrNotFound when the unit has no samples.
	Aggregate(ctx context.Context, unitID string) (domain.FeatureVector, int, error)
	// DeleteBaseline removes the unit's baseline and samples. Deleting an
	// absent unit is not an error.
	DeleteBaseline(ctx context.Context, unitID string) error
	// GetResonance returns the unit's retained resonance score or ErrNotFound.
	GetResonance(ctx context.Context, unitID string) (ResonanceRecord, error)
	// PutResonance upserts the unit's retained resonance score.
	PutResonance(ctx context.Context, record ResonanceRecord) error
	// DeleteResonance clears the unit's retained score. Absent is not an error.
	DeleteResonance(ctx context.Context, unitID string) error
}
