// Package baseline accumulates per-unit linguistic history and serves the
// rolling mean that drift detection compares against.
package baseline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
	"github.com/cadencelabs/driftwatch/internal/analysis/storage"
	apperrors "github.com/cadencelabs/driftwatch/internal/errors"
)

// ErrEmptyUnitID reports an append or reset without a unit.
var ErrEmptyUnitID = apperrors.New(apperrors.CodeBaselineEmptyUnitID, "unit id is required")

// Snapshot is the aggregate view of a unit's baseline.
type Snapshot struct {
	Vector  domain.FeatureVector
	Samples int
}

// Service mediates baseline reads and writes over a BaselineStore.
type Service struct {
	store storage.BaselineStore
}

// NewService returns a baseline service backed by store.
func NewService(store storage.BaselineStore) *Service {
	return &Service{store: store}
}

// Append records one observation for the unit.
func (s *Service) Append(ctx context.Context, unitID string, vector domain.FeatureVector, observedAt time.Time) error {
	if strings.TrimSpace(unitID) == "" {
		return ErrEmptyUnitID
	}
	if err := s.store.AppendSample(ctx, unitID, vector, observedAt); err != nil {
		return apperrors.Wrap(apperrors.CodeBaselineWriteFailed, "append baseline sample", err)
	}
	return nil
}

// Aggregate returns the unit's rolling mean and sample count. The boolean
// reports whether any history exists; a unit with no samples is absent, not
// neutral.
func (s *Service) Aggregate(ctx context.Context, unitID string) (Snapshot, bool, error) {
	vector, samples, err := s.store.Aggregate(ctx, unitID)
	if errors.Is(err, storage.ErrNotFound) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, apperrors.Wrap(apperrors.CodeBaselineReadFailed, "aggregate baseline", err)
	}
	return Snapshot{Vector: vector, Samples: samples}, true, nil
}

// Describe returns the unit's baseline row when one exists.
func (s *Service) Describe(ctx context.Context, unitID string) (storage.BaselineRecord, bool, error) {
	rec, err := s.store.GetBaseline(ctx, unitID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.BaselineRecord{}, false, nil
	}
	if err != nil {
		return storage.BaselineRecord{}, false, apperrors.Wrap(apperrors.CodeBaselineReadFailed, "get baseline", err)
	}
	return rec, true, nil
}

// History returns up to limit retained samples in arrival order.
func (s *Service) History(ctx context.Context, unitID string, limit int) ([]storage.SampleRecord, error) {
	samples, err := s.store.ListSamples(ctx, unitID, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeBaselineReadFailed, "list baseline samples", err)
	}
	return samples, nil
}

// Reset discards the unit's baseline, samples, and retained resonance score.
// Resetting an absent unit succeeds.
func (s *Service) Reset(ctx context.Context, unitID string) error {
	if strings.TrimSpace(unitID) == "" {
		return ErrEmptyUnitID
	}
	if err := s.store.DeleteBaseline(ctx, unitID); err != nil {
		return apperrors.Wrap(apperrors.CodeBaselineResetFailed, "delete baseline", err)
	}
	if err := s.store.DeleteResonance(ctx, unitID); err != nil {
		return apperrors.Wrap(apperrors.CodeBaselineResetFailed, "delete resonance", err)
	}
	return nil
}
