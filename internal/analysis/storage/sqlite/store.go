// Package sqlite persists baselines and resonance history in a local SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
	"github.com/cadencelabs/driftwatch/internal/analysis/storage"
	"github.com/cadencelabs/driftwatch/internal/analysis/storage/sqlite/migrations"
	"github.com/cadencelabs/driftwatch/internal/platform/storage/sqlitemigrate"
	"github.com/cadencelabs/driftwatch/internal/platform/timeouts"
)

// DefaultMaxSamples caps the retained samples per unit. Older samples are
// pruned as new ones arrive.
const DefaultMaxSamples = 500

// Store persists baselines in SQLite.
type Store struct {
	db         *sql.DB
	maxSamples int
}

var _ storage.BaselineStore = (*Store)(nil)

// Option adjusts store behavior.
type Option func(*Store)

// WithMaxSamples overrides the per-unit sample cap. Values at or below zero
// keep the default.
func WithMaxSamples(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxSamples = n
		}
	}
}

// Open opens (creating if needed) the SQLite database at path and applies
// pending migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(db, migrations.FS, ""); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	s := &Store{db: db, maxSamples: DefaultMaxSamples}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// opContext bounds one storage operation with the shared deadline.
func opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeouts.StorageOp)
}

// AppendSample adds one observation inside a single transaction, creating the
// baseline row when absent and pruning past the sample cap.
func (s *Store) AppendSample(ctx context.Context, unitID string, vector domain.FeatureVector, observedAt time.Time) error {
	unitID = strings.TrimSpace(unitID)
	if unitID == "" {
		return fmt.Errorf("unit id is required")
	}
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}
	now := observedAt.UTC().UnixMilli()

	ctx, cancel := opContext(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO baselines (unit_id, period, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (unit_id) DO UPDATE SET updated_at = excluded.updated_at
	`, unitID, storage.DefaultPeriod, now, now)
	if err != nil {
		return fmt.Errorf("upsert baseline: %w", err)
	}

	var next int64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), 0) + 1 FROM baseline_samples WHERE unit_id = ?
	`, unitID).Scan(&next)
	if err != nil {
		return fmt.Errorf("next sample position: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO baseline_samples (
			unit_id, position,
			symbol_alignment, metaphor_density, narrative_coherence,
			modal_compression, pronoun_individual, pronoun_collective,
			pronoun_ratio, emotional_stability, emotional_fragmentation,
			sentiment_label, sentiment_score, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, unitID, next,
		vector.SymbolAlignment, vector.MetaphorDensity, vector.NarrativeCoherence,
		vector.ModalCompression, vector.PronounIndividual, vector.PronounCollective,
		vector.PronounRatio, vector.EmotionalStability, vector.EmotionalFragmentation,
		string(vector.SentimentLabel), vector.SentimentScore, now)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}

	if s.maxSamples > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM baseline_samples WHERE unit_id = ? AND position <= ?
		`, unitID, next-int64(s.maxSamples))
		if err != nil {
			return fmt.Errorf("prune samples: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// GetBaseline returns the unit's baseline row.
func (s *Store) GetBaseline(ctx context.Context, unitID string) (storage.BaselineRecord, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var (
		rec              storage.BaselineRecord
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT unit_id, period, created_at, updated_at FROM baselines WHERE unit_id = ?
	`, unitID).Scan(&rec.UnitID, &rec.Period, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.BaselineRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.BaselineRecord{}, fmt.Errorf("get baseline: %w", err)
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return rec, nil
}

// ListSamples returns the unit's retained samples in arrival order.
func (s *Store) ListSamples(ctx context.Context, unitID string, limit int) ([]storage.SampleRecord, error) {
	query := `
		SELECT id, unit_id, position,
			symbol_alignment, metaphor_density, narrative_coherence,
			modal_compression, pronoun_individual, pronoun_collective,
			pronoun_ratio, emotional_stability, emotional_fragmentation,
			sentiment_label, sentiment_score, created_at
		FROM baseline_samples
		WHERE unit_id = ?
		ORDER BY position ASC`
	args := []any{unitID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	var samples []storage.SampleRecord
	for rows.Next() {
		var (
			rec     storage.SampleRecord
			label   string
			created int64
		)
		err := rows.Scan(&rec.ID, &rec.UnitID, &rec.Position,
			&rec.Vector.SymbolAlignment, &rec.Vector.MetaphorDensity, &rec.Vector.NarrativeCoherence,
			&rec.Vector.ModalCompression, &rec.Vector.PronounIndividual, &rec.Vector.PronounCollective,
			&rec.Vector.PronounRatio, &rec.Vector.EmotionalStability, &rec.Vector.EmotionalFragmentation,
			&label, &rec.Vector.SentimentScore, &created)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		rec.Vector.SentimentLabel = domain.NormalizeSentimentLabel(label)
		rec.CreatedAt = time.UnixMilli(created).UTC()
		samples = append(samples, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// Aggregate computes the field-wise mean over the retained samples in SQL.
func (s *Store) Aggregate(ctx context.Context, unitID string) (domain.FeatureVector, int, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var (
		count int
		v     domain.FeatureVector
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(symbol_alignment), 0), COALESCE(AVG(metaphor_density), 0),
			COALESCE(AVG(narrative_coherence), 0), COALESCE(AVG(modal_compression), 0),
			COALESCE(AVG(pronoun_individual), 0), COALESCE(AVG(pronoun_collective), 0),
			COALESCE(AVG(pronoun_ratio), 0), COALESCE(AVG(emotional_stability), 0),
			COALESCE(AVG(emotional_fragmentation), 0), COALESCE(AVG(sentiment_score), 0)
		FROM baseline_samples WHERE unit_id = ?
	`, unitID).Scan(&count,
		&v.SymbolAlignment, &v.MetaphorDensity,
		&v.NarrativeCoherence, &v.ModalCompression,
		&v.PronounIndividual, &v.PronounCollective,
		&v.PronounRatio, &v.EmotionalStability,
		&v.EmotionalFragmentation, &v.SentimentScore)
	if err != nil {
		return domain.FeatureVector{}, 0, fmt.Errorf("aggregate samples: %w", err)
	}
	if count == 0 {
		return domain.FeatureVector{}, 0, storage.ErrNotFound
	}
	v.SentimentLabel = domain.SentimentNeutral
	return v, count, nil
}

// DeleteBaseline removes the unit's baseline and samples in one transaction.
func (s *Store) DeleteBaseline(ctx context.Context, unitID string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM baseline_samples WHERE unit_id = ?`, unitID); err != nil {
		return fmt.Errorf("delete samples: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM baselines WHERE unit_id = ?`, unitID); err != nil {
		return fmt.Errorf("delete baseline: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// GetResonance returns the unit's retained resonance score.
func (s *Store) GetResonance(ctx context.Context, unitID string) (storage.ResonanceRecord, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var (
		rec     storage.ResonanceRecord
		updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT unit_id, score, updated_at FROM unit_resonance WHERE unit_id = ?
	`, unitID).Scan(&rec.UnitID, &rec.Score, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ResonanceRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.ResonanceRecord{}, fmt.Errorf("get resonance: %w", err)
	}
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return rec, nil
}

// PutResonance upserts the unit's retained resonance score.
func (s *Store) PutResonance(ctx context.Context, record storage.ResonanceRecord) error {
	unitID := strings.TrimSpace(record.UnitID)
	if unitID == "" {
		return fmt.Errorf("unit id is required")
	}
	updated := record.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO unit_resonance (unit_id, score, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (unit_id) DO UPDATE SET score = excluded.score, updated_at = excluded.updated_at
	`, unitID, record.Score, updated.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put resonance: %w", err)
	}
	return nil
}

// DeleteResonance clears the unit's retained score.
func (s *Store) DeleteResonance(ctx context.Context, unitID string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM unit_resonance WHERE unit_id = ?`, unitID); err != nil {
		return fmt.Errorf("delete resonance: %w", err)
	}
	return nil
}
