package domain

import "time"

// ResonanceStatus classifies how well a unit's language tracks its mission.
type ResonanceStatus string

// Resonance statuses.
const (
	ResonanceAligned  ResonanceStatus = "aligned"
	ResonanceDrifting ResonanceStatus = "drifting"
	ResonanceCritical ResonanceStatus = "critical"
)

// Trend describes the direction of a unit's resonance between cycles.
type Trend string

// Trend directions.
const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// ResonanceScore is the per-cycle mission alignment result for one unit.
type ResonanceScore struct {
	UnitID             string
	Score              float64
	DeviationFromIdeal float64
	Trend              Trend
	Status             ResonanceStatus
}

// Baseline is a unit's accumulated linguistic history. Samples keep arrival
// order; the aggregate view is the field-wise mean over the retained window.
type Baseline struct {
	UnitID    string
	Period    string
	Samples   []FeatureVector
	CreatedAt time.Time
	UpdatedAt time.Time
}
