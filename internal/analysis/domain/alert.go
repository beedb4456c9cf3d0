package domain

import "time"

// AlertType names the kind of drift a detector observed.
type AlertType string

// Drift alert types.
const (
	AlertSymbolicDecay        AlertType = "symbolic_decay"
	AlertPronounFragmentation AlertType = "pronoun_fragmentation"
	AlertToneCollapse         AlertType = "tone_collapse"
	AlertMissionDrift         AlertType = "mission_drift"
)

// Severity grades how far a measurement sits beyond its threshold.
type Severity string

// Alert severities from least to most urgent.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// DriftAlert reports one threshold violation for one unit. Alerts are value
// objects; the engine emits them but does not persist them.
type DriftAlert struct {
	Type      AlertType
	Severity  Severity
	Deviation float64
	UnitID    string
	Timestamp time.Time
	Message   string
}
