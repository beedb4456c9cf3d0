// Package drift compares current linguistic features against a unit's
// baseline and emits alerts for threshold violations.
package drift

import (
	"fmt"
	"math"
	"time"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
)

// Detection thresholds. SymbolAlignment and MetaphorDensity are judged on
// absolute deviation from the baseline; PronounRatio and
// EmotionalFragmentation are judged on the current value alone.
const (
	SymbolDeviationMedium   = 20.0
	SymbolDeviationHigh     = 30.0
	SymbolDeviationCritical = 40.0

	MetaphorDeviationMedium = 15.0
	MetaphorDeviationHigh   = 30.0

	PronounRatioMedium = 2.0
	PronounRatioHigh   = 3.0

	FragmentationHigh     = 60.0
	FragmentationCritical = 80.0
)

// Detector evaluates drift rules against a baseline aggregate.
type Detector struct {
	now func() time.Time
}

// Option adjusts detector behavior.
type Option func(*Detector)

// WithNow overrides the clock used to stamp alerts.
func WithNow(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDetector returns a detector with the default clock.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns one alert per violated dimension, in a fixed evaluation
// order. Callers only invoke it when a baseline aggregate exists; with no
// violations it returns nil.
func (d *Detector) Detect(current, baseline domain.FeatureVector, unitID string) []domain.DriftAlert {
	now := d.now().UTC()
	var alerts []domain.DriftAlert

	if dev := math.Abs(current.SymbolAlignment - baseline.SymbolAlignment); dev > SymbolDeviationMedium {
		severity := domain.SeverityMedium
		switch {
		case dev > SymbolDeviationCritical:
			severity = domain.SeverityCritical
		case dev > SymbolDeviationHigh:
			severity = domain.SeverityHigh
		}
		alerts = append(alerts, domain.DriftAlert{
			Type:      domain.AlertSymbolicDecay,
			Severity:  severity,
			Deviation: dev,
			UnitID:    unitID,
			Timestamp: now,
			Message:   fmt.Sprintf("symbol alignment deviates %.1f points from baseline", dev),
		})
	}

	if dev := math.Abs(current.MetaphorDensity - baseline.MetaphorDensity); dev > MetaphorDeviationMedium {
		severity := domain.SeverityMedium
		if dev > MetaphorDeviationHigh {
			severity = domain.SeverityHigh
		}
		alerts = append(alerts, domain.DriftAlert{
			Type:      domain.AlertSymbolicDecay,
			Severity:  severity,
			Deviation: dev,
			UnitID:    unitID,
			Timestamp: now,
			Message:   fmt.Sprintf("metaphor density deviates %.1f points from baseline", dev),
		})
	}

	if ratio := current.PronounRatio; ratio > PronounRatioMedium {
		severity := domain.SeverityMedium
		if ratio > PronounRatioHigh {
			severity = domain.SeverityHigh
		}
		alerts = append(alerts, domain.DriftAlert{
			Type:      domain.AlertPronounFragmentation,
			Severity:  severity,
			Deviation: ratio,
			UnitID:    unitID,
			Timestamp: now,
			Message:   fmt.Sprintf("individual-to-collective pronoun ratio at %.1f", ratio),
		})
	}

	if frag := current.EmotionalFragmentation; frag > FragmentationHigh {
		severity := domain.SeverityHigh
		if frag > FragmentationCritical {
			severity = domain.SeverityCritical
		}
		alerts = append(alerts, domain.DriftAlert{
			Type:      domain.AlertToneCollapse,
			Severity:  severity,
			Deviation: frag,
			UnitID:    unitID,
			Timestamp: now,
			Message:   fmt.Sprintf("emotional fragmentation at %.1f", frag),
		})
	}

	return alerts
}
