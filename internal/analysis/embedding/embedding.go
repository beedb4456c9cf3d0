// Package embedding scores semantic similarity between texts through
// pluggable vector providers.
package embedding

import (
	"context"
	"math"

	"github.com/cadencelabs/driftwatch/internal/errors"
)

// Provider produces a fixed-dimension vector for a text. Implementations
// must be safe for concurrent use.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// NeutralResonance is reported when a provider cannot score a text.
const NeutralResonance = 50.0

// Scorer computes similarity and mission resonance over a provider.
type Scorer struct {
	provider Provider
}

// NewScorer wraps a provider. A nil provider yields a scorer whose
// Similarity always errors and whose MissionResonance is always neutral.
func NewScorer(provider Provider) *Scorer {
	return &Scorer{provider: provider}
}

// Similarity returns the cosine similarity of the two texts in [-1, 1].
// Provider failures propagate to the caller.
func (s *Scorer) Similarity(ctx context.Context, a, b string) (float64, error) {
	if s == nil || s.provider == nil {
		return 0, errors.New(errors.CodeProviderUnavailable, "embedding provider is not configured")
	}
	vecA, err := s.provider.Embed(ctx, a)
	if err != nil {
		return 0, errors.Wrap(errors.CodeProviderUnavailable, "embed first text", err)
	}
	vecB, err := s.provider.Embed(ctx, b)
	if err != nil {
		return 0, errors.Wrap(errors.CodeProviderUnavailable, "embed second text", err)
	}
	return Cosine(vecA, vecB), nil
}

// MissionResonance maps the similarity between text and mission onto
// [0, 100]. Provider failures yield the neutral midpoint rather than an
// error.
func (s *Scorer) MissionResonance(ctx context.Context, text, mission string) float64 {
	similarity, err := s.Similarity(ctx, text, mission)
	if err != nil {
		return NeutralResonance
	}
	resonance := (similarity + 1) * 50
	if resonance < 0 {
		return 0
	}
	if resonance > 100 {
		return 100
	}
	return resonance
}

// Cosine returns the cosine similarity of two vectors clamped to [-1, 1].
// Mismatched dimensions and zero-norm vectors score 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity > 1 {
		return 1
	}
	if similarity < -1 {
		return -1
	}
	return similarity
}
