package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/cadencelabs/driftwatch/internal/errors"
)

type stubProvider struct {
	vectors map[string][]float64
	err     error
}

func (s *stubProvider) Embed(_ context.Context, text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{
			name: "identical",
			a:    []float64{1, 2, 3},
			b:    []float64{1, 2, 3},
			want: 1,
		},
		{
			name: "orthogonal",
			a:    []float64{1, 0},
			b:    []float64{0, 1},
			want: 0,
		},
		{
			name: "opposite",
			a:    []float64{1, 0},
			b:    []float64{-1, 0},
			want: -1,
		},
		{
			name: "dimension mismatch",
			a:    []float64{1, 2},
			b:    []float64{1, 2, 3},
			want: 0,
		},
		{
			name: "zero vector",
			a:    []float64{0, 0, 0},
			b:    []float64{1, 2, 3},
			want: 0,
		},
		{
			name: "empty vectors",
			a:    nil,
			b:    nil,
			want: 0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Cosine(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("cosine = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSimilarityParallelVectors(t *testing.T) {
	provider := &stubProvider{vectors: map[string][]float64{
		"a": {3, 4},
		"b": {6, 8},
	}}
	scorer := NewScorer(provider)

	got, err := scorer.Similarity(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if got != 1 {
		t.Errorf("similarity of parallel vectors = %v, want exactly 1", got)
	}
}

func TestSimilarityPropagatesProviderError(t *testing.T) {
	scorer := NewScorer(&stubProvider{err: errors.New(errors.CodeProviderUnavailable, "down")})

	if _, err := scorer.Similarity(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestMissionResonanceMapsSimilarity(t *testing.T) {
	provider := &stubProvider{vectors: map[string][]float64{
		"same":     {1, 0},
		"opposite": {-1, 0},
		"sideways": {0, 1},
	}}
	scorer := NewScorer(provider)
	ctx := context.Background()

	if got := scorer.MissionResonance(ctx, "same", "same"); got != 100 {
		t.Errorf("resonance of identical = %v, want 100", got)
	}
	if got := scorer.MissionResonance(ctx, "same", "opposite"); got != 0 {
		t.Errorf("resonance of opposite = %v, want 0", got)
	}
	if got := scorer.MissionResonance(ctx, "same", "sideways"); got != 50 {
		t.Errorf("resonance of orthogonal = %v, want 50", got)
	}
}

func TestMissionResonanceNeutralOnProviderFailure(t *testing.T) {
	scorer := NewScorer(&stubProvider{err: errors.New(errors.CodeProviderUnavailable, "down")})

	if got := scorer.MissionResonance(context.Background(), "text", "mission"); got != NeutralResonance {
		t.Errorf("resonance on failure = %v, want %v", got, NeutralResonance)
	}
}

func TestMissionResonanceNeutralWithoutProvider(t *testing.T) {
	scorer := NewScorer(nil)

	if got := scorer.MissionResonance(context.Background(), "text", "mission"); got != NeutralResonance {
		t.Errorf("resonance without provider = %v, want %v", got, NeutralResonance)
	}
}

func TestHashingIdenticalTextsEmbedIdentically(t *testing.T) {
	provider := NewHashing(0)
	ctx := context.Background()

	first, err := provider.Embed(ctx, "we carry the mission forward")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	second, err := provider.Embed(ctx, "we carry the mission forward")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if got := Cosine(first, second); math.Abs(got-1) > 1e-12 {
		t.Errorf("cosine of identical texts = %v, want 1", got)
	}
}

func TestHashingDistinctTextsDiffer(t *testing.T) {
	provider := NewHashing(0)
	ctx := context.Background()

	a, err := provider.Embed(ctx, "we carry the mission forward together")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, err := provider.Embed(ctx, "quarterly spreadsheet numbers look flat")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if got := Cosine(a, b); got > 0.9 {
		t.Errorf("cosine of unrelated texts = %v, want < 0.9", got)
	}
}

func TestHashingNormalizesVectors(t *testing.T) {
	provider := NewHashing(64)

	vector, err := provider.Embed(context.Background(), "one two three four")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vector) != 64 {
		t.Fatalf("vector length = %d, want 64", len(vector))
	}
	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("vector norm squared = %v, want 1", norm)
	}
}

func TestHashingEmptyTextEmbedsAsZero(t *testing.T) {
	provider := NewHashing(16)

	vector, err := provider.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	for i, v := range vector {
		if v != 0 {
			t.Fatalf("component %d = %v, want zero vector", i, v)
		}
	}
	if got := Cosine(vector, vector); got != 0 {
		t.Errorf("cosine of zero vectors = %v, want 0", got)
	}
}

func TestHashingScoresResonanceWithoutNetwork(t *testing.T) {
	scorer := NewScorer(NewHashing(0))

	got := scorer.MissionResonance(context.Background(), "ship the mission", "ship the mission")
	if math.Abs(got-100) > 1e-9 {
		t.Errorf("resonance of identical text and mission = %v, want 100", got)
	}
}
