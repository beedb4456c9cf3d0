package domain

import "strings"

// SentimentLabel classifies the overall tone of a text.
type SentimentLabel string

// Sentiment labels recognized by the pipeline.
const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// NeutralSentimentScore is the midpoint score used when no provider verdict
// is available.
const NeutralSentimentScore = 0.5

// Sentiment is a provider verdict about one text.
type Sentiment struct {
	Label SentimentLabel
	Score float64
}

// NeutralSentiment returns the fallback verdict used when classification is
// unavailable.
func NeutralSentiment() Sentiment {
	return Sentiment{Label: SentimentNeutral, Score: NeutralSentimentScore}
}

// NormalizeSentimentLabel maps free-form provider output onto a known label,
// defaulting to neutral.
func NormalizeSentimentLabel(raw string) SentimentLabel {
	switch SentimentLabel(strings.ToLower(strings.TrimSpace(raw))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// FeatureVector holds the linguistic measurements for one text or an
// aggregate of texts. Percentage fields range over [0, 100]. PronounRatio is
// a count ratio and is unbounded above zero.
type FeatureVector struct {
	SymbolAlignment        float64
	MetaphorDensity        float64
	NarrativeCoherence     float64
	ModalCompression       float64
	PronounIndividual      float64
	PronounCollective      float64
	PronounRatio           float64
	EmotionalStability     float64
	EmotionalFragmentation float64
	SentimentLabel         SentimentLabel
	SentimentScore         float64
}

// NeutralFeatureValue is the midpoint reported for texts with no measurable
// content.
const NeutralFeatureValue = 50.0

// NeutralVector returns the vector reported for empty or unmeasurable text.
func NeutralVector() FeatureVector {
	return FeatureVector{
		SymbolAlignment:        NeutralFeatureValue,
		MetaphorDensity:        NeutralFeatureValue,
		NarrativeCoherence:     NeutralFeatureValue,
		ModalCompression:       NeutralFeatureValue,
		PronounIndividual:      NeutralFeatureValue,
		PronounCollective:      NeutralFeatureValue,
		PronounRatio:           0,
		EmotionalStability:     NeutralFeatureValue,
		EmotionalFragmentation: NeutralFeatureValue,
		SentimentLabel:         SentimentNeutral,
		SentimentScore:         NeutralSentimentScore,
	}
}

// WithSentiment returns a copy of the vector carrying the given verdict.
func (v FeatureVector) WithSentiment(s Sentiment) FeatureVector {
	v.SentimentLabel = s.Label
	v.SentimentScore = s.Score
	return v
}

// MeanVector averages the numeric fields of the given vectors field-wise.
// The sentiment label of the result is neutral; the sentiment score is the
// mean of the inputs. Averaging zero vectors returns the neutral vector.
func MeanVector(vectors []FeatureVector) FeatureVector {
	if len(vectors) == 0 {
		return NeutralVector()
	}
	var sum FeatureVector
	for _, v := range vectors {
		sum.SymbolAlignment += v.SymbolAlignment
		sum.MetaphorDensity += v.MetaphorDensity
		sum.NarrativeCoherence += v.NarrativeCoherence
		sum.ModalCompression += v.ModalCompression
		sum.PronounIndividual += v.PronounIndividual
		sum.PronounCollective += v.PronounCollective
		sum.PronounRatio += v.PronounRatio
		sum.EmotionalStability += v.EmotionalStability
		sum.EmotionalFragmentation += v.EmotionalFragmentation
		sum.SentimentScore += v.SentimentScore
	}
	n := float64(len(vectors))
	return FeatureVector{
		SymbolAlignment:        sum.SymbolAlignment / n,
		MetaphorDensity:        sum.MetaphorDensity / n,
		NarrativeCoherence:     sum.NarrativeCoherence / n,
		ModalCompression:       sum.ModalCompression / n,
		PronounIndividual:      sum.PronounIndividual / n,
		PronounCollective:      sum.PronounCollective / n,
		PronounRatio:           sum.PronounRatio / n,
		EmotionalStability:     sum.EmotionalStability / n,
		EmotionalFragmentation: sum.EmotionalFragmentation / n,
		SentimentLabel:         SentimentNeutral,
		SentimentScore:         sum.SentimentScore / n,
	}
}
