// Package feature computes linguistic feature vectors from message text.
//
// The measurements are reproducible approximations, not NLP ground truth:
// tokenization is case-folded whitespace splitting, sentences end at ., !,
// or ?, and every cue is a fixed lexicon lookup. The contracts around the
// numbers (ranges, neutral defaults, stability/fragmentation complement) are
// the stable part.
package feature

import (
	"math"
	"strings"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
	"golang.org/x/text/cases"
)

const (
	// idealSentenceTokens is the sentence length treated as maximally
	// coherent; coherencePenalty is the score lost per token of deviation.
	idealSentenceTokens = 15.0
	coherencePenalty    = 5.0

	// negationWeight scales the negation ratio into the stability estimate.
	negationWeight = 200.0
)

const tokenTrimCutset = ".,!?;:\"'()[]{}<>*_~`-"

// Extractor computes feature vectors. It holds no mutable state; Extract is
// pure and safe for concurrent use.
type Extractor struct{}

// New returns an extractor over the package's fixed lexicons.
func New() *Extractor {
	return &Extractor{}
}

// Extract measures text and returns its feature vector. Empty or
// token-free text yields the neutral vector. Extract performs no I/O and
// never panics; sentiment fields stay neutral here and are enriched by the
// engine when a sentiment provider is configured.
func (e *Extractor) Extract(text string) domain.FeatureVector {
	folded := cases.Fold().String(text)

	tokens := tokenize(folded)
	if len(tokens) == 0 {
		return domain.NeutralVector()
	}
	sentences := splitSentences(folded)
	if len(sentences) == 0 {
		return domain.NeutralVector()
	}

	var metaphors, modals, individual, collective, negations int
	for _, token := range tokens {
		if _, ok := metaphorCues[token]; ok {
			metaphors++
		}
		if _, ok := modalCues[token]; ok {
			modals++
		}
		if _, ok := individualPronouns[token]; ok {
			individual++
		}
		if _, ok := collectivePronouns[token]; ok {
			collective++
		}
		if _, ok := negationCues[token]; ok {
			negations++
		}
	}

	anchored := 0
	for _, sentence := range sentences {
		if sentenceHasAnchor(sentence) {
			anchored++
		}
	}

	tokenCount := float64(len(tokens))
	sentenceCount := float64(len(sentences))

	stability := math.Max(0, 100-negationWeight*float64(negations)/tokenCount)
	avgSentenceTokens := tokenCount / sentenceCount

	return domain.FeatureVector{
		SymbolAlignment:        clampPercent(100 * float64(anchored) / sentenceCount),
		MetaphorDensity:        clampPercent(100 * float64(metaphors) / tokenCount),
		NarrativeCoherence:     clampPercent(100 - math.Abs(avgSentenceTokens-idealSentenceTokens)*coherencePenalty),
		ModalCompression:       clampPercent(100 * float64(modals) / tokenCount),
		PronounIndividual:      clampPercent(100 * float64(individual) / tokenCount),
		PronounCollective:      clampPercent(100 * float64(collective) / tokenCount),
		PronounRatio:           float64(individual) / math.Max(float64(collective), 1),
		EmotionalStability:     stability,
		EmotionalFragmentation: 100 - stability,
		SentimentLabel:         domain.SentimentNeutral,
		SentimentScore:         domain.NeutralSentimentScore,
	}
}

// tokenize splits folded text on whitespace and trims surrounding
// punctuation from each token. Tokens reduced to nothing are dropped.
func tokenize(folded string) []string {
	fields := strings.Fields(folded)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := strings.Trim(field, tokenTrimCutset)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// splitSentences cuts folded text at ., !, and ? and keeps segments that
// still contain at least one token.
func splitSentences(folded string) []string {
	segments := strings.FieldsFunc(folded, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(segments))
	for _, segment := range segments {
		if len(tokenize(segment)) > 0 {
			sentences = append(sentences, segment)
		}
	}
	return sentences
}

func sentenceHasAnchor(sentence string) bool {
	for _, token := range tokenize(sentence) {
		if _, ok := anchorSymbols[token]; ok {
			return true
		}
	}
	return false
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
