package sentiment

import (
	"context"
	"strings"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
)

var positiveCues = map[string]struct{}{
	"amazing": {}, "appreciate": {}, "celebrate": {}, "confident": {},
	"delivered": {}, "excellent": {}, "excited": {}, "glad": {},
	"good": {}, "great": {}, "happy": {}, "improved": {}, "love": {},
	"proud": {}, "shipped": {}, "solid": {}, "strong": {}, "succeeded": {},
	"success": {}, "thanks": {}, "thrilled": {}, "win": {}, "wins": {},
	"wonderful": {},
}

var negativeCues = map[string]struct{}{
	"afraid": {}, "angry": {}, "annoyed": {}, "awful": {}, "bad": {},
	"blocked": {}, "broken": {}, "burnout": {}, "concerned": {},
	"disappointed": {}, "exhausted": {}, "fail": {}, "failed": {},
	"failing": {}, "frustrated": {}, "hate": {}, "impossible": {},
	"lost": {}, "miserable": {}, "overwhelmed": {}, "sad": {},
	"stuck": {}, "terrible": {}, "tired": {}, "worried": {}, "worse": {},
	"worst": {},
}

// Lexicon is a deterministic offline classifier: the verdict comes from the
// polarity margin between fixed positive and negative cue sets. It is the
// default provider when no API key is configured.
type Lexicon struct{}

// NewLexicon returns the wordlist classifier.
func NewLexicon() *Lexicon {
	return &Lexicon{}
}

// Classify scores text on [0, 1] with 0.5 neutral. Texts with no polarity
// cues are neutral.
func (l *Lexicon) Classify(ctx context.Context, text string) (domain.Sentiment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Sentiment{}, err
	}

	var positive, negative int
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'()[]{}")
		if _, ok := positiveCues[token]; ok {
			positive++
		}
		if _, ok := negativeCues[token]; ok {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return domain.NeutralSentiment(), nil
	}

	score := 0.5 + 0.5*float64(positive-negative)/float64(total)
	label := domain.SentimentNeutral
	switch {
	case positive > negative:
		label = domain.SentimentPositive
	case negative > positive:
		label = domain.SentimentNegative
	}
	return domain.Sentiment{Label: label, Score: score}, nil
}

var _ Provider = (*Lexicon)(nil)
