// Package sentiment classifies message tone through pluggable providers.
//
// Classification is an enrichment, never a gate: callers fall back to the
// neutral verdict when no provider is configured or a provider fails.
package sentiment

import (
	"context"

	"github.com/cadencelabs/driftwatch/internal/analysis/domain"
)

// Provider returns a tone verdict for a text. Implementations must be safe
// for concurrent use.
type Provider interface {
	Classify(ctx context.Context, text string) (domain.Sentiment, error)
}
