package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// DefaultHashingDimensions sizes the feature-hashed vector space.
const DefaultHashingDimensions = 256

// Hashing is a deterministic offline provider: tokens are feature-hashed
// into a fixed-dimension bag-of-words vector and L2-normalized. Identical
// texts always embed identically.
type Hashing struct {
	dimensions int
}

// NewHashing builds a hashing provider. Dimensions at or below zero fall
// back to DefaultHashingDimensions.
func NewHashing(dimensions int) *Hashing {
	if dimensions <= 0 {
		dimensions = DefaultHashingDimensions
	}
	return &Hashing{dimensions: dimensions}
}

// Embed maps text onto the hashed vector space. Token-free text embeds as
// the zero vector, which downstream cosine scoring treats as similarity 0.
func (h *Hashing) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector := make([]float64, h.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'()[]{}")
		if token == "" {
			continue
		}
		hasher := fnv.New64a()
		_, _ = hasher.Write([]byte(token))
		vector[hasher.Sum64()%uint64(h.dimensions)]++
	}

	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	if norm == 0 {
		return vector, nil
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] /= norm
	}
	return vector, nil
}

var _ Provider = (*Hashing)(nil)
