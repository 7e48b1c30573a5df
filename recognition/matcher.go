package recognition

import (
	"fmt"
	"log"
)

// DefaultThreshold is the minimum cosine similarity for an embedding to be
// considered the same person. Values above 0.6 typically mean a match for
// normalized face embeddings.
const DefaultThreshold float32 = 0.6

// Candidate is one stored embedding eligible for matching: a face that has
// both an embedding and a person link.
type Candidate struct {
	FaceID    uint
	PersonID  uint
	Embedding []float32
}

// EmbeddingSource enumerates the match candidates inside one user's scope for
// a given embedding model, ordered by face ID ascending. The ordering is part
// of the contract: it makes tie-breaking deterministic.
type EmbeddingSource interface {
	ListIdentifiedEmbeddings(userID uint, modelTag string) ([]Candidate, error)
}

// Matcher performs a brute-force nearest-neighbor search over all identified
// embeddings in a user's scope. O(n) per query; no index structure is kept,
// which is fine for moderate per-user libraries.
type Matcher struct {
	source    EmbeddingSource
	threshold float32
}

// NewMatcher creates a matcher over the given source. A non-positive
// threshold falls back to DefaultThreshold.
func NewMatcher(source EmbeddingSource, threshold float32) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{source: source, threshold: threshold}
}

// Threshold returns the configured similarity threshold.
func (m *Matcher) Threshold() float32 {
	return m.threshold
}

// FindMatch returns the ID of the person whose stored embedding is most
// similar to the query, or nil when no candidate reaches the configured
// threshold. Only embeddings produced by the same model tag are compared.
func (m *Matcher) FindMatch(embedding []float32, modelTag string, userID uint) (*uint, error) {
	return m.FindMatchWithThreshold(embedding, modelTag, userID, m.threshold)
}

// FindMatchWithThreshold is FindMatch with an explicit threshold override.
//
// Candidates arrive ordered by face ID ascending and a candidate replaces the
// running best only on strictly greater similarity, so on an exact tie the
// face with the lowest ID wins regardless of database return order.
func (m *Matcher) FindMatchWithThreshold(embedding []float32, modelTag string, userID uint, threshold float32) (*uint, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	candidates, err := m.source.ListIdentifiedEmbeddings(userID, modelTag)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings for user %d: %w", userID, err)
	}

	var bestSimilarity float32 = -1.0
	var bestPersonID *uint

	for _, cand := range candidates {
		if len(cand.Embedding) != len(embedding) {
			// same model tag but different dimensionality: corrupt row, skip it
			log.Printf("matcher: skipping face %d: embedding length %d != query length %d (model %s)",
				cand.FaceID, len(cand.Embedding), len(embedding), modelTag)
			continue
		}
		sim := CosineSimilarity(embedding, cand.Embedding)
		if sim > bestSimilarity {
			bestSimilarity = sim
			personID := cand.PersonID
			bestPersonID = &personID
		}
	}

	if bestPersonID == nil || bestSimilarity < threshold {
		return nil, nil
	}
	return bestPersonID, nil
}
