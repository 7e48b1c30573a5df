// Package recognition implements the identity resolution core: cosine
// similarity over face embeddings and the best-match search used to link a
// newly detected face to an already known person.
package recognition

import "math"

// CosineSimilarity computes the cosine similarity between two embedding
// vectors, in [-1, 1]. A zero-norm vector never matches anything, so the
// result is 0.0 rather than an error. Callers must pass equal-length vectors;
// mismatched lengths also yield 0.0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct float32
	var normA float32
	var normB float32

	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	normASqrt := float32(math.Sqrt(float64(normA)))
	normBSqrt := float32(math.Sqrt(float64(normB)))

	return dotProduct / (normASqrt * normBSqrt)
}

// NormalizeEmbedding scales the vector to unit length. Zero vectors are
// returned unchanged.
func NormalizeEmbedding(embedding []float32) []float32 {
	if len(embedding) == 0 {
		return embedding
	}

	var norm float32
	for _, val := range embedding {
		norm += val * val
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm == 0 {
		return embedding
	}

	normalized := make([]float32, len(embedding))
	for i, val := range embedding {
		normalized[i] = val / norm
	}
	return normalized
}
