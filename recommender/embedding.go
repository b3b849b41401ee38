package recommender

import "math"

type embeddingEntry struct {
	id     string
	vector []float64
}

// EmbeddingStore holds the per-item embedding vectors for both pools.
// Vectors are produced once at classification time and never mutated here;
// replacing an item's embedding means re-adding it under the same id.
type EmbeddingStore struct {
	wardrobe []embeddingEntry
	catalog  []embeddingEntry
}

func NewEmbeddingStore() *EmbeddingStore {
	return &EmbeddingStore{}
}

func (s *EmbeddingStore) AddWardrobe(id string, vector []float64) {
	s.wardrobe = append(s.wardrobe, embeddingEntry{id: id, vector: vector})
}

func (s *EmbeddingStore) AddCatalog(id string, vector []float64) {
	s.catalog = append(s.catalog, embeddingEntry{id: id, vector: vector})
}

// Get looks up an item's vector, wardrobe pool first. A miss is not an error:
// callers treat a missing embedding as "no similarity signal".
func (s *EmbeddingStore) Get(id string) ([]float64, bool) {
	for _, entry := range s.wardrobe {
		if entry.id == id {
			return entry.vector, true
		}
	}
	for _, entry := range s.catalog {
		if entry.id == id {
			return entry.vector, true
		}
	}
	return nil, false
}

// CosineSimilarity re-normalizes both vectors even though stored vectors are
// expected to already be unit norm. Zero-norm or mismatched inputs yield 0.0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
