package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"voice-agent-platform/models"
)

// MemoryStore is the in-process fallback: a chunk registry keyed by chunk
// ID, linear-scanned with cosine similarity at query time.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[string]models.StoredChunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string]models.StoredChunk)}
}

func (s *MemoryStore) AddChunks(_ context.Context, chunks []models.StoredChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ChunkID] = chunk
	}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, queryEmbedding []float32, topK int) ([]models.VectorSearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]models.VectorSearchResult, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		scored = append(scored, models.VectorSearchResult{
			ChunkID:  chunk.ChunkID,
			DocID:    chunk.DocID,
			DocTitle: chunk.DocTitle,
			Text:     chunk.Text,
			Score:    float32(cosineSimilarity(queryEmbedding, chunk.Embedding)),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < 0 {
		topK = 0
	}
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (s *MemoryStore) DeleteByDocID(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for chunkID, chunk := range s.chunks {
		if chunk.DocID == docID {
			delete(s.chunks, chunkID)
		}
	}
	return nil
}

// cosineSimilarity compares the overlapping prefix of the two vectors and
// reports 0 when either side is empty or a zero vector.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
