// Package vectorstore persists chunk embeddings and answers nearest-neighbor
// queries over them. Two implementations exist: a Qdrant-backed store and an
// in-process fallback used when Qdrant is unreachable at startup.
package vectorstore

import (
	"context"
	"time"

	"voice-agent-platform/internal/logger"
	"voice-agent-platform/models"
)

// Store is the capability surface the knowledge base depends on.
type Store interface {
	// AddChunks upserts chunks keyed by chunk ID. Empty input is a no-op.
	AddChunks(ctx context.Context, chunks []models.StoredChunk) error
	// Search returns up to topK hits ordered by descending similarity.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]models.VectorSearchResult, error)
	// DeleteByDocID removes every chunk belonging to the document.
	DeleteByDocID(ctx context.Context, docID string) error
}

// Select probes the Qdrant backend once at startup and falls back to the
// in-process store when the probe fails. The decision is made before the
// knowledge base is constructed and never revisited per operation.
func Select(ctx context.Context, addr, collection string, dims int) (Store, string) {
	qs, err := NewQdrantStore(addr, collection, dims)
	if err == nil {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err = qs.ensureCollection(probeCtx); err == nil {
			return qs, "qdrant"
		}
		qs.Close()
	}
	logger.Warn("Qdrant unavailable, falling back to in-memory vector store", "addr", addr, "error", err)
	return NewMemoryStore(), "memory"
}
