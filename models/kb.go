package models

import "time"

// Document is the registry record for one ingested file. The registry is
// process-memory only: documents do not survive a restart even though the
// uploaded file and the vector collection might.
type Document struct {
	ID         string
	Title      string
	CreatedAt  time.Time
	ChunkCount int
	FilePath   string
}

// Summary returns the externally visible view of a document. The storage
// path is never exposed over the API.
func (d Document) Summary() DocSummary {
	return DocSummary{
		ID:         d.ID,
		Title:      d.Title,
		CreatedAt:  d.CreatedAt,
		ChunkCount: d.ChunkCount,
	}
}

// DocSummary is the API-facing document shape.
type DocSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
	ChunkCount int       `json:"chunkCount"`
}

// TextChunk is one window produced by the chunker. Index counts emitted
// chunks, not window positions.
type TextChunk struct {
	Index int
	Text  string
}

// StoredChunk is the unit the vector store persists: the chunk text, its
// embedding, and enough denormalized metadata to render a search hit.
type StoredChunk struct {
	ChunkID   string
	DocID     string
	DocTitle  string
	Text      string
	Embedding []float32
}

// VectorSearchResult is a raw nearest-neighbor hit from a vector store.
type VectorSearchResult struct {
	ChunkID  string
	DocID    string
	DocTitle string
	Text     string
	Score    float32
}

// SearchResult is the API-facing hit with the chunk text reduced to a
// display snippet.
type SearchResult struct {
	DocID    string  `json:"docId"`
	DocTitle string  `json:"docTitle"`
	ChunkID  string  `json:"chunkId"`
	Snippet  string  `json:"snippet"`
	Score    float32 `json:"score"`
}

// UploadInput carries one uploaded file through the ingestion pipeline.
type UploadInput struct {
	Filename string
	MimeType string
	Data     []byte
}

// SearchRequest is the /kb/search request body. TopK is a pointer so an
// omitted value can fall back to the default.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"topK"`
}
