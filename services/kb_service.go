package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"voice-agent-platform/internal/ai"
	"voice-agent-platform/internal/logger"
	"voice-agent-platform/internal/vectorstore"
	"voice-agent-platform/models"
)

// Sentinel errors surfaced by knowledge base operations. HTTP handlers map
// them onto statuses with errors.Is; reasons are attached with %w wrapping.
var (
	ErrUnsupportedFileType = errors.New("UNSUPPORTED_FILE_TYPE")
	ErrEmptyDocument       = errors.New("EMPTY_DOCUMENT")
	ErrEmbeddingFailed     = errors.New("EMBEDDING_FAILED")
	ErrVectorStoreFailed   = errors.New("VECTOR_STORE_FAILED")
	ErrInvalidQuery        = errors.New("INVALID_QUERY")
)

const (
	extPDF = ".pdf"
	extTxt = ".txt"

	snippetLength = 240
	defaultTopK   = 5
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// KBService orchestrates extraction, chunking, embedding, and vector
// storage for the knowledge base, and owns the in-memory document registry.
// The registry is the single source of truth for which documents exist; it
// does not survive a restart.
type KBService struct {
	store     vectorstore.Store
	embedder  ai.Embedder
	uploadDir string
	chunkSize int
	overlap   int

	mu   sync.RWMutex
	docs map[string]models.Document
}

func NewKBService(store vectorstore.Store, embedder ai.Embedder, uploadDir string, chunkSize, overlap int) *KBService {
	return &KBService{
		store:     store,
		embedder:  embedder,
		uploadDir: uploadDir,
		chunkSize: chunkSize,
		overlap:   overlap,
		docs:      make(map[string]models.Document),
	}
}

// inferExtension resolves the ingestion format from the filename, falling
// back to the declared MIME type when the extension is missing or unknown.
func inferExtension(filename, mimeType string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case extPDF:
		return extPDF
	case extTxt:
		return extTxt
	}
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "application/pdf":
		return extPDF
	case "text/plain":
		return extTxt
	}
	return ""
}

// Upload runs the full ingestion pipeline: extract, chunk, embed in one
// batch, write vectors, persist the original file, register the document.
// File persistence and registration are sequenced after the vector write so
// a listed document always has its vectors present.
func (s *KBService) Upload(ctx context.Context, input models.UploadInput) (models.DocSummary, error) {
	filename := filepath.Base(input.Filename)
	if filename == "" || filename == "." || filename == "/" {
		filename = "document"
	}

	ext := inferExtension(filename, input.MimeType)
	if ext == "" {
		return models.DocSummary{}, ErrUnsupportedFileType
	}

	var text string
	if ext == extPDF {
		extracted, err := ExtractPDF(input.Data)
		if err != nil {
			return models.DocSummary{}, fmt.Errorf("extract pdf: %w", err)
		}
		text = extracted
	} else {
		text = ExtractPlainText(input.Data)
	}
	if text == "" {
		return models.DocSummary{}, ErrEmptyDocument
	}

	chunks := ChunkText(text, s.chunkSize, s.overlap)
	if len(chunks) == 0 {
		return models.DocSummary{}, ErrEmptyDocument
	}

	docID := uuid.NewString()
	createdAt := time.Now().UTC()

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return models.DocSummary{}, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(embeddings) != len(chunks) {
		return models.DocSummary{}, fmt.Errorf("%w: got %d embeddings for %d chunks", ErrEmbeddingFailed, len(embeddings), len(chunks))
	}

	stored := make([]models.StoredChunk, len(chunks))
	for i, chunk := range chunks {
		stored[i] = models.StoredChunk{
			ChunkID:   fmt.Sprintf("%s:%d", docID, chunk.Index),
			DocID:     docID,
			DocTitle:  filename,
			Text:      chunk.Text,
			Embedding: embeddings[i],
		}
	}

	if err := s.store.AddChunks(ctx, stored); err != nil {
		return models.DocSummary{}, fmt.Errorf("%w: %v", ErrVectorStoreFailed, err)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return models.DocSummary{}, fmt.Errorf("create upload dir: %w", err)
	}
	filePath := filepath.Join(s.uploadDir, docID+ext)
	if err := os.WriteFile(filePath, input.Data, 0o644); err != nil {
		return models.DocSummary{}, fmt.Errorf("persist upload: %w", err)
	}

	doc := models.Document{
		ID:         docID,
		Title:      filename,
		CreatedAt:  createdAt,
		ChunkCount: len(stored),
		FilePath:   filePath,
	}
	s.mu.Lock()
	s.docs[docID] = doc
	s.mu.Unlock()

	logger.Info("Document ingested", "doc_id", docID, "title", filename, "chunks", len(stored))
	return doc.Summary(), nil
}

// ListDocs returns every registered document, most recent first.
func (s *KBService) ListDocs() []models.DocSummary {
	s.mu.RLock()
	summaries := make([]models.DocSummary, 0, len(s.docs))
	for _, doc := range s.docs {
		summaries = append(summaries, doc.Summary())
	}
	s.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries
}

// DeleteDoc removes the document's chunks, its registry entry, and its
// stored files. File cleanup is best-effort: the reported outcome reflects
// the registry and vector store only.
func (s *KBService) DeleteDoc(ctx context.Context, docID string) (bool, error) {
	s.mu.RLock()
	doc, ok := s.docs[docID]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := s.store.DeleteByDocID(ctx, docID); err != nil {
		return false, fmt.Errorf("%w: %v", ErrVectorStoreFailed, err)
	}

	s.mu.Lock()
	delete(s.docs, docID)
	s.mu.Unlock()

	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove uploaded file", "path", doc.FilePath, "error", err)
	}
	// Sweep any leftover files carrying the doc ID prefix in case the
	// stored path and the naming scheme ever drift.
	if entries, err := os.ReadDir(s.uploadDir); err == nil {
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), docID) {
				os.Remove(filepath.Join(s.uploadDir, entry.Name()))
			}
		}
	}

	logger.Info("Document deleted", "doc_id", docID)
	return true, nil
}

// Search embeds the query and maps vector hits into display results with
// generated snippets.
func (s *KBService) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	cleaned := strings.TrimSpace(query)
	if cleaned == "" {
		return nil, ErrInvalidQuery
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, []string{cleaned})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	var embedding []float32
	if len(embeddings) > 0 {
		embedding = embeddings[0]
	}

	hits, err := s.store.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]models.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = models.SearchResult{
			DocID:    hit.DocID,
			DocTitle: hit.DocTitle,
			ChunkID:  hit.ChunkID,
			Snippet:  CreateSnippet(hit.Text),
			Score:    hit.Score,
		}
	}
	return results, nil
}

// CreateSnippet collapses whitespace and hard-truncates to the display
// length. No ellipsis marker is appended.
func CreateSnippet(text string) string {
	normalized := strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
	runes := []rune(normalized)
	if len(runes) > snippetLength {
		runes = runes[:snippetLength]
	}
	return string(runes)
}
