package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"voice-agent-platform/internal/vectorstore"
	"voice-agent-platform/models"
)

// fakeEmbedder derives a deterministic vector from each text so identical
// texts always land on the same point.
type fakeEmbedder struct {
	err       error
	dropLast  bool
	callCount int
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		var a, b float32
		for i, r := range text {
			a += float32(r)
			b += float32(r) * float32(i%7+1)
		}
		out = append(out, []float32{a, b, float32(len(text))})
	}
	if f.dropLast && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

type failingStore struct {
	vectorstore.Store
}

func (failingStore) AddChunks(context.Context, []models.StoredChunk) error {
	return errors.New("connection refused")
}

func (failingStore) DeleteByDocID(context.Context, string) error {
	return errors.New("connection refused")
}

func newTestService(t *testing.T) *KBService {
	t.Helper()
	return NewKBService(vectorstore.NewMemoryStore(), &fakeEmbedder{}, t.TempDir(), 50, 10)
}

func TestUploadTextDocument(t *testing.T) {
	dir := t.TempDir()
	kb := NewKBService(vectorstore.NewMemoryStore(), &fakeEmbedder{}, dir, 50, 10)

	content := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 5)
	doc, err := kb.Upload(context.Background(), models.UploadInput{
		Filename: "notes.txt",
		MimeType: "text/plain",
		Data:     []byte(content),
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("expected a document ID")
	}
	if doc.Title != "notes.txt" {
		t.Fatalf("expected title notes.txt, got %q", doc.Title)
	}
	if doc.ChunkCount < 2 {
		t.Fatalf("expected multiple chunks, got %d", doc.ChunkCount)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != doc.ID+".txt" {
		t.Fatalf("expected persisted file %s.txt, got %v", doc.ID, entries)
	}
}

func TestUploadInfersTypeFromMime(t *testing.T) {
	kb := newTestService(t)
	doc, err := kb.Upload(context.Background(), models.UploadInput{
		Filename: "pasted-content",
		MimeType: "text/plain",
		Data:     []byte("some plain text content"),
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if doc.ChunkCount != 1 {
		t.Fatalf("expected 1 chunk, got %d", doc.ChunkCount)
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	kb := newTestService(t)
	_, err := kb.Upload(context.Background(), models.UploadInput{
		Filename: "report.docx",
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Data:     []byte("binary"),
	})
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestUploadEmptyDocument(t *testing.T) {
	kb := newTestService(t)
	_, err := kb.Upload(context.Background(), models.UploadInput{
		Filename: "blank.txt",
		MimeType: "text/plain",
		Data:     []byte("   \n\t \r\n "),
	})
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestUploadEmbeddingFailure(t *testing.T) {
	dir := t.TempDir()
	kb := NewKBService(vectorstore.NewMemoryStore(), &fakeEmbedder{err: errors.New("quota exceeded")}, dir, 50, 10)

	_, err := kb.Upload(context.Background(), models.UploadInput{
		Filename: "notes.txt",
		MimeType: "text/plain",
		Data:     []byte("some content"),
	})
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}

	// Nothing should be persisted or registered after a failed embed.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty upload dir, got %v", entries)
	}
	if docs := kb.ListDocs(); len(docs) != 0 {
		t.Fatalf("expected no registered docs, got %d", len(docs))
	}
}

func TestUploadEmbeddingCountMismatch(t *testing.T) {
	kb := NewKBService(vectorstore.NewMemoryStore(), &fakeEmbedder{dropLast: true}, t.TempDir(), 50, 10)
	_, err := kb.Upload(context.Background(), models.UploadInput{
		Filename: "notes.txt",
		MimeType: "text/plain",
		Data:     []byte(strings.Repeat("content here ", 20)),
	})
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}
}

func TestUploadVectorStoreFailure(t *testing.T) {
	kb := NewKBService(failingStore{}, &fakeEmbedder{}, t.TempDir(), 50, 10)
	_, err := kb.Upload(context.Background(), models.UploadInput{
		Filename: "notes.txt",
		MimeType: "text/plain",
		Data:     []byte("some content"),
	})
	if !errors.Is(err, ErrVectorStoreFailed) {
		t.Fatalf("expected ErrVectorStoreFailed, got %v", err)
	}
}

func TestListDocsNewestFirst(t *testing.T) {
	kb := newTestService(t)
	ctx := context.Background()

	first, err := kb.Upload(ctx, models.UploadInput{Filename: "first.txt", Data: []byte("first document")})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := kb.Upload(ctx, models.UploadInput{Filename: "second.txt", Data: []byte("second document")})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	docs := kb.ListDocs()
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].ID != second.ID || docs[1].ID != first.ID {
		t.Fatalf("expected newest first, got %v then %v", docs[0].ID, docs[1].ID)
	}
}

func TestDeleteDocRoundTrip(t *testing.T) {
	dir := t.TempDir()
	kb := NewKBService(vectorstore.NewMemoryStore(), &fakeEmbedder{}, dir, 50, 10)
	ctx := context.Background()

	doc, err := kb.Upload(ctx, models.UploadInput{Filename: "notes.txt", Data: []byte("searchable content here")})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	removed, err := kb.DeleteDoc(ctx, doc.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !removed {
		t.Fatal("expected delete to report removal")
	}

	if docs := kb.ListDocs(); len(docs) != 0 {
		t.Fatalf("expected empty registry, got %d docs", len(docs))
	}
	results, err := kb.Search(ctx, "searchable content here", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no hits after delete, got %d", len(results))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected the stored file to be removed, got %v", entries)
	}

	removed, err = kb.DeleteDoc(ctx, doc.ID)
	if err != nil {
		t.Fatalf("second delete errored: %v", err)
	}
	if removed {
		t.Fatal("expected second delete to report not found")
	}
}

func TestDeleteUnknownDoc(t *testing.T) {
	kb := newTestService(t)
	removed, err := kb.DeleteDoc(context.Background(), "no-such-doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Fatal("expected not found")
	}
}

func TestSearchInvalidQuery(t *testing.T) {
	kb := newTestService(t)
	if _, err := kb.Search(context.Background(), "   ", 5); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestSearchEmptyKnowledgeBase(t *testing.T) {
	kb := newTestService(t)
	results, err := kb.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestSearchReturnsMatchingDocument(t *testing.T) {
	kb := newTestService(t)
	ctx := context.Background()

	doc, err := kb.Upload(ctx, models.UploadInput{Filename: "notes.txt", Data: []byte("unique target phrase")})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	results, err := kb.Search(ctx, "unique target phrase", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	top := results[0]
	if top.DocID != doc.ID {
		t.Fatalf("expected top hit from doc %s, got %s", doc.ID, top.DocID)
	}
	if top.DocTitle != "notes.txt" {
		t.Fatalf("unexpected title %q", top.DocTitle)
	}
	if top.ChunkID == "" || top.Snippet == "" {
		t.Fatalf("incomplete result: %+v", top)
	}
}

func TestCreateSnippet(t *testing.T) {
	got := CreateSnippet("  hello \n\n  world\t again  ")
	if got != "hello world again" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}

	long := strings.Repeat("x", 500)
	got = CreateSnippet(long)
	if len([]rune(got)) != 240 {
		t.Fatalf("expected 240-rune snippet, got %d", len([]rune(got)))
	}
}
