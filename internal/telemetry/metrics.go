package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter    metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	DocumentsIngested metric.Int64Counter
	ChunksEmbedded    metric.Int64Counter
	SearchCounter     metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("voice-agent-platform")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	documentsIngested, err := meter.Int64Counter(
		"kb.documents.ingested",
		metric.WithDescription("Documents accepted into the knowledge base"),
	)
	if err != nil {
		return nil, err
	}

	chunksEmbedded, err := meter.Int64Counter(
		"kb.chunks.embedded",
		metric.WithDescription("Chunks embedded and stored"),
	)
	if err != nil {
		return nil, err
	}

	searchCounter, err := meter.Int64Counter(
		"kb.searches.total",
		metric.WithDescription("Knowledge base searches served"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:    requestCounter,
		RequestDuration:   requestDuration,
		DocumentsIngested: documentsIngested,
		ChunksEmbedded:    chunksEmbedded,
		SearchCounter:     searchCounter,
	}, nil
}

// RecordRequest records one served HTTP request
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	if m == nil {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.String("status", status),
	)
	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, duration, attrs)
}

// RecordIngest records one successful document upload
func (m *Metrics) RecordIngest(chunkCount int) {
	if m == nil {
		return
	}
	ctx := context.Background()
	m.DocumentsIngested.Add(ctx, 1)
	m.ChunksEmbedded.Add(ctx, int64(chunkCount))
}

// RecordSearch records one search request outcome
func (m *Metrics) RecordSearch(status string) {
	if m == nil {
		return
	}
	m.SearchCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("status", status)))
}
