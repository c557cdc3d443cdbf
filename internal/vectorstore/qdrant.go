package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"voice-agent-platform/models"
)

// pointsAPI and collectionsAPI narrow the generated Qdrant clients down to
// the calls used here so tests can substitute fakes.
type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Delete(ctx context.Context, in *pb.DeletePoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
}

type collectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
}

// QdrantStore persists chunks in a Qdrant collection over gRPC.
type QdrantStore struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	collection  string
	dims        int

	initOnce sync.Once
	initErr  error
}

// NewQdrantStore connects to Qdrant at the given gRPC address. The
// collection itself is established lazily on first use.
func NewQdrantStore(addr, collection string, dims int) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial qdrant %s: %w", addr, err)
	}
	return &QdrantStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		dims:        dims,
	}, nil
}

// NewQdrantStoreWithClients builds a store around preconstructed clients.
// Used by tests.
func NewQdrantStoreWithClients(points pointsAPI, collections collectionsAPI, collection string, dims int) *QdrantStore {
	return &QdrantStore{
		points:      points,
		collections: collections,
		collection:  collection,
		dims:        dims,
	}
}

// Close closes the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// ensureCollection creates the collection if it doesn't exist. The outcome
// is memoized so every subsequent call shares the first initialization.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	s.initOnce.Do(func() {
		list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
		if err != nil {
			s.initErr = fmt.Errorf("list collections: %w", err)
			return
		}
		for _, c := range list.GetCollections() {
			if c.GetName() == s.collection {
				return
			}
		}

		_, err = s.collections.Create(ctx, &pb.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: &pb.VectorsConfig{
				Config: &pb.VectorsConfig_Params{
					Params: &pb.VectorParams{
						Size:     uint64(s.dims),
						Distance: pb.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			s.initErr = fmt.Errorf("create collection %s: %w", s.collection, err)
		}
	})
	return s.initErr
}

func (s *QdrantStore) AddChunks(ctx context.Context, chunks []models.StoredChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	points := make([]*pb.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: pointID(chunk.ChunkID)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: chunk.Embedding},
				},
			},
			Payload: map[string]*pb.Value{
				"chunk_id":  stringValue(chunk.ChunkID),
				"doc_id":    stringValue(chunk.DocID),
				"doc_title": stringValue(chunk.DocTitle),
				"text":      stringValue(chunk.Text),
			},
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]models.VectorSearchResult, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         queryEmbedding,
		Limit:          uint64(topK),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]models.VectorSearchResult, 0, len(resp.GetResult()))
	for _, hit := range resp.GetResult() {
		payload := hit.GetPayload()
		docID := payload["doc_id"].GetStringValue()
		if docID == "" {
			// Payloads written by anything other than AddChunks are
			// not renderable as search hits.
			continue
		}
		results = append(results, models.VectorSearchResult{
			ChunkID:  payload["chunk_id"].GetStringValue(),
			DocID:    docID,
			DocTitle: payload["doc_title"].GetStringValue(),
			Text:     payload["text"].GetStringValue(),
			// Qdrant cosine scores are similarities already, higher is
			// more relevant.
			Score: hit.GetScore(),
		})
	}
	return results, nil
}

func (s *QdrantStore) DeleteByDocID(ctx context.Context, docID string) error {
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{fieldMatch("doc_id", docID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete by doc_id %s: %w", docID, err)
	}
	return nil
}

// pointID derives a stable UUID from the chunk ID so re-ingesting the same
// chunk overwrites its previous point instead of duplicating it.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

func stringValue(v string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}
