package vectorstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dome/internal/apperr"
)

func TestGrpcAddress(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{name: "default port", urlStr: "http://localhost:6333", wantHost: "localhost", wantPort: 6334},
		{name: "custom port", urlStr: "http://qdrant:9000", wantHost: "qdrant", wantPort: 9001},
		{name: "no port", urlStr: "http://localhost", wantHost: "localhost", wantPort: 6334},
		{name: "no host", urlStr: "http://:6333", wantHost: "localhost", wantPort: 6334},
		{name: "invalid", urlStr: "://invalid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcAddress(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcAddress() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcAddress() error = %v", err)
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("grpcAddress() = %s:%d, want %s:%d", host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	_, err := NewQdrantStore("://invalid")
	if err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "missing collection",
			err:  status.Error(codes.NotFound, "Not found: Collection `resource_embeddings` doesn't exist!"),
			want: apperr.ErrNotFound,
		},
		{
			name: "dimension mismatch",
			err:  status.Error(codes.InvalidArgument, "Wrong input: Vector dimension error: expected dim: 768, got 1024"),
			want: apperr.ErrDimensionMismatch,
		},
		{
			name: "other bad input",
			err:  status.Error(codes.InvalidArgument, "Wrong input: bad filter"),
			want: nil,
		},
		{
			name: "unavailable",
			err:  status.Error(codes.Unavailable, "connection refused"),
			want: nil,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", "resource_embeddings", tt.err)
			if got == nil {
				t.Fatal("classify() returned nil")
			}
			if kind := apperr.KindOf(got); kind != tt.want {
				t.Errorf("classify() kind = %v, want %v", kind, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classify() lost the cause")
			}
		})
	}

	if classify("op", "c", nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}

func TestIsAlreadyExists(t *testing.T) {
	if !isAlreadyExists(status.Error(codes.AlreadyExists, "exists")) {
		t.Error("AlreadyExists code not recognised")
	}
	if !isAlreadyExists(status.Error(codes.InvalidArgument, "Wrong input: Collection `x` already exists!")) {
		t.Error("already exists message not recognised")
	}
	if isAlreadyExists(status.Error(codes.Internal, "boom")) {
		t.Error("unrelated error recognised as already exists")
	}
}

func TestMatchFilter(t *testing.T) {
	if matchFilter(nil) != nil {
		t.Error("matchFilter(nil) should be nil")
	}

	f := matchFilter(map[string]string{"resource_id": "r1", "entity_id": "e1"})
	if len(f.Must) != 2 {
		t.Fatalf("Must has %d conditions, want 2", len(f.Must))
	}
	first := f.Must[0].GetField()
	if first.GetKey() != "entity_id" || first.GetMatch().GetKeyword() != "e1" {
		t.Errorf("first condition = %v, want entity_id=e1", first)
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		"title":      "paper",
		"page_index": int64(3),
		"score":      0.5,
		"pinned":     true,
	})

	got := convertPayloadToMap(payload)
	if got["title"] != "paper" || got["page_index"] != int64(3) || got["score"] != 0.5 || got["pinned"] != true {
		t.Errorf("convertPayloadToMap() = %v", got)
	}
}

func TestQdrantStore_EmptyBatches(t *testing.T) {
	store := &QdrantStore{}
	ctx := context.Background()

	if err := store.Upsert(ctx, "c", nil); err != nil {
		t.Errorf("Upsert() with no points error = %v", err)
	}
	if err := store.Delete(ctx, "c", nil); err != nil {
		t.Errorf("Delete() with no ids error = %v", err)
	}
	if _, err := store.Search(ctx, "c", []float32{1}, 0, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Search() with k=0 error = %v, want validation error", err)
	}
	if err := store.CreateCollection(ctx, "c", 0); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("CreateCollection() with dimension 0 error = %v, want validation error", err)
	}
}

// TestQdrantStore_Integration runs against a live Qdrant when QDRANT_INTEGRATION=1.
func TestQdrantStore_Integration(t *testing.T) {
	if os.Getenv("QDRANT_INTEGRATION") != "1" {
		t.Skip("set QDRANT_INTEGRATION=1 to run against a live Qdrant")
	}
	qdrantURL := os.Getenv("QDRANT_URL")
	if qdrantURL == "" {
		qdrantURL = "http://localhost:6333"
	}

	store, err := NewQdrantStore(qdrantURL)
	if err != nil {
		t.Fatalf("NewQdrantStore() error = %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()
	collection := "it_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		_ = store.DropCollection(context.Background(), collection)
	})

	if err := store.CreateCollection(ctx, collection, 4); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	if err := store.CreateCollection(ctx, collection, 4); err != nil {
		t.Fatalf("second CreateCollection() error = %v", err)
	}

	points := []Point{
		{ID: uuid.NewString(), Vec: []float32{1, 0, 0, 0}, Payload: map[string]any{"entity_id": "a"}},
		{ID: uuid.NewString(), Vec: []float32{0, 1, 0, 0}, Payload: map[string]any{"entity_id": "b"}},
	}
	if err := store.Upsert(ctx, collection, points); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := store.Search(ctx, collection, []float32{1, 0, 0, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Payload["entity_id"] != "a" {
		t.Errorf("Search() = %v, want entity a", results)
	}

	err = store.Upsert(ctx, collection, []Point{{ID: uuid.NewString(), Vec: []float32{1, 2, 3}}})
	if !errors.Is(err, apperr.ErrDimensionMismatch) {
		t.Errorf("Upsert() wrong dimension error = %v, want ErrDimensionMismatch", err)
	}

	if err := store.DeleteByField(ctx, collection, "entity_id", "a"); err != nil {
		t.Fatalf("DeleteByField() error = %v", err)
	}
	info, err := store.CollectionInfo(ctx, collection)
	if err != nil {
		t.Fatalf("CollectionInfo() error = %v", err)
	}
	if info.VectorSize != 4 || info.PointsCount != 1 {
		t.Errorf("CollectionInfo() = %+v, want size 4 with 1 point", info)
	}

	if _, err := store.CollectionInfo(ctx, collection+"_missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("CollectionInfo() missing error = %v, want ErrNotFound", err)
	}
}
