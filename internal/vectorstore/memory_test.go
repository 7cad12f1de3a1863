package vectorstore

import (
	"context"
	"errors"
	"testing"

	"dome/internal/apperr"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.CollectionInfo(ctx, "c"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("CollectionInfo() missing error = %v, want ErrNotFound", err)
	}
	if err := s.Upsert(ctx, "c", []Point{{ID: "x", Vec: []float32{1}}}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Upsert() missing collection error = %v, want ErrNotFound", err)
	}

	if err := s.CreateCollection(ctx, "c", 2); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	if err := s.CreateCollection(ctx, "c", 3); err != nil {
		t.Fatalf("second CreateCollection() error = %v", err)
	}

	points := []Point{
		{ID: "a", Vec: []float32{1, 0}, Payload: map[string]any{"entity_id": "ea"}},
		{ID: "b", Vec: []float32{0, 1}, Payload: map[string]any{"entity_id": "eb"}},
		{ID: "c", Vec: []float32{1, 1}, Payload: map[string]any{"entity_id": "eb"}},
	}
	if err := s.Upsert(ctx, "c", points); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Upsert(ctx, "c", []Point{{ID: "d", Vec: []float32{1, 2, 3}}}); !errors.Is(err, apperr.ErrDimensionMismatch) {
		t.Errorf("Upsert() wrong dimension error = %v, want ErrDimensionMismatch", err)
	}

	results, err := s.Search(ctx, "c", []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 || results[0].PointID != "a" || results[1].PointID != "c" {
		t.Errorf("Search() = %v, want a then c", results)
	}

	results, err = s.Search(ctx, "c", []float32{1, 0}, 10, map[string]string{"entity_id": "eb"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Search() filtered = %d results, want 2", len(results))
	}

	if err := s.DeleteByField(ctx, "c", "entity_id", "eb"); err != nil {
		t.Fatalf("DeleteByField() error = %v", err)
	}
	info, err := s.CollectionInfo(ctx, "c")
	if err != nil {
		t.Fatalf("CollectionInfo() error = %v", err)
	}
	if info.VectorSize != 2 || info.PointsCount != 1 {
		t.Errorf("CollectionInfo() = %+v, want size 2 with 1 point", info)
	}

	if err := s.DropCollection(ctx, "c"); err != nil {
		t.Fatalf("DropCollection() error = %v", err)
	}
	if ok, _ := s.CollectionExists(ctx, "c"); ok {
		t.Error("collection exists after drop")
	}
	if err := s.DropCollection(ctx, "c"); err != nil {
		t.Errorf("DropCollection() missing error = %v", err)
	}
}
