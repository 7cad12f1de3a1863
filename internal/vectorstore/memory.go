package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"dome/internal/apperr"
)

// MemoryStore is an in-process VectorStore with the same error semantics as
// QdrantStore. Nothing is persisted.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	dim    int
	points map[string]Point
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (s *MemoryStore) get(op, collection string) (*memCollection, error) {
	c, ok := s.collections[collection]
	if !ok {
		return nil, apperr.Wrap(op, apperr.ErrNotFound, collection, fmt.Errorf("collection %s doesn't exist", collection))
	}
	return c, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok, nil
}

func (s *MemoryStore) CreateCollection(ctx context.Context, collection string, dimension int) error {
	if dimension <= 0 {
		return apperr.Invalid("dimension", "must be positive, got %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection]; !ok {
		s.collections[collection] = &memCollection{dim: dimension, points: make(map[string]Point)}
	}
	return nil
}

func (s *MemoryStore) DropCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

func (s *MemoryStore) CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.get("collection_info", collection)
	if err != nil {
		return nil, err
	}
	return &CollectionInfo{VectorSize: c.dim, PointsCount: len(c.points), Status: "green"}, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get("upsert", collection)
	if err != nil {
		return err
	}
	for _, p := range points {
		if len(p.Vec) != c.dim {
			return apperr.Wrap("upsert", apperr.ErrDimensionMismatch, collection,
				fmt.Errorf("expected dim: %d, got %d", c.dim, len(p.Vec)))
		}
	}
	for _, p := range points {
		vec := make([]float32, len(p.Vec))
		copy(vec, p.Vec)
		payload := make(map[string]any, len(p.Payload))
		for k, v := range p.Payload {
			payload[k] = v
		}
		c.points[p.ID] = Point{ID: p.ID, Vec: vec, Payload: payload}
	}
	return nil
}

func matches(payload map[string]any, filter map[string]string) bool {
	for k, want := range filter {
		got, ok := payload[k].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func (s *MemoryStore) Search(ctx context.Context, collection string, query []float32, k int, filter map[string]string) ([]SearchResult, error) {
	if k <= 0 {
		return nil, apperr.Invalid("limit", "must be greater than 0")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.get("search", collection)
	if err != nil {
		return nil, err
	}
	if len(query) != c.dim {
		return nil, apperr.Wrap("search", apperr.ErrDimensionMismatch, collection,
			fmt.Errorf("expected dim: %d, got %d", c.dim, len(query)))
	}

	var results []SearchResult
	for _, p := range c.points {
		if !matches(p.Payload, filter) {
			continue
		}
		results = append(results, SearchResult{PointID: p.ID, Score: cosine(query, p.Vec), Payload: p.Payload})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PointID < results[j].PointID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get("delete", collection)
	if err != nil {
		return err
	}
	for _, id := range ids {
		delete(c.points, id)
	}
	return nil
}

func (s *MemoryStore) DeleteByField(ctx context.Context, collection, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get("delete_by_field", collection)
	if err != nil {
		return err
	}
	for id, p := range c.points {
		if matches(p.Payload, map[string]string{field: value}) {
			delete(c.points, id)
		}
	}
	return nil
}

// Vectors returns a copy of every vector stored in collection.
func (s *MemoryStore) Vectors(collection string) [][]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil
	}
	out := make([][]float32, 0, len(c.points))
	for _, p := range c.points {
		out = append(out, append([]float32(nil), p.Vec...))
	}
	return out
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
