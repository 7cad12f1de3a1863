package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks dome/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with its payload. Payload values must be
// scalars (string, bool, integer or float).
type Point struct {
	ID      string
	Vec     []float32
	Payload map[string]any
}

// SearchResult represents a search result from vector search. Score is the
// cosine similarity, higher is closer.
type SearchResult struct {
	PointID string
	Score   float32
	Payload map[string]any
}

// CollectionInfo contains information about a collection.
type CollectionInfo struct {
	VectorSize  int
	PointsCount int
	Status      string
}

// VectorStore defines the interface for vector storage operations.
//
// Errors are classified: a missing collection matches apperr.ErrNotFound and
// a vector of the wrong length matches apperr.ErrDimensionMismatch.
type VectorStore interface {
	// Ping checks that the engine is reachable.
	Ping(ctx context.Context) error

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// CreateCollection creates a cosine collection of the given dimension.
	// Creating a collection that already exists is not an error.
	CreateCollection(ctx context.Context, collection string, dimension int) error

	// DropCollection deletes a collection and all its points. Dropping a
	// missing collection is not an error.
	DropCollection(ctx context.Context, collection string) error

	// CollectionInfo returns the declared dimension and point count.
	CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search. Every filter entry is an exact
	// match on a payload field.
	Search(ctx context.Context, collection string, query []float32, k int, filter map[string]string) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// DeleteByField removes every point whose payload field equals value.
	DeleteByField(ctx context.Context, collection, field, value string) error
}
