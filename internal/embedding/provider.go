// Package embedding talks to the embedding model providers. The active
// provider, base URL and model are read from settings before every call, so a
// change made at runtime takes effect on the next embedding.
package embedding

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks dome/internal/embedding Provider
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks dome/internal/embedding Embedder

import (
	"context"
	"net/http"
	"time"
)

// Provider generates embeddings with a given model.
type Provider interface {
	// GenerateEmbedding returns the vector for text. Failures to reach the
	// provider match apperr.ErrProviderUnavailable.
	GenerateEmbedding(ctx context.Context, text, model string) ([]float32, error)
	// IsAvailable reports whether the provider answers.
	IsAvailable(ctx context.Context) bool
}

// Embedder embeds text with whatever model is currently configured and
// reports which model that was.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, string, error)
	IsAvailable(ctx context.Context) bool
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
