package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dome/internal/apperr"
)

// OllamaClient calls Ollama's /api/embed endpoint.
type OllamaClient struct {
	host       string
	httpClient *http.Client
}

// NewOllamaClient creates a new Ollama embeddings client.
func NewOllamaClient(host string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		host:       strings.TrimRight(host, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// GenerateEmbedding returns the embedding vector for the given text.
func (c *OllamaClient) GenerateEmbedding(ctx context.Context, text, model string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Invalid("text", "is empty")
	}

	body, err := json.Marshal(embedRequest{Model: model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap("generate_embedding", apperr.ErrProviderUnavailable, model, fmt.Errorf("ollama embed request: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Wrap("generate_embedding", apperr.ErrProviderUnavailable, model, fmt.Errorf("ollama embed: status %d", resp.StatusCode))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperr.Wrap("generate_embedding", apperr.ErrProviderUnavailable, model, fmt.Errorf("decode embed response: %w", err))
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, apperr.Wrap("generate_embedding", apperr.ErrProviderUnavailable, model, fmt.Errorf("ollama returned empty embeddings"))
	}

	return toFloat32(result.Embeddings[0]), nil
}

// IsAvailable checks if Ollama is reachable.
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
