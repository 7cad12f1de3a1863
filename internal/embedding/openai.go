package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dome/internal/apperr"
)

// OpenAIClient calls an OpenAI-compatible /v1/embeddings endpoint
// (llama.cpp server, vLLM, LM Studio, OpenAI itself).
type OpenAIClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewOpenAIClient creates a new OpenAI-compatible embeddings client.
func NewOpenAIClient(baseURL, apiKey string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		client:  newHTTPClient(timeout),
	}
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// GenerateEmbedding returns the embedding of text.
func (c *OpenAIClient) GenerateEmbedding(ctx context.Context, text, model string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Invalid("text", "is empty")
	}

	body, err := json.Marshal(EmbeddingsRequest{Model: model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/embeddings", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap("generate_embedding", apperr.ErrProviderUnavailable, model, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.Wrap("generate_embedding", apperr.ErrProviderUnavailable, model,
			fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var embeddingsResp EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, apperr.Wrap("generate_embedding", apperr.ErrProviderUnavailable, model,
			fmt.Errorf("failed to decode response: %w", err))
	}
	if len(embeddingsResp.Data) != 1 || len(embeddingsResp.Data[0].Embedding) == 0 {
		return nil, apperr.Wrap("generate_embedding", apperr.ErrProviderUnavailable, model,
			fmt.Errorf("expected 1 embedding, got %d", len(embeddingsResp.Data)))
	}

	return toFloat32(embeddingsResp.Data[0].Embedding), nil
}

// IsAvailable checks that the server lists its models.
func (c *OpenAIClient) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/models", nil)
	if err != nil {
		return false
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
