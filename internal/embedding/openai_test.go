package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dome/internal/apperr"
)

func TestNewOpenAIClient(t *testing.T) {
	client := NewOpenAIClient("http://localhost:8080/", "test-key", 0)
	if client.BaseURL != "http://localhost:8080" {
		t.Errorf("NewOpenAIClient() BaseURL = %v, want http://localhost:8080", client.BaseURL)
	}
	if client.client.Timeout != 30*time.Second {
		t.Errorf("NewOpenAIClient() timeout = %v, want 30s", client.client.Timeout)
	}
}

func TestOpenAIClient_GenerateEmbedding(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantLen    int
		wantErr    error
	}{
		{
			name: "successful embedding",
			text: "Hello",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/embeddings" {
					t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("Authorization = %q", got)
				}
				var req EmbeddingsRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decode request: %v", err)
				}
				if req.Model != "test-model" || len(req.Input) != 1 || req.Input[0] != "Hello" {
					t.Errorf("unexpected request %+v", req)
				}
				resp := EmbeddingsResponse{Data: []EmbeddingData{{Embedding: make([]float64, 768)}}}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantLen: 768,
		},
		{
			name:    "empty text",
			text:    "   ",
			wantErr: apperr.ErrValidation,
		},
		{
			name: "server error",
			text: "Hello",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
			wantErr: apperr.ErrProviderUnavailable,
		},
		{
			name: "no data",
			text: "Hello",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(EmbeddingsResponse{})
			},
			wantErr: apperr.ErrProviderUnavailable,
		},
		{
			name: "invalid json",
			text: "Hello",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
			wantErr: apperr.ErrProviderUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := tt.serverResp
			if handler == nil {
				handler = func(w http.ResponseWriter, r *http.Request) {
					t.Error("server should not be called")
				}
			}
			server := httptest.NewServer(http.HandlerFunc(handler))
			defer server.Close()

			client := NewOpenAIClient(server.URL, "test-key", time.Second)
			vec, err := client.GenerateEmbedding(context.Background(), tt.text, "test-model")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("GenerateEmbedding() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateEmbedding() unexpected error = %v", err)
			}
			if len(vec) != tt.wantLen {
				t.Errorf("GenerateEmbedding() len = %d, want %d", len(vec), tt.wantLen)
			}
		})
	}
}

func TestOpenAIClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewOpenAIClient(url, "", time.Second)
	if _, err := client.GenerateEmbedding(context.Background(), "hi", "m"); !errors.Is(err, apperr.ErrProviderUnavailable) {
		t.Fatalf("error = %v, want ErrProviderUnavailable", err)
	}
	if client.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true for a closed server")
	}
}

func TestOpenAIClient_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	if !NewOpenAIClient(server.URL, "", time.Second).IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false, want true")
	}
}
