package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"dome/internal/apperr"
	"dome/internal/embedding/mocks"
	storagemocks "dome/internal/storage/mocks"
)

type fakeSettings struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *fakeSettings) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return "", apperr.NotFound("get_setting", key)
	}
	return v, nil
}

func (s *fakeSettings) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *fakeSettings) ListSettings(ctx context.Context) (map[string]string, error) {
	return nil, nil
}

func TestResolver_FollowsSettings(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.URL.Path {
		case "/v1/embeddings":
			var req EmbeddingsRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			seen = append(seen, "openai:"+req.Model)
			_ = json.NewEncoder(w).Encode(EmbeddingsResponse{Data: []EmbeddingData{{Embedding: []float64{1, 0}}}})
		case "/api/embed":
			var req embedRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			seen = append(seen, "ollama:"+req.Model)
			_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{1, 0, 0}}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	settings := &fakeSettings{m: map[string]string{}}
	r := NewResolver(settings, Defaults{Provider: "openai", BaseURL: server.URL, Model: "default-model", Timeout: time.Second})
	ctx := context.Background()

	vec, model, err := r.Embed(ctx, "first")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if model != "default-model" || len(vec) != 2 {
		t.Errorf("Embed() = %d dims, model %q", len(vec), model)
	}

	_ = settings.SetSetting(ctx, SettingProvider, "ollama")
	_ = settings.SetSetting(ctx, SettingModel, "mxbai-embed-large")

	vec, model, err = r.Embed(ctx, "second")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if model != "mxbai-embed-large" || len(vec) != 3 {
		t.Errorf("Embed() = %d dims, model %q", len(vec), model)
	}

	want := []string{"openai:default-model", "ollama:mxbai-embed-large"}
	if len(seen) != len(want) {
		t.Fatalf("requests = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("request %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestResolver_UnknownProvider(t *testing.T) {
	settings := &fakeSettings{m: map[string]string{SettingProvider: "carrier-pigeon"}}
	r := NewResolver(settings, Defaults{Provider: "openai", Model: "m"})

	if _, _, err := r.Embed(context.Background(), "x"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Embed() error = %v, want ErrValidation", err)
	}
	if r.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true for unknown provider")
	}
}

func TestResolver_SettingsErrorUsesDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	settings := storagemocks.NewMockSettingsStore(ctrl)
	settings.EXPECT().GetSetting(gomock.Any(), gomock.Any()).Return("", errors.New("database is locked")).Times(3)

	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().GenerateEmbedding(gomock.Any(), "hello", "default-model").Return([]float32{0.5}, nil)

	r := NewResolver(settings, Defaults{Provider: "openai", BaseURL: "http://x", Model: "default-model"})
	r.factory = func(p, baseURL string) (Provider, error) {
		if p != "openai" || baseURL != "http://x" {
			t.Errorf("factory(%q, %q)", p, baseURL)
		}
		return provider, nil
	}

	vec, model, err := r.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if model != "default-model" || len(vec) != 1 {
		t.Errorf("Embed() = %v, %q", vec, model)
	}
}

func TestResolver_ProviderFailureIsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().GenerateEmbedding(gomock.Any(), "hello", "m").
		Return(nil, apperr.Wrap("generate_embedding", apperr.ErrProviderUnavailable, "m", errors.New("connection refused")))

	r := NewResolver(&fakeSettings{m: map[string]string{}}, Defaults{Provider: "ollama", Model: "m"})
	r.factory = func(string, string) (Provider, error) { return provider, nil }

	_, model, err := r.Embed(context.Background(), "hello")
	if !errors.Is(err, apperr.ErrProviderUnavailable) {
		t.Fatalf("Embed() error = %v, want ErrProviderUnavailable", err)
	}
	if model != "m" {
		t.Errorf("model = %q, want m", model)
	}
}
