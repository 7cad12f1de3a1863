package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"dome/internal/apperr"
	"dome/internal/contextutil"
	"dome/internal/storage"
)

// Settings keys read by the Resolver.
const (
	SettingProvider = "embedding.provider"
	SettingBaseURL  = "embedding.base_url"
	SettingModel    = "embedding.model"
)

// Defaults apply when a setting is unset.
type Defaults struct {
	Provider string // "openai" or "ollama"
	BaseURL  string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// Resolver picks the provider and model from settings on every call.
type Resolver struct {
	settings storage.SettingsStore
	defaults Defaults

	mu      sync.Mutex
	clients map[string]Provider
	factory func(provider, baseURL string) (Provider, error)
}

var _ Embedder = (*Resolver)(nil)

// NewResolver creates a Resolver.
func NewResolver(settings storage.SettingsStore, defaults Defaults) *Resolver {
	r := &Resolver{
		settings: settings,
		defaults: defaults,
		clients:  make(map[string]Provider),
	}
	r.factory = r.newProvider
	return r
}

func (r *Resolver) newProvider(provider, baseURL string) (Provider, error) {
	switch provider {
	case "openai":
		return NewOpenAIClient(baseURL, r.defaults.APIKey, r.defaults.Timeout), nil
	case "ollama":
		return NewOllamaClient(baseURL, r.defaults.Timeout), nil
	}
	return nil, apperr.Invalid(SettingProvider, "unknown embedding provider %q", provider)
}

func (r *Resolver) setting(ctx context.Context, key, fallback string) string {
	v, err := r.settings.GetSetting(ctx, key)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to read setting, using default", "key", key, "error", err)
		}
		return fallback
	}
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Active returns the provider and model currently configured.
func (r *Resolver) Active(ctx context.Context) (Provider, string, error) {
	provider := strings.ToLower(r.setting(ctx, SettingProvider, r.defaults.Provider))
	baseURL := r.setting(ctx, SettingBaseURL, r.defaults.BaseURL)
	model := r.setting(ctx, SettingModel, r.defaults.Model)

	key := provider + "|" + baseURL
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.clients[key]
	if !ok {
		var err error
		if p, err = r.factory(provider, baseURL); err != nil {
			return nil, "", err
		}
		r.clients[key] = p
	}
	return p, model, nil
}

// Embed embeds text with the active provider and model.
func (r *Resolver) Embed(ctx context.Context, text string) ([]float32, string, error) {
	p, model, err := r.Active(ctx)
	if err != nil {
		return nil, "", err
	}
	vec, err := p.GenerateEmbedding(ctx, text, model)
	if err != nil {
		return nil, model, fmt.Errorf("embed with %s: %w", model, err)
	}
	return vec, model, nil
}

// IsAvailable reports whether the active provider answers.
func (r *Resolver) IsAvailable(ctx context.Context) bool {
	p, _, err := r.Active(ctx)
	if err != nil {
		return false
	}
	return p.IsAvailable(ctx)
}
