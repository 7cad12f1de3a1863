package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"dome/internal/apperr"
	"dome/internal/blob"
	"dome/internal/config"
	"dome/internal/embedding"
	"dome/internal/indexer"
	"dome/internal/search"
	"dome/internal/service"
	"dome/internal/storage"
	"dome/internal/vectorindex"
	"dome/internal/vectorstore"
)

// memoryVectorStore selects the in-process vector store instead of Qdrant.
const memoryVectorStore = "memory"

// app is every component wired together. Each command builds one.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	store    *storage.Store
	blobs    *blob.Store
	vectors  vectorstore.VectorStore
	index    *vectorindex.Manager
	embedder *embedding.Resolver
	indexer  *indexer.Indexer
	search   *search.Service
	library  service.Library
	sweeper  *service.Sweeper

	closers []io.Closer
}

// setupLogging configures structured logging with configurable level and format.
func setupLogging(cfg *config.Config, w io.Writer) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db)

	if err := storage.Migrate(db); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	store, err := storage.NewStore(ctx, db)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to prepare metadata store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store)
	slog.Info("Database initialized", "path", cfg.DBPath, "fts", store.Dialect())

	blobs, err := blob.New(cfg.BlobRoot, cfg.AvatarPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	a.blobs = blobs

	if cfg.QdrantURL == memoryVectorStore {
		a.vectors = vectorstore.NewMemoryStore()
		slog.Warn("Using in-memory vector store, vectors are lost on exit")
	} else {
		qs, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		a.vectors = qs
		a.closers = append(a.closers, qs)
	}

	a.index = vectorindex.NewManager(a.vectors, vectorindex.NewRegistry(store))
	a.embedder = embedding.NewResolver(store, embedding.Defaults{
		Provider: cfg.EmbeddingProvider,
		BaseURL:  cfg.EmbeddingBaseURL,
		Model:    cfg.EmbeddingModel,
		APIKey:   cfg.EmbeddingAPIKey,
		Timeout:  cfg.EmbeddingTimeout,
	})
	a.indexer = indexer.New(a.index, a.embedder, store, store)
	a.search = search.NewService(store, store, a.index, a.embedder)
	a.library = service.NewLibrary(service.Stores{
		Resources:    store,
		Interactions: store,
		Links:        store,
		Settings:     store,
	}, blobs, a.index, a.indexer)
	a.sweeper = service.NewSweeper(store, store, blobs, cfg.SweepDelay, cfg.SweepInterval)

	return a, nil
}

// ensureTables declares empty vector tables at the configured dimension.
// Tables already holding another dimension are left for the first insert to
// migrate.
func (a *app) ensureTables(ctx context.Context) {
	for _, class := range vectorindex.Classes {
		err := a.index.EnsureTable(ctx, class, a.cfg.EmbeddingDimension)
		switch {
		case err == nil:
		case errors.Is(err, apperr.ErrDimensionMismatch):
			slog.Warn("Vector table dimension differs from configuration", "class", class, "error", err)
		default:
			slog.Error("Failed to prepare vector table", "class", class, "error", err)
		}
	}
}

// Close releases the database and vector store connections.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Warn("Failed to close resource", "error", err)
		}
	}
	a.closers = nil
}

// loadApp reads configuration, sets up logging to stderr and builds the app.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg, os.Stderr)
	return newApp(ctx, cfg)
}
