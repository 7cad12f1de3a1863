package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dome/internal/embedding"
	"dome/internal/handlers"
	"dome/internal/service"
	"dome/internal/storage"
	"dome/internal/vectorindex"
	"dome/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Library     service.Library
	Searcher    handlers.Searcher
	Metadata    storage.FullTextStore
	VectorStore vectorstore.VectorStore
	Index       vectorindex.Index
	Embedder    embedding.Embedder
	Reindexer   handlers.Reindexer
	Sweeper     handlers.Sweeper
	Blobs       handlers.BlobOpener
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	// Add CORS middleware
	r.Use(CORS)

	healthHandler := handlers.NewHealthHandler(deps.Metadata, deps.VectorStore, deps.Embedder)
	searchHandler := handlers.NewSearchHandler(deps.Searcher)
	resourceHandler := handlers.NewResourceHandler(deps.Library)
	adminHandler := handlers.NewAdminHandler(deps.Metadata, deps.Index, deps.Reindexer, deps.Sweeper)
	viewHandler := handlers.NewViewHandler(deps.Library, deps.Blobs)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Get("/search", searchHandler.Keyword)
		r.Post("/search/semantic", searchHandler.Semantic)

		r.Route("/resources", func(r chi.Router) {
			r.Get("/", resourceHandler.List)
			r.Post("/import", resourceHandler.Import)
			r.Post("/notes", resourceHandler.CreateNote)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", resourceHandler.Get)
				r.Patch("/", resourceHandler.Patch)
				r.Delete("/", resourceHandler.Delete)
				r.Get("/interactions", resourceHandler.ListInteractions)
				r.Post("/interactions", resourceHandler.CreateInteraction)
				r.Get("/links", resourceHandler.ListLinks)
			})
		})

		r.Patch("/interactions/{id}", resourceHandler.UpdateInteraction)
		r.Delete("/interactions/{id}", resourceHandler.DeleteInteraction)

		r.Post("/links", resourceHandler.CreateLink)
		r.Delete("/links/{id}", resourceHandler.DeleteLink)

		r.Get("/settings", resourceHandler.ListSettings)
		r.Get("/settings/{key}", resourceHandler.GetSetting)
		r.Put("/settings/{key}", resourceHandler.PutSetting)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/integrity", adminHandler.Integrity)
			r.Post("/repair", adminHandler.Repair)
			r.Post("/sweep", adminHandler.Sweep)
			r.Get("/vectors", adminHandler.Vectors)
			r.Post("/reindex/{class}", adminHandler.Reindex)
		})
	})

	// Rendered resources for browsers
	r.Method(http.MethodGet, "/resources/{id}/view", viewHandler)

	return r
}
