package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"dome/internal/contextutil"
	"dome/internal/embedding"
	"dome/internal/storage"
	"dome/internal/vectorstore"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	metadata           storage.FullTextStore
	vectorStore        vectorstore.VectorStore
	embedder           embedding.Embedder
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(metadata storage.FullTextStore, vectorStore vectorstore.VectorStore, embedder embedding.Embedder) *HealthHandler {
	return &HealthHandler{
		metadata:           metadata,
		vectorStore:        vectorStore,
		embedder:           embedder,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// An unreachable embedding provider only degrades the store: writes still
// succeed and semantic search falls back to keywords. A failing metadata
// store or vector store makes it unhealthy.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// Returns the health status of the metadata store, vector store and embedding provider.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: System is healthy or degraded
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: System is unhealthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	unhealthy := false

	if h.checkMetadata(checkCtx, logger) {
		checks["metadata_store"] = "ok"
	} else {
		checks["metadata_store"] = "error"
		issues = append(issues, "metadata_store_integrity")
		unhealthy = true
	}

	if h.checkVectorStore(checkCtx, logger) {
		checks["vector_store"] = "ok"
	} else {
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
		unhealthy = true
	}

	if h.embedder.IsAvailable(checkCtx) {
		checks["embedding_provider"] = "ok"
	} else {
		checks["embedding_provider"] = "unavailable"
		issues = append(issues, "embedding_provider_unavailable")
	}

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case unhealthy:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case len(issues) > 0:
		status = "degraded"
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}

func (h *HealthHandler) checkMetadata(ctx context.Context, logger *slog.Logger) bool {
	report, err := h.metadata.CheckIntegrity(ctx)
	if err != nil {
		logger.WarnContext(ctx, "metadata integrity check failed", "error", err)
		return false
	}
	if !report.OK {
		logger.WarnContext(ctx, "metadata store reports integrity errors", "errors", report.Errors)
	}
	return report.OK
}

// checkVectorStore checks if the vector store is accessible.
func (h *HealthHandler) checkVectorStore(ctx context.Context, logger *slog.Logger) bool {
	if err := h.vectorStore.Ping(ctx); err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return false
	}
	return true
}
