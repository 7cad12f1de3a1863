package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_reindexer.go -package=mocks dome/internal/handlers Reindexer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_sweeper.go -package=mocks dome/internal/handlers Sweeper

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"dome/internal/contextutil"
	"dome/internal/indexer"
	"dome/internal/service"
	"dome/internal/storage"
	"dome/internal/vectorindex"
)

// Reindexer re-embeds every entity of a class.
type Reindexer interface {
	ReindexClass(ctx context.Context, class vectorindex.Class) (*indexer.Report, error)
}

// Sweeper runs one orphan sweep.
type Sweeper interface {
	RunOnce(ctx context.Context) (*service.SweepReport, error)
}

// AdminHandler handles maintenance requests: integrity checks, repair,
// orphan sweeps, vector table stats and reindexing.
type AdminHandler struct {
	metadata  storage.FullTextStore
	index     vectorindex.Index
	reindexer Reindexer
	sweeper   Sweeper

	mu        sync.Mutex
	reindexes map[vectorindex.Class]bool
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(metadata storage.FullTextStore, index vectorindex.Index, reindexer Reindexer, sweeper Sweeper) *AdminHandler {
	return &AdminHandler{
		metadata:  metadata,
		index:     index,
		reindexer: reindexer,
		sweeper:   sweeper,
		reindexes: make(map[vectorindex.Class]bool),
	}
}

// RepairResponse represents the result of a repair request.
//
// swagger:model RepairResponse
type RepairResponse struct {
	Deep   bool                     `json:"deep"`
	OK     bool                     `json:"ok"`
	Report *storage.IntegrityReport `json:"report"`
}

// IndexResponse represents the response from the reindex endpoint when it runs in the background.
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Integrity handles GET /api/admin/integrity.
func (h *AdminHandler) Integrity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.metadata.CheckIntegrity(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Integrity check failed")
		return
	}
	writeJSON(ctx, w, http.StatusOK, report)
}

// Repair handles POST /api/admin/repair. With deep=true the full-text index
// is dropped and rebuilt from the base tables; otherwise failing tables are
// rebuilt in place.
func (h *AdminHandler) Repair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	deep := r.URL.Query().Get("deep") == "true"

	if deep {
		logger.InfoContext(ctx, "deep full-text rebuild triggered via API")
		if err := h.metadata.RebuildFullTextIndex(ctx); err != nil {
			handleServiceError(ctx, w, err, "Full-text rebuild failed")
			return
		}
	} else {
		logger.InfoContext(ctx, "full-text repair triggered via API")
		if _, err := h.metadata.RepairFullTextIndex(ctx); err != nil {
			handleServiceError(ctx, w, err, "Full-text repair failed")
			return
		}
	}

	report, err := h.metadata.CheckIntegrity(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Integrity check failed")
		return
	}
	writeJSON(ctx, w, http.StatusOK, RepairResponse{Deep: deep, OK: report.OK, Report: report})
}

// Sweep handles POST /api/admin/sweep.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.sweeper.RunOnce(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Sweep failed")
		return
	}
	writeJSON(ctx, w, http.StatusOK, report)
}

// Vectors handles GET /api/admin/vectors.
func (h *AdminHandler) Vectors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out := make([]*vectorindex.Stats, 0, len(vectorindex.Classes))
	for _, class := range vectorindex.Classes {
		stats, err := h.index.Stats(ctx, class)
		if err != nil {
			handleServiceError(ctx, w, err, "Failed to read vector stats")
			return
		}
		out = append(out, stats)
	}
	writeJSON(ctx, w, http.StatusOK, out)
}

// Reindex handles POST /api/admin/reindex/{class}. By default the pass runs
// in the background and the request returns 202; with wait=true it runs
// inline and returns the report. One pass per class runs at a time.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	class, err := vectorindex.ParseClass(chi.URLParam(r, "class"))
	if err != nil {
		handleServiceError(ctx, w, err, "Reindex failed")
		return
	}
	if !h.claim(class) {
		writeError(w, http.StatusConflict, "Reindex already running for "+string(class))
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		defer h.release(class)
		report, err := h.reindexer.ReindexClass(ctx, class)
		if err != nil {
			handleServiceError(ctx, w, err, "Reindex failed")
			return
		}
		writeJSON(ctx, w, http.StatusOK, report)
		return
	}

	logger.InfoContext(ctx, "reindex triggered via API", "class", class)

	// Keep the request's logger but not its cancellation: the pass outlives the response.
	bg := context.WithoutCancel(ctx)
	go func() {
		defer h.release(class)
		report, err := h.reindexer.ReindexClass(bg, class)
		if err != nil {
			logger.ErrorContext(bg, "reindex failed", "class", class, "error", err)
			return
		}
		logger.InfoContext(bg, "reindex completed",
			"class", class, "indexed", report.Indexed, "skipped", report.Skipped, "failed", report.Failed)
	}()

	writeJSON(ctx, w, http.StatusAccepted, IndexResponse{
		Message: "Reindexing " + string(class) + " started. Check server logs for progress.",
		Status:  "accepted",
	})
}

func (h *AdminHandler) claim(class vectorindex.Class) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reindexes[class] {
		return false
	}
	h.reindexes[class] = true
	return true
}

func (h *AdminHandler) release(class vectorindex.Class) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.reindexes, class)
}
