package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_searcher.go -package=mocks dome/internal/handlers Searcher

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"dome/internal/apperr"
	"dome/internal/contextutil"
	"dome/internal/search"
	"dome/internal/storage"
	"dome/internal/vectorindex"
)

// Searcher runs keyword and semantic searches.
// This interface is defined from the handler's perspective (consumer-first).
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) (*search.Results, error)
	SemanticSearch(ctx context.Context, req search.SemanticRequest) (*search.SemanticResults, error)
}

// SearchHandler handles HTTP requests for unified search.
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// SearchResponse represents keyword search results.
//
// swagger:model SearchResponse
type SearchResponse struct {
	Resources    []ResourceResponse    `json:"resources"`
	Interactions []InteractionResponse `json:"interactions"`
}

// SemanticRequest represents a semantic search request body.
//
// swagger:model SemanticRequest
type SemanticRequest struct {
	Class      string    `json:"class"`
	Query      string    `json:"query,omitempty"`
	Vector     []float32 `json:"vector,omitempty"`
	Limit      int       `json:"limit,omitempty"`
	OwnerID    string    `json:"owner_id,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	ProjectID  string    `json:"project_id,omitempty"`
}

// SemanticResponse represents semantic search results.
//
// swagger:model SemanticResponse
type SemanticResponse struct {
	Matches  []vectorindex.Match `json:"matches"`
	Model    string              `json:"model,omitempty"`
	Degraded bool                `json:"degraded"`
	Reason   string              `json:"reason,omitempty"`
	Fallback *SearchResponse     `json:"fallback,omitempty"`
}

func toSearchResponse(res *search.Results) *SearchResponse {
	if res == nil {
		return nil
	}
	return &SearchResponse{
		Resources:    toResources(res.Resources),
		Interactions: toInteractions(res.Interactions),
	}
}

// Keyword handles GET /api/search.
//
// swagger:route GET /api/search search keywordSearch
//
// # Keyword search over resources and interactions
//
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/SearchResponse"
//	'400':
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *SearchHandler) Keyword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	opts := search.Options{
		ProjectID:       q.Get("project_id"),
		ResourceType:    storage.ResourceType(q.Get("type")),
		InteractionType: storage.InteractionType(q.Get("interaction_type")),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	res, err := h.searcher.Search(ctx, q.Get("q"), opts)
	if err != nil {
		handleServiceError(ctx, w, err, "Search failed")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toSearchResponse(res))
}

// Semantic handles POST /api/search/semantic.
//
// swagger:route POST /api/search/semantic search semanticSearch
//
// # Nearest-neighbour search over one entity class
//
// A degraded response (provider down, class not yet indexed at the current
// dimension) is still 200 and carries keyword results in fallback.
//
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/SemanticResponse"
//	'400':
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *SearchHandler) Semantic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SemanticRequest
	if err := decodeBody(r, &req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	class, err := vectorindex.ParseClass(strings.TrimSpace(req.Class))
	if err != nil {
		handleServiceError(ctx, w, err, "Semantic search failed")
		return
	}
	if req.Limit < 0 {
		handleServiceError(ctx, w, apperr.Invalid("limit", "must not be negative"), "Semantic search failed")
		return
	}

	res, err := h.searcher.SemanticSearch(ctx, search.SemanticRequest{
		Class:      class,
		Query:      req.Query,
		Vector:     req.Vector,
		Limit:      req.Limit,
		OwnerID:    req.OwnerID,
		ResourceID: req.ResourceID,
		ProjectID:  req.ProjectID,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Semantic search failed")
		return
	}

	matches := res.Matches
	if matches == nil {
		matches = []vectorindex.Match{}
	}
	writeJSON(ctx, w, http.StatusOK, SemanticResponse{
		Matches:  matches,
		Model:    res.Model,
		Degraded: res.Degraded,
		Reason:   res.Reason,
		Fallback: toSearchResponse(res.Fallback),
	})
}
