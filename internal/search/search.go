// Package search is the read side of the store: keyword search over the
// metadata store with parent backfill, and semantic search over a vector
// class. The two result sets are never blended into one ranking.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"dome/internal/apperr"
	"dome/internal/contextutil"
	"dome/internal/embedding"
	"dome/internal/storage"
	"dome/internal/vectorindex"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// Options narrows a keyword search.
type Options struct {
	Limit           int
	ProjectID       string
	ResourceType    storage.ResourceType
	InteractionType storage.InteractionType
}

// Results holds keyword matches. Resources also carries the parents of
// matching interactions that did not match on their own.
type Results struct {
	Resources    []storage.Resource
	Interactions []storage.Interaction
}

// Service runs keyword and semantic searches.
type Service struct {
	fulltext  storage.FullTextStore
	resources storage.ResourceStore
	index     vectorindex.Index
	embedder  embedding.Embedder
}

// NewService creates a search Service.
func NewService(fulltext storage.FullTextStore, resources storage.ResourceStore, index vectorindex.Index, embedder embedding.Embedder) *Service {
	return &Service{
		fulltext:  fulltext,
		resources: resources,
		index:     index,
		embedder:  embedder,
	}
}

func clampLimit(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// Search runs the full-text query against resources and interactions, then
// appends every parent resource of a matching interaction that is not
// already in the resource list.
func (s *Service) Search(ctx context.Context, query string, opts Options) (*Results, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.Invalid("query", "is empty")
	}
	limit := clampLimit(opts.Limit)

	var resources []storage.Resource
	var interactions []storage.Interaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resources, err = s.fulltext.SearchResources(gctx, query, storage.SearchOptions{
			Limit:     limit,
			ProjectID: opts.ProjectID,
			Type:      string(opts.ResourceType),
		})
		return err
	})
	g.Go(func() error {
		var err error
		interactions, err = s.fulltext.SearchInteractions(gctx, query, storage.SearchOptions{
			Limit:     limit,
			ProjectID: opts.ProjectID,
			Type:      string(opts.InteractionType),
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	merged, err := s.backfillParents(ctx, resources, interactions)
	if err != nil {
		return nil, err
	}
	return &Results{Resources: merged, Interactions: interactions}, nil
}

func (s *Service) backfillParents(ctx context.Context, resources []storage.Resource, interactions []storage.Interaction) ([]storage.Resource, error) {
	seen := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		seen[r.ID] = struct{}{}
	}
	for _, in := range interactions {
		if _, ok := seen[in.ResourceID]; ok {
			continue
		}
		seen[in.ResourceID] = struct{}{}

		parent, err := s.resources.GetResource(ctx, in.ResourceID)
		if errors.Is(err, apperr.ErrNotFound) {
			contextutil.LoggerFromContext(ctx).DebugContext(ctx, "interaction matched but its resource is gone",
				"interaction_id", in.ID, "resource_id", in.ResourceID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load parent resource: %w", err)
		}
		resources = append(resources, *parent)
	}
	return resources, nil
}

// SemanticRequest is a nearest-neighbour query over one class. Exactly one
// of Query and Vector is set.
type SemanticRequest struct {
	Class      vectorindex.Class
	Query      string
	Vector     []float32
	Limit      int
	OwnerID    string // restrict to records of one entity
	ResourceID string // restrict to records belonging to one resource
	ProjectID  string
}

// SemanticResults holds vector matches. When the provider is unavailable or
// the class is not indexed at the query's dimension, Degraded is set and,
// for text queries, Fallback carries keyword results instead.
type SemanticResults struct {
	Matches  []vectorindex.Match
	Model    string
	Degraded bool
	Reason   string
	Fallback *Results
}

// SemanticSearch embeds the query (unless a vector is given) and searches
// the class table.
func (s *Service) SemanticSearch(ctx context.Context, req SemanticRequest) (*SemanticResults, error) {
	if _, err := vectorindex.ParseClass(string(req.Class)); err != nil {
		return nil, err
	}
	hasText := strings.TrimSpace(req.Query) != ""
	switch {
	case hasText && len(req.Vector) > 0:
		return nil, apperr.Invalid("query", "give either query text or a vector, not both")
	case !hasText && len(req.Vector) == 0:
		return nil, apperr.Invalid("query", "query text or vector is required")
	}
	limit := clampLimit(req.Limit)

	filter := map[string]string{}
	if req.OwnerID != "" {
		filter["entity_id"] = req.OwnerID
	}
	if req.ResourceID != "" {
		filter["resource_id"] = req.ResourceID
	}
	if req.ProjectID != "" {
		filter["project_id"] = req.ProjectID
	}

	out := &SemanticResults{}
	vec := req.Vector
	if hasText {
		var err error
		vec, out.Model, err = s.embedder.Embed(ctx, req.Query)
		if errors.Is(err, apperr.ErrProviderUnavailable) {
			return s.degrade(ctx, out, req, limit, "embedding provider unavailable", err)
		}
		if err != nil {
			return nil, err
		}
	}

	matches, err := s.index.Search(ctx, req.Class, vec, limit, filter)
	if errors.Is(err, apperr.ErrDimensionMismatch) {
		return s.degrade(ctx, out, req, limit, "not yet indexed with the current embedding model", err)
	}
	if err != nil {
		return nil, err
	}
	if hasText {
		matches = rerank(req.Query, matches)
	}
	out.Matches = matches
	return out, nil
}

func (s *Service) degrade(ctx context.Context, out *SemanticResults, req SemanticRequest, limit int, reason string, cause error) (*SemanticResults, error) {
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "semantic search degraded",
		"class", req.Class, "reason", reason, "error", cause)
	out.Degraded = true
	out.Reason = reason
	if strings.TrimSpace(req.Query) == "" {
		return out, nil
	}
	fallback, err := s.Search(ctx, req.Query, Options{Limit: limit, ProjectID: req.ProjectID})
	if err != nil {
		return nil, err
	}
	out.Fallback = fallback
	return out, nil
}
