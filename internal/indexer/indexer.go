// Package indexer turns resource text and interactions into vector records:
// chunk, embed with the configured model, replace the entity's records.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"dome/internal/apperr"
	"dome/internal/contextutil"
	"dome/internal/embedding"
	"dome/internal/storage"
	"dome/internal/vectorindex"
)

const defaultWorkers = 4

// Result describes what happened to one entity in one class.
type Result struct {
	Class    vectorindex.Class `json:"class"`
	EntityID string            `json:"entity_id"`
	Chunks   int               `json:"chunks"`
	Model    string            `json:"model,omitempty"`
	Skipped  bool              `json:"skipped,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

// Indexer writes embeddings for resources and interactions.
type Indexer struct {
	index        vectorindex.Index
	embedder     embedding.Embedder
	resources    storage.ResourceStore
	interactions storage.InteractionStore
	chunker      *Chunker
	workers      int
}

// New creates an Indexer.
func New(index vectorindex.Index, embedder embedding.Embedder, resources storage.ResourceStore, interactions storage.InteractionStore) *Indexer {
	return &Indexer{
		index:        index,
		embedder:     embedder,
		resources:    resources,
		interactions: interactions,
		chunker:      NewChunker(),
		workers:      defaultWorkers,
	}
}

// Chunker returns the chunker used for splitting text.
func (x *Indexer) Chunker() *Chunker {
	return x.chunker
}

// IndexResource writes the resource summary record and the chunked body
// (source class) of r. An unavailable embedding provider is not an error:
// the results come back Skipped and the resource stays searchable by keyword.
func (x *Indexer) IndexResource(ctx context.Context, r *storage.Resource) ([]Result, error) {
	var results []Result
	for _, class := range []vectorindex.Class{vectorindex.ClassResource, vectorindex.ClassSource} {
		res, _, err := x.indexResourceClass(ctx, class, r)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (x *Indexer) indexResourceClass(ctx context.Context, class vectorindex.Class, r *storage.Resource) (Result, []Chunk, error) {
	var chunks []Chunk
	switch class {
	case vectorindex.ClassResource:
		chunks = []Chunk{summary(r)}
	case vectorindex.ClassSource:
		if r.Type != storage.ResourceFolder {
			chunks = x.chunker.Split(r.Content)
		}
	default:
		return Result{}, nil, apperr.Invalid("class", "%s is not a resource class", class)
	}
	meta := vectorindex.Metadata{
		ResourceID:   r.ID,
		ProjectID:    r.ProjectID,
		Title:        r.Title,
		ResourceType: string(r.Type),
		CreatedAt:    r.CreatedAt.UnixMilli(),
		UpdatedAt:    r.UpdatedAt.UnixMilli(),
	}
	res, err := x.write(ctx, class, r.ID, meta, chunks)
	return res, chunks, err
}

// summary is the single record describing a resource as a whole.
func summary(r *storage.Resource) Chunk {
	parts := []string{r.Title}
	if r.OriginalName != "" && r.OriginalName != r.Title {
		parts = append(parts, r.OriginalName)
	}
	if body := []rune(strings.TrimSpace(r.Content)); len(body) > 0 {
		if len(body) > maxChunkRunes {
			body = body[:maxChunkRunes]
		}
		parts = append(parts, string(body))
	}
	return Chunk{Text: strings.TrimSpace(strings.Join(parts, "\n\n"))}
}

// IndexInteraction writes the annotation-class records of a note or
// annotation. Chat turns are not indexed.
func (x *Indexer) IndexInteraction(ctx context.Context, in *storage.Interaction) (Result, error) {
	res, _, err := x.indexInteraction(ctx, in)
	return res, err
}

func (x *Indexer) indexInteraction(ctx context.Context, in *storage.Interaction) (Result, []Chunk, error) {
	class := vectorindex.ClassAnnotation
	if in.Type == storage.InteractionChat {
		return Result{Class: class, EntityID: in.ID, Skipped: true, Reason: "chat turns are not indexed"}, nil, nil
	}
	parent, err := x.resources.GetResource(ctx, in.ResourceID)
	if err != nil {
		return Result{}, nil, fmt.Errorf("failed to load parent resource: %w", err)
	}
	meta := vectorindex.Metadata{
		ResourceID:   parent.ID,
		ProjectID:    parent.ProjectID,
		Title:        parent.Title,
		ResourceType: string(parent.Type),
		PageIndex:    pageIndex(in.PositionData),
		CreatedAt:    in.CreatedAt.UnixMilli(),
		UpdatedAt:    in.UpdatedAt.UnixMilli(),
	}
	chunks := x.chunker.Split(in.Content)
	res, err := x.write(ctx, class, in.ID, meta, chunks)
	return res, chunks, err
}

// pageIndex reads the page of an annotation's position, -1 when absent.
func pageIndex(pos map[string]any) int {
	switch v := pos["page"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return -1
}

// write embeds chunks and replaces every record the entity had in class.
func (x *Indexer) write(ctx context.Context, class vectorindex.Class, entityID string, meta vectorindex.Metadata, chunks []Chunk) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	res := Result{Class: class, EntityID: entityID}

	records := make([]vectorindex.Record, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		vec, model, err := x.embedder.Embed(ctx, c.embedText())
		if err != nil {
			if errors.Is(err, apperr.ErrProviderUnavailable) {
				logger.WarnContext(ctx, "embedding provider unavailable, skipping vector insert",
					"class", class, "entity_id", entityID, "model", model, "error", err)
				res.Skipped = true
				res.Reason = err.Error()
				return res, nil
			}
			return res, fmt.Errorf("failed to embed chunk %d of %s: %w", c.Index, entityID, err)
		}
		m := meta
		m.Model = model
		res.Model = model
		records = append(records, vectorindex.Record{
			EntityID:   entityID,
			ChunkIndex: c.Index,
			Text:       c.Text,
			Vector:     vec,
			Metadata:   m,
		})
	}

	if err := x.index.DeleteByOwner(ctx, class, entityID); err != nil {
		return res, fmt.Errorf("failed to remove previous records of %s: %w", entityID, err)
	}
	if len(records) > 0 {
		if err := x.index.Insert(ctx, class, records...); err != nil {
			return res, fmt.Errorf("failed to insert records of %s: %w", entityID, err)
		}
	}
	res.Chunks = len(records)

	logger.DebugContext(ctx, "indexed entity", "class", class, "entity_id", entityID, "chunks", res.Chunks)
	return res, nil
}

// ReindexClass re-embeds every entity of class from the metadata store,
// typically after a dimension change wiped the table. Failures of single
// entities are counted in the report and logged, not returned.
func (x *Indexer) ReindexClass(ctx context.Context, class vectorindex.Class) (*Report, error) {
	logger := contextutil.LoggerFromContext(ctx)
	started := time.Now()
	t := &tally{report: Report{Class: class}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.workers)

	switch class {
	case vectorindex.ClassResource, vectorindex.ClassSource:
		resources, err := x.resources.ListResources(ctx, storage.ResourceFilter{})
		if err != nil {
			return nil, err
		}
		t.report.Total = len(resources)
		for i := range resources {
			r := &resources[i]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, chunks, err := x.indexResourceClass(gctx, class, r)
				if err != nil {
					logger.ErrorContext(gctx, "failed to reindex resource", "class", class, "resource_id", r.ID, "error", err)
				}
				t.add(res, chunks, err)
				return nil
			})
		}
	case vectorindex.ClassAnnotation:
		var all []storage.Interaction
		for _, typ := range []storage.InteractionType{storage.InteractionAnnotation, storage.InteractionNote} {
			list, err := x.interactions.ListInteractionsByType(ctx, typ)
			if err != nil {
				return nil, err
			}
			all = append(all, list...)
		}
		t.report.Total = len(all)
		for i := range all {
			in := &all[i]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, chunks, err := x.indexInteraction(gctx, in)
				if err != nil {
					logger.ErrorContext(gctx, "failed to reindex interaction", "interaction_id", in.ID, "error", err)
				}
				t.add(res, chunks, err)
				return nil
			})
		}
	default:
		return nil, apperr.Invalid("class", "unknown entity class %q", class)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	report := t.finish(started)
	logger.InfoContext(ctx, "reindex completed", "class", class, "total", report.Total,
		"indexed", report.Indexed, "skipped", report.Skipped, "failed", report.Failed,
		"chunks", report.Chunks, "duration", report.Duration)
	return report, nil
}
