package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_library.go -package=mocks dome/internal/service Library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"dome/internal/apperr"
	"dome/internal/blob"
	"dome/internal/contextutil"
	"dome/internal/indexer"
	"dome/internal/storage"
	"dome/internal/vectorindex"
)

// maxInlineText bounds how much of a text file is copied into the resource
// row for full-text and vector indexing.
const maxInlineText = 1 << 20

// maxInlineThumbnail is the largest image stored directly as its own thumbnail.
const maxInlineThumbnail = 256 << 10

// Indexer writes vectors for resources and interactions.
// This interface is defined from the service layer's perspective (consumer-first).
type Indexer interface {
	IndexResource(ctx context.Context, r *storage.Resource) ([]indexer.Result, error)
	IndexInteraction(ctx context.Context, in *storage.Interaction) (indexer.Result, error)
}

// ImportRequest asks for a file to be imported as a resource.
type ImportRequest struct {
	Path      string
	Type      storage.ResourceType // inferred from the content when empty
	Title     string               // derived from the file name when empty
	ProjectID string
	FolderID  string
}

// ImportResult is the resource an import produced or found.
type ImportResult struct {
	Resource  *storage.Resource
	Duplicate bool
}

// NoteRequest creates a note resource.
type NoteRequest struct {
	Title     string
	Content   string
	ProjectID string
	FolderID  string
}

// ResourcePatch lists the fields to change; nil fields are left alone.
type ResourcePatch struct {
	Title     *string
	Content   *string
	ProjectID *string
	FolderID  *string
	Thumbnail *string
	Metadata  map[string]any
}

// DeleteReport describes a cascade delete.
type DeleteReport struct {
	ResourceID   string   `json:"resource_id"`
	Interactions int      `json:"interactions"`
	BlobDeleted  bool     `json:"blob_deleted"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Library is the write side of the store: resources, their interactions and
// links, and settings.
type Library interface {
	ImportFile(ctx context.Context, req ImportRequest) (*ImportResult, error)
	ImportFolder(ctx context.Context, req FolderRequest) (*FolderImport, error)
	CreateNote(ctx context.Context, req NoteRequest) (*storage.Resource, error)
	GetResource(ctx context.Context, id string) (*storage.Resource, error)
	ListResources(ctx context.Context, filter storage.ResourceFilter) ([]storage.Resource, error)
	UpdateResource(ctx context.Context, id string, patch ResourcePatch) (*storage.Resource, error)
	DeleteResource(ctx context.Context, id string) (*DeleteReport, error)

	AddInteraction(ctx context.Context, in *storage.Interaction) error
	ListInteractions(ctx context.Context, resourceID string, typ storage.InteractionType) ([]storage.Interaction, error)
	UpdateInteraction(ctx context.Context, id, content string, position map[string]any) (*storage.Interaction, error)
	DeleteInteraction(ctx context.Context, id string) error

	CreateLink(ctx context.Context, l *storage.Link) error
	ListLinks(ctx context.Context, resourceID string) (from, to []storage.Link, err error)
	DeleteLink(ctx context.Context, id string) error

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) (map[string]string, error)
}

// Stores groups the metadata store interfaces the library needs. A
// *storage.Store satisfies all of them.
type Stores struct {
	Resources    storage.ResourceStore
	Interactions storage.InteractionStore
	Links        storage.LinkStore
	Settings     storage.SettingsStore
}

// library implements Library.
type library struct {
	resources    storage.ResourceStore
	interactions storage.InteractionStore
	links        storage.LinkStore
	settings     storage.SettingsStore
	blobs        *blob.Store
	index        vectorindex.Index
	indexer      Indexer
	chunker      *indexer.Chunker
}

// NewLibrary creates a Library.
func NewLibrary(stores Stores, blobs *blob.Store, index vectorindex.Index, idx Indexer) Library {
	return &library{
		resources:    stores.Resources,
		interactions: stores.Interactions,
		links:        stores.Links,
		settings:     stores.Settings,
		blobs:        blobs,
		index:        index,
		indexer:      idx,
		chunker:      indexer.NewChunker(),
	}
}

// ImportFile copies the file into the blob store and creates a resource for
// it. If a resource with the same content hash exists it is returned with
// Duplicate set and nothing new is created.
func (l *library) ImportFile(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Path) == "" {
		return nil, apperr.Invalid("path", "is required")
	}
	if req.Type != "" && !req.Type.Valid() {
		return nil, apperr.Invalid("type", "unknown resource type %q", req.Type)
	}
	if req.Type == storage.ResourceFolder {
		return nil, apperr.Invalid("type", "folders are imported with ImportFolder")
	}

	kind := string(req.Type)
	if kind == "" {
		mt, err := mimetype.DetectFile(req.Path)
		if err != nil {
			// Let the blob store report the missing or unreadable file.
			kind = "document"
		} else {
			kind = blob.KindForMIME(mt.String())
		}
	}

	imported, err := l.blobs.Import(ctx, req.Path, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to import file: %w", err)
	}

	if existing, err := l.resources.GetResourceByHash(ctx, imported.Hash); err == nil {
		l.dropDuplicateBlob(ctx, imported, existing)
		return &ImportResult{Resource: existing, Duplicate: true}, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	r := &storage.Resource{
		ProjectID:    req.ProjectID,
		Type:         storage.ResourceType(kind),
		Title:        req.Title,
		ContentHash:  imported.Hash,
		InternalPath: imported.InternalPath,
		MimeType:     imported.MimeType,
		Size:         imported.Size,
		OriginalName: imported.OriginalName,
		FolderID:     req.FolderID,
	}
	if textual(r.Type) && strings.HasPrefix(imported.MimeType, "text/") {
		if r.Content, err = l.readText(imported.InternalPath); err != nil {
			return nil, err
		}
	}
	if r.Type == storage.ResourceImage && imported.Size <= maxInlineThumbnail {
		if r.Thumbnail, err = l.blobs.ReadAsInlineData(imported.InternalPath); err != nil {
			logger.WarnContext(ctx, "failed to inline image thumbnail", "path", imported.InternalPath, "error", err)
			r.Thumbnail = ""
		}
	}
	if r.Title == "" {
		r.Title = l.chunker.Title(r.Content)
	}
	if r.Title == "" {
		r.Title = indexer.TitleFromFilename(imported.OriginalName)
	}

	if err := l.resources.CreateResource(ctx, r); err != nil {
		if !errors.Is(err, apperr.ErrDuplicate) {
			return nil, err
		}
		// Lost a race with a concurrent import of the same bytes.
		existing, gerr := l.resources.GetResourceByHash(ctx, imported.Hash)
		if gerr != nil {
			return nil, fmt.Errorf("failed to load existing resource: %w", gerr)
		}
		l.dropDuplicateBlob(ctx, imported, existing)
		return &ImportResult{Resource: existing, Duplicate: true}, nil
	}

	logger.InfoContext(ctx, "resource imported", "resource_id", r.ID, "type", r.Type, "path", r.InternalPath)
	l.indexResource(ctx, r)
	return &ImportResult{Resource: r}, nil
}

// dropDuplicateBlob removes the blob just written for a duplicate import when
// it landed under a different name than the existing resource's blob.
func (l *library) dropDuplicateBlob(ctx context.Context, imported *blob.ImportResult, existing *storage.Resource) {
	if imported.InternalPath == existing.InternalPath {
		return
	}
	if err := l.blobs.Delete(imported.InternalPath); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to remove duplicate blob",
			"path", imported.InternalPath, "error", err)
	}
}

// textual reports whether resources of type t keep their text inline.
func textual(t storage.ResourceType) bool {
	return t == storage.ResourceDocument || t == storage.ResourceNote
}

func (l *library) readText(internalPath string) (string, error) {
	f, err := l.blobs.Open(internalPath)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	raw, err := io.ReadAll(io.LimitReader(f, maxInlineText))
	if err != nil {
		return "", fmt.Errorf("failed to read text blob: %w", err)
	}
	return strings.ToValidUTF8(string(raw), ""), nil
}

// indexResource writes vectors for r. Failures never fail the write that
// triggered them; the resource can be reindexed later.
func (l *library) indexResource(ctx context.Context, r *storage.Resource) {
	if _, err := l.indexer.IndexResource(ctx, r); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to index resource", "resource_id", r.ID, "error", err)
	}
}

func (l *library) indexInteraction(ctx context.Context, in *storage.Interaction) {
	if _, err := l.indexer.IndexInteraction(ctx, in); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to index interaction", "interaction_id", in.ID, "error", err)
	}
}

// CreateNote stores a note resource. Without a title, the first heading of
// the content is used.
func (l *library) CreateNote(ctx context.Context, req NoteRequest) (*storage.Resource, error) {
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
		return nil, apperr.Invalid("content", "a note needs a title or content")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = l.chunker.Title(req.Content)
	}
	if title == "" {
		title = "Untitled"
	}

	r := &storage.Resource{
		ProjectID: req.ProjectID,
		Type:      storage.ResourceNote,
		Title:     title,
		Content:   req.Content,
		MimeType:  "text/markdown",
		Size:      int64(len(req.Content)),
		FolderID:  req.FolderID,
	}
	if err := l.resources.CreateResource(ctx, r); err != nil {
		return nil, err
	}
	l.indexResource(ctx, r)
	return r, nil
}

func (l *library) GetResource(ctx context.Context, id string) (*storage.Resource, error) {
	return l.resources.GetResource(ctx, id)
}

func (l *library) ListResources(ctx context.Context, filter storage.ResourceFilter) ([]storage.Resource, error) {
	return l.resources.ListResources(ctx, filter)
}

// UpdateResource applies patch and reindexes when indexed text changed.
func (l *library) UpdateResource(ctx context.Context, id string, patch ResourcePatch) (*storage.Resource, error) {
	r, err := l.resources.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}

	reindex := false
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, apperr.Invalid("title", "cannot be empty")
		}
		reindex = reindex || *patch.Title != r.Title
		r.Title = *patch.Title
	}
	if patch.Content != nil {
		reindex = reindex || *patch.Content != r.Content
		r.Content = *patch.Content
	}
	if patch.ProjectID != nil {
		reindex = reindex || *patch.ProjectID != r.ProjectID
		r.ProjectID = *patch.ProjectID
	}
	if patch.FolderID != nil {
		if *patch.FolderID == r.ID {
			return nil, apperr.Invalid("folder_id", "a resource cannot contain itself")
		}
		r.FolderID = *patch.FolderID
	}
	if patch.Thumbnail != nil {
		r.Thumbnail = *patch.Thumbnail
	}
	if patch.Metadata != nil {
		if r.Metadata == nil {
			r.Metadata = make(map[string]any, len(patch.Metadata))
		}
		for k, v := range patch.Metadata {
			if v == nil {
				delete(r.Metadata, k)
				continue
			}
			r.Metadata[k] = v
		}
	}

	if err := l.resources.UpdateResource(ctx, r); err != nil {
		return nil, err
	}
	if reindex {
		l.indexResource(ctx, r)
	}
	return r, nil
}

// DeleteResource removes the resource, its interactions and links, their
// vectors, and its blob. Once the metadata rows are gone the remaining steps
// are best effort: failures are reported as warnings and whatever is left
// behind is collected by the next sweep.
func (l *library) DeleteResource(ctx context.Context, id string) (*DeleteReport, error) {
	logger := contextutil.LoggerFromContext(ctx)

	deleted, err := l.resources.DeleteResource(ctx, id)
	if err != nil {
		return nil, err
	}
	report := &DeleteReport{ResourceID: id, Interactions: len(deleted.InteractionIDs)}
	warn := func(msg string, err error) {
		logger.WarnContext(ctx, msg, "resource_id", id, "error", err)
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", msg, err))
	}

	if err := l.index.DeleteByOwner(ctx, vectorindex.ClassResource, id); err != nil {
		warn("failed to delete resource vectors", err)
	}
	if err := l.index.DeleteByOwner(ctx, vectorindex.ClassSource, id); err != nil {
		warn("failed to delete source vectors", err)
	}
	if err := l.index.DeleteByResource(ctx, vectorindex.ClassAnnotation, id); err != nil {
		warn("failed to delete annotation vectors", err)
	}

	if p := deleted.Resource.InternalPath; p != "" {
		switch err := l.blobs.Delete(p); {
		case err == nil:
			report.BlobDeleted = true
		case errors.Is(err, apperr.ErrNotFound):
		default:
			warn("failed to delete blob", err)
		}
	}

	logger.InfoContext(ctx, "resource deleted", "resource_id", id,
		"interactions", report.Interactions, "blob_deleted", report.BlobDeleted)
	return report, nil
}

// AddInteraction stores in and indexes it.
func (l *library) AddInteraction(ctx context.Context, in *storage.Interaction) error {
	if err := l.interactions.CreateInteraction(ctx, in); err != nil {
		return err
	}
	l.indexInteraction(ctx, in)
	return nil
}

func (l *library) ListInteractions(ctx context.Context, resourceID string, typ storage.InteractionType) ([]storage.Interaction, error) {
	if _, err := l.resources.GetResource(ctx, resourceID); err != nil {
		return nil, err
	}
	return l.interactions.ListInteractionsByResource(ctx, resourceID, typ)
}

// UpdateInteraction replaces the content (and position, when given) of an
// interaction and reindexes it.
func (l *library) UpdateInteraction(ctx context.Context, id, content string, position map[string]any) (*storage.Interaction, error) {
	in, err := l.interactions.GetInteraction(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Content = content
	if position != nil {
		in.PositionData = position
	}
	if err := l.interactions.UpdateInteraction(ctx, in); err != nil {
		return nil, err
	}
	l.indexInteraction(ctx, in)
	return in, nil
}

// DeleteInteraction removes the interaction and its vectors.
func (l *library) DeleteInteraction(ctx context.Context, id string) error {
	if err := l.interactions.DeleteInteraction(ctx, id); err != nil {
		return err
	}
	if err := l.index.DeleteByOwner(ctx, vectorindex.ClassAnnotation, id); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to delete interaction vectors", "interaction_id", id, "error", err)
	}
	return nil
}

func (l *library) CreateLink(ctx context.Context, link *storage.Link) error {
	return l.links.CreateLink(ctx, link)
}

// ListLinks returns the outgoing and incoming links of a resource.
func (l *library) ListLinks(ctx context.Context, resourceID string) (from, to []storage.Link, err error) {
	if _, err := l.resources.GetResource(ctx, resourceID); err != nil {
		return nil, nil, err
	}
	if from, err = l.links.LinksFrom(ctx, resourceID); err != nil {
		return nil, nil, err
	}
	if to, err = l.links.LinksTo(ctx, resourceID); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func (l *library) DeleteLink(ctx context.Context, id string) error {
	return l.links.DeleteLink(ctx, id)
}

func (l *library) GetSetting(ctx context.Context, key string) (string, error) {
	return l.settings.GetSetting(ctx, key)
}

// SetSetting stores a setting. Keys under "vector." belong to the schema
// registry and cannot be written from outside.
func (l *library) SetSetting(ctx context.Context, key, value string) error {
	if strings.HasPrefix(key, "vector.") {
		return apperr.Invalid("key", "%s is managed by the vector index", key)
	}
	return l.settings.SetSetting(ctx, key, value)
}

func (l *library) ListSettings(ctx context.Context) (map[string]string, error) {
	return l.settings.ListSettings(ctx)
}
