package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_resource_store.go -package=mocks dome/internal/storage ResourceStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"dome/internal/apperr"
)

// ResourceStore defines the interface for resource storage operations.
type ResourceStore interface {
	// CreateResource inserts r, assigning ID and timestamps when unset.
	// Returns an error matching apperr.ErrDuplicate if r.ContentHash is already stored.
	CreateResource(ctx context.Context, r *Resource) error
	// GetResource returns apperr.ErrNotFound if id does not exist.
	GetResource(ctx context.Context, id string) (*Resource, error)
	// GetResourceByHash returns apperr.ErrNotFound if no resource has the hash.
	GetResourceByHash(ctx context.Context, hash string) (*Resource, error)
	ListResources(ctx context.Context, filter ResourceFilter) ([]Resource, error)
	// UpdateResource saves the mutable fields of r and bumps UpdatedAt.
	UpdateResource(ctx context.Context, r *Resource) error
	// DeleteResource removes the resource together with its interactions and links.
	DeleteResource(ctx context.Context, id string) (*DeletedResource, error)
	// ListBlobPaths returns every internal path referenced by a resource.
	ListBlobPaths(ctx context.Context) ([]string, error)
}

const resourceColumns = "r.id, r.project_id, r.type, r.title, r.text_content, r.content_hash, r.internal_path," +
	" r.mime_type, r.size, r.thumbnail, r.original_name, r.metadata, r.folder_id, r.created_at, r.updated_at"

// DefaultProject is used when a resource is created without a project.
const DefaultProject = "default"

func scanResource(row rowScanner) (*Resource, error) {
	var (
		r                              Resource
		text, hash, path, folder, meta sql.NullString
		createdAt, updatedAt           int64
	)
	err := row.Scan(&r.ID, &r.ProjectID, &r.Type, &r.Title, &text, &hash, &path,
		&r.MimeType, &r.Size, &r.Thumbnail, &r.OriginalName, &meta, &folder, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	r.Content = text.String
	r.ContentHash = hash.String
	r.InternalPath = path.String
	r.FolderID = folder.String
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updatedAt)
	if r.Metadata, err = decodeJSON(meta); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) queryResources(ctx context.Context, q string, args ...any) ([]Resource, error) {
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func validateResource(r *Resource) error {
	if r == nil {
		return apperr.Invalid("resource", "is required")
	}
	if !r.Type.Valid() {
		return apperr.Invalid("type", "unknown resource type %q", r.Type)
	}
	return nil
}

// CreateResource inserts r.
func (s *Store) CreateResource(ctx context.Context, r *Resource) error {
	if err := validateResource(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.ProjectID == "" {
		r.ProjectID = DefaultProject
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	meta, err := encodeJSON(r.Metadata)
	if err != nil {
		return err
	}

	err = s.run(ctx, "create_resource", func(ctx context.Context) error {
		_, err := s.exec(ctx,
			`INSERT INTO resources (id, project_id, type, title, text_content, content_hash, internal_path,
				mime_type, size, thumbnail, original_name, metadata, folder_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.ProjectID, r.Type, r.Title, nullString(r.Content), nullString(r.ContentHash), nullString(r.InternalPath),
			r.MimeType, r.Size, r.Thumbnail, r.OriginalName, meta, nullString(r.FolderID),
			toMillis(r.CreatedAt), toMillis(r.UpdatedAt),
		)
		return err
	})
	if isUniqueViolation(err) && r.ContentHash != "" {
		return apperr.Wrap("create_resource", apperr.ErrDuplicate, r.ContentHash, err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert resource: %w", err)
	}
	return nil
}

// GetResource returns the resource with the given id.
func (s *Store) GetResource(ctx context.Context, id string) (*Resource, error) {
	return s.getResource(ctx, "get_resource", "SELECT "+resourceColumns+" FROM resources r WHERE r.id = ?", id)
}

// GetResourceByHash returns the resource holding the blob with the given content hash.
func (s *Store) GetResourceByHash(ctx context.Context, hash string) (*Resource, error) {
	if hash == "" {
		return nil, apperr.Invalid("content_hash", "is required")
	}
	return s.getResource(ctx, "get_resource_by_hash", "SELECT "+resourceColumns+" FROM resources r WHERE r.content_hash = ?", hash)
}

func (s *Store) getResource(ctx context.Context, op, q, key string) (*Resource, error) {
	r, err := guarded(ctx, s, op, func(ctx context.Context) (*Resource, error) {
		row, err := s.queryRow(ctx, q, key)
		if err != nil {
			return nil, err
		}
		return scanResource(row)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(op, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resource: %w", err)
	}
	return r, nil
}

// ListResources returns resources matching filter, most recently updated first.
func (s *Store) ListResources(ctx context.Context, filter ResourceFilter) ([]Resource, error) {
	q := "SELECT " + resourceColumns + " FROM resources r WHERE 1 = 1"
	var args []any
	if filter.ProjectID != "" {
		q += " AND r.project_id = ?"
		args = append(args, filter.ProjectID)
	}
	if filter.FolderID != "" {
		q += " AND r.folder_id = ?"
		args = append(args, filter.FolderID)
	}
	if filter.Type != "" {
		q += " AND r.type = ?"
		args = append(args, filter.Type)
	}
	q += " ORDER BY r.updated_at DESC, r.seq DESC"
	if filter.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	out, err := guarded(ctx, s, "list_resources", func(ctx context.Context) ([]Resource, error) {
		return s.queryResources(ctx, q, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return out, nil
}

// UpdateResource saves project, title, content, thumbnail, metadata and folder of r.
func (s *Store) UpdateResource(ctx context.Context, r *Resource) error {
	if err := validateResource(r); err != nil {
		return err
	}
	if r.ProjectID == "" {
		r.ProjectID = DefaultProject
	}
	meta, err := encodeJSON(r.Metadata)
	if err != nil {
		return err
	}
	r.UpdatedAt = now()

	var affected int64
	err = s.run(ctx, "update_resource", func(ctx context.Context) error {
		res, err := s.exec(ctx,
			`UPDATE resources SET project_id = ?, title = ?, text_content = ?, thumbnail = ?, metadata = ?, folder_id = ?,
			updated_at = ? WHERE id = ?`,
			r.ProjectID, r.Title, nullString(r.Content), r.Thumbnail, meta, nullString(r.FolderID), toMillis(r.UpdatedAt), r.ID,
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("update_resource", r.ID)
	}
	return nil
}

// DeleteResource removes the resource. Interactions and links referencing it
// go with it through the foreign key cascade; their ids are returned so the
// caller can drop their vectors.
func (s *Store) DeleteResource(ctx context.Context, id string) (*DeletedResource, error) {
	r, err := s.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	interactions, err := s.ListInteractionsByResource(ctx, id, "")
	if err != nil {
		return nil, err
	}

	var affected int64
	err = s.run(ctx, "delete_resource", func(ctx context.Context) error {
		res, err := s.exec(ctx, "DELETE FROM resources WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete resource: %w", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("delete_resource", id)
	}

	deleted := &DeletedResource{Resource: r}
	for _, in := range interactions {
		deleted.InteractionIDs = append(deleted.InteractionIDs, in.ID)
	}
	return deleted, nil
}

// ListBlobPaths returns the internal path of every resource that has a blob.
func (s *Store) ListBlobPaths(ctx context.Context) ([]string, error) {
	paths, err := guarded(ctx, s, "list_blob_paths", func(ctx context.Context) ([]string, error) {
		rows, err := s.query(ctx, "SELECT internal_path FROM resources WHERE internal_path IS NOT NULL AND internal_path != ''")
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = rows.Close()
		}()
		var out []string
		for rows.Next() {
			var p string
			if err := rows.Scan(&p); err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blob paths: %w", err)
	}
	return paths, nil
}
