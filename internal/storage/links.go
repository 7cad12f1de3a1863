package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"dome/internal/apperr"
)

// LinkStore defines the interface for link storage operations.
type LinkStore interface {
	CreateLink(ctx context.Context, l *Link) error
	LinksFrom(ctx context.Context, resourceID string) ([]Link, error)
	LinksTo(ctx context.Context, resourceID string) ([]Link, error)
	DeleteLink(ctx context.Context, id string) error
}

// CreateLink inserts l. Several links may join the same pair of resources.
func (s *Store) CreateLink(ctx context.Context, l *Link) error {
	if l == nil {
		return apperr.Invalid("link", "is required")
	}
	if l.SourceID == "" || l.TargetID == "" {
		return apperr.Invalid("source_id", "source and target are required")
	}
	if l.Type == "" {
		return apperr.Invalid("type", "is required")
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Weight == 0 {
		l.Weight = 1
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now()
	}
	meta, err := encodeJSON(l.Metadata)
	if err != nil {
		return err
	}

	err = s.run(ctx, "create_link", func(ctx context.Context) error {
		_, err := s.exec(ctx,
			`INSERT INTO links (id, source_id, target_id, link_type, weight, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.SourceID, l.TargetID, l.Type, l.Weight, meta, toMillis(l.CreatedAt),
		)
		return err
	})
	if isForeignKeyViolation(err) {
		return apperr.NotFound("create_link", l.SourceID+"->"+l.TargetID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}
	return nil
}

// LinksFrom lists links whose source is resourceID.
func (s *Store) LinksFrom(ctx context.Context, resourceID string) ([]Link, error) {
	return s.listLinks(ctx, "links_from", "source_id", resourceID)
}

// LinksTo lists links whose target is resourceID.
func (s *Store) LinksTo(ctx context.Context, resourceID string) ([]Link, error) {
	return s.listLinks(ctx, "links_to", "target_id", resourceID)
}

func (s *Store) listLinks(ctx context.Context, op, column, resourceID string) ([]Link, error) {
	q := "SELECT id, source_id, target_id, link_type, weight, metadata, created_at FROM links WHERE " +
		column + " = ? ORDER BY weight DESC, created_at"

	out, err := guarded(ctx, s, op, func(ctx context.Context) ([]Link, error) {
		rows, err := s.query(ctx, q, resourceID)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = rows.Close()
		}()

		var links []Link
		for rows.Next() {
			var (
				l         Link
				meta      sql.NullString
				createdAt int64
			)
			if err := rows.Scan(&l.ID, &l.SourceID, &l.TargetID, &l.Type, &l.Weight, &meta, &createdAt); err != nil {
				return nil, err
			}
			l.CreatedAt = fromMillis(createdAt)
			if l.Metadata, err = decodeJSON(meta); err != nil {
				return nil, err
			}
			links = append(links, l)
		}
		return links, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return out, nil
}

// DeleteLink removes the link with the given id.
func (s *Store) DeleteLink(ctx context.Context, id string) error {
	var affected int64
	err := s.run(ctx, "delete_link", func(ctx context.Context) error {
		res, err := s.exec(ctx, "DELETE FROM links WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("delete_link", id)
	}
	return nil
}
