package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"dome/internal/apperr"
)

// InteractionStore defines the interface for interaction storage operations.
type InteractionStore interface {
	// CreateInteraction returns apperr.ErrNotFound if the owning resource does not exist.
	CreateInteraction(ctx context.Context, in *Interaction) error
	GetInteraction(ctx context.Context, id string) (*Interaction, error)
	// ListInteractionsByResource lists interactions of a resource, oldest first.
	// An empty typ matches every type.
	ListInteractionsByResource(ctx context.Context, resourceID string, typ InteractionType) ([]Interaction, error)
	// ListInteractionsByType lists every interaction of typ, oldest first.
	ListInteractionsByType(ctx context.Context, typ InteractionType) ([]Interaction, error)
	UpdateInteraction(ctx context.Context, in *Interaction) error
	DeleteInteraction(ctx context.Context, id string) error
	// DeleteOrphanInteractions removes interactions whose resource no longer exists.
	DeleteOrphanInteractions(ctx context.Context) (int64, error)
}

const interactionColumns = "i.id, i.resource_id, i.type, i.text_content, i.position_data, i.metadata, i.created_at, i.updated_at"

func scanInteraction(row rowScanner) (*Interaction, error) {
	var (
		in                   Interaction
		position, meta       sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&in.ID, &in.ResourceID, &in.Type, &in.Content, &position, &meta, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	in.CreatedAt = fromMillis(createdAt)
	in.UpdatedAt = fromMillis(updatedAt)
	if in.PositionData, err = decodeJSON(position); err != nil {
		return nil, err
	}
	if in.Metadata, err = decodeJSON(meta); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *Store) queryInteractions(ctx context.Context, q string, args ...any) ([]Interaction, error) {
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Interaction
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

func validateInteraction(in *Interaction) error {
	if in == nil {
		return apperr.Invalid("interaction", "is required")
	}
	if in.ResourceID == "" {
		return apperr.Invalid("resource_id", "is required")
	}
	if !in.Type.Valid() {
		return apperr.Invalid("type", "unknown interaction type %q", in.Type)
	}
	return nil
}

func positionJSON(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return encodeJSON(m)
}

// CreateInteraction inserts in.
func (s *Store) CreateInteraction(ctx context.Context, in *Interaction) error {
	if err := validateInteraction(in); err != nil {
		return err
	}
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now()
	}
	if in.UpdatedAt.IsZero() {
		in.UpdatedAt = in.CreatedAt
	}
	position, err := positionJSON(in.PositionData)
	if err != nil {
		return err
	}
	meta, err := encodeJSON(in.Metadata)
	if err != nil {
		return err
	}

	err = s.run(ctx, "create_interaction", func(ctx context.Context) error {
		_, err := s.exec(ctx,
			`INSERT INTO interactions (id, resource_id, type, text_content, position_data, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			in.ID, in.ResourceID, in.Type, in.Content, position, meta, toMillis(in.CreatedAt), toMillis(in.UpdatedAt),
		)
		return err
	})
	if isForeignKeyViolation(err) {
		return apperr.NotFound("create_interaction", in.ResourceID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

// GetInteraction returns the interaction with the given id.
func (s *Store) GetInteraction(ctx context.Context, id string) (*Interaction, error) {
	in, err := guarded(ctx, s, "get_interaction", func(ctx context.Context) (*Interaction, error) {
		row, err := s.queryRow(ctx, "SELECT "+interactionColumns+" FROM interactions i WHERE i.id = ?", id)
		if err != nil {
			return nil, err
		}
		return scanInteraction(row)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("get_interaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction: %w", err)
	}
	return in, nil
}

// ListInteractionsByResource lists the interactions attached to a resource.
func (s *Store) ListInteractionsByResource(ctx context.Context, resourceID string, typ InteractionType) ([]Interaction, error) {
	q := "SELECT " + interactionColumns + " FROM interactions i WHERE i.resource_id = ?"
	args := []any{resourceID}
	if typ != "" {
		q += " AND i.type = ?"
		args = append(args, typ)
	}
	q += " ORDER BY i.created_at, i.seq"

	out, err := guarded(ctx, s, "list_interactions", func(ctx context.Context) ([]Interaction, error) {
		return s.queryInteractions(ctx, q, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return out, nil
}

// ListInteractionsByType lists every interaction of the given type.
func (s *Store) ListInteractionsByType(ctx context.Context, typ InteractionType) ([]Interaction, error) {
	out, err := guarded(ctx, s, "list_interactions_by_type", func(ctx context.Context) ([]Interaction, error) {
		return s.queryInteractions(ctx,
			"SELECT "+interactionColumns+" FROM interactions i WHERE i.type = ? ORDER BY i.created_at, i.seq", typ)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return out, nil
}

// UpdateInteraction saves content, position and metadata of in.
func (s *Store) UpdateInteraction(ctx context.Context, in *Interaction) error {
	if in == nil || in.ID == "" {
		return apperr.Invalid("id", "is required")
	}
	position, err := positionJSON(in.PositionData)
	if err != nil {
		return err
	}
	meta, err := encodeJSON(in.Metadata)
	if err != nil {
		return err
	}
	in.UpdatedAt = now()

	var affected int64
	err = s.run(ctx, "update_interaction", func(ctx context.Context) error {
		res, err := s.exec(ctx,
			"UPDATE interactions SET text_content = ?, position_data = ?, metadata = ?, updated_at = ? WHERE id = ?",
			in.Content, position, meta, toMillis(in.UpdatedAt), in.ID,
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update interaction: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("update_interaction", in.ID)
	}
	return nil
}

// DeleteInteraction removes the interaction with the given id.
func (s *Store) DeleteInteraction(ctx context.Context, id string) error {
	var affected int64
	err := s.run(ctx, "delete_interaction", func(ctx context.Context) error {
		res, err := s.exec(ctx, "DELETE FROM interactions WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete interaction: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("delete_interaction", id)
	}
	return nil
}

// DeleteOrphanInteractions removes interactions left behind by a resource
// deleted while foreign keys were off (older databases, manual edits).
func (s *Store) DeleteOrphanInteractions(ctx context.Context) (int64, error) {
	n, err := guarded(ctx, s, "delete_orphan_interactions", func(ctx context.Context) (int64, error) {
		res, err := s.exec(ctx,
			"DELETE FROM interactions WHERE resource_id NOT IN (SELECT id FROM resources)")
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphan interactions: %w", err)
	}
	return n, nil
}
