package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_settings_store.go -package=mocks dome/internal/storage SettingsStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dome/internal/apperr"
)

// SettingsStore is a flat string key-value store.
type SettingsStore interface {
	// GetSetting returns apperr.ErrNotFound if key is unset.
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) (map[string]string, error)
}

// GetSetting returns the value stored under key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	v, err := guarded(ctx, s, "get_setting", func(ctx context.Context) (string, error) {
		row, err := s.queryRow(ctx, "SELECT value FROM settings WHERE key = ?", key)
		if err != nil {
			return "", err
		}
		var v string
		err = row.Scan(&v)
		return v, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.NotFound("get_setting", key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting: %w", err)
	}
	return v, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return apperr.Invalid("key", "is required")
	}
	err := s.run(ctx, "set_setting", func(ctx context.Context) error {
		_, err := s.exec(ctx,
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, toMillis(now()),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}
	return nil
}

// ListSettings returns every stored setting.
func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	out, err := guarded(ctx, s, "list_settings", func(ctx context.Context) (map[string]string, error) {
		rows, err := s.query(ctx, "SELECT key, value FROM settings")
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = rows.Close()
		}()
		m := make(map[string]string)
		for rows.Next() {
			var k, v string
			if err := rows.Scan(&k, &v); err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return out, nil
}
