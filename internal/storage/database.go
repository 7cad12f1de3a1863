package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// Foreign keys and the busy timeout are set through the DSN so every pooled
// connection gets them, not just the first one.
func New(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables, the full-text
// index and its triggers. It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS resources (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			project_id TEXT NOT NULL DEFAULT 'default',
			type TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			text_content TEXT,
			content_hash TEXT,
			internal_path TEXT,
			mime_type TEXT NOT NULL DEFAULT '',
			size INTEGER NOT NULL DEFAULT 0,
			thumbnail TEXT NOT NULL DEFAULT '',
			original_name TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}',
			folder_id TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_resources_content_hash
			ON resources(content_hash) WHERE content_hash IS NOT NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_resources_project ON resources(project_id, updated_at);`,
		`CREATE INDEX IF NOT EXISTS idx_resources_folder ON resources(folder_id);`,
		`CREATE TABLE IF NOT EXISTS interactions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			resource_id TEXT NOT NULL,
			type TEXT NOT NULL,
			text_content TEXT NOT NULL DEFAULT '',
			position_data TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			FOREIGN KEY (resource_id) REFERENCES resources(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_resource ON interactions(resource_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS links (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			link_type TEXT NOT NULL,
			weight REAL NOT NULL DEFAULT 1.0,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL,
			FOREIGN KEY (source_id) REFERENCES resources(id) ON DELETE CASCADE,
			FOREIGN KEY (target_id) REFERENCES resources(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_links_source ON links(source_id);`,
		`CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_id);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	ctx := context.Background()
	dialect, err := detectDialect(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to detect full-text support: %w", err)
	}
	return createFullText(ctx, db, dialect)
}
