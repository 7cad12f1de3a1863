package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_full_text_store.go -package=mocks dome/internal/storage FullTextStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"dome/internal/apperr"
)

// FullTextStore defines full-text search and index maintenance.
type FullTextStore interface {
	SearchResources(ctx context.Context, query string, opts SearchOptions) ([]Resource, error)
	SearchInteractions(ctx context.Context, query string, opts SearchOptions) ([]Interaction, error)
	CheckIntegrity(ctx context.Context) (*IntegrityReport, error)
	RepairFullTextIndex(ctx context.Context) (bool, error)
	RebuildFullTextIndex(ctx context.Context) error
}

// Full-text tables are external-content indexes over resources and
// interactions. Their rowids are the seq column of the base tables, which
// never changes for a row, so 'rebuild' can always reconstruct them.
const (
	resourcesFTS    = "resources_fts"
	interactionsFTS = "interactions_fts"
)

var ftsTables = []string{resourcesFTS, interactionsFTS}

// ftsDialect holds the statements that differ between FTS5 and FTS4.
type ftsDialect struct {
	name             string
	tables           []string
	triggers         []string
	resourceOrder    string
	interactionOrder string
	integrityCheck   string // fmt pattern, %[1]s is the table name
}

var fts5Dialect = ftsDialect{
	name: "fts5",
	tables: []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS resources_fts USING fts5(
			title, text_content, content='resources', content_rowid='seq')`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS interactions_fts USING fts5(
			text_content, content='interactions', content_rowid='seq')`,
	},
	triggers: []string{
		`CREATE TRIGGER IF NOT EXISTS resources_fts_ai AFTER INSERT ON resources BEGIN
			INSERT INTO resources_fts(rowid, title, text_content) VALUES (new.seq, new.title, new.text_content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS resources_fts_ad AFTER DELETE ON resources BEGIN
			INSERT INTO resources_fts(resources_fts, rowid, title, text_content) VALUES ('delete', old.seq, old.title, old.text_content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS resources_fts_au AFTER UPDATE OF title, text_content ON resources BEGIN
			INSERT INTO resources_fts(resources_fts, rowid, title, text_content) VALUES ('delete', old.seq, old.title, old.text_content);
			INSERT INTO resources_fts(rowid, title, text_content) VALUES (new.seq, new.title, new.text_content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS interactions_fts_ai AFTER INSERT ON interactions BEGIN
			INSERT INTO interactions_fts(rowid, text_content) VALUES (new.seq, new.text_content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS interactions_fts_ad AFTER DELETE ON interactions BEGIN
			INSERT INTO interactions_fts(interactions_fts, rowid, text_content) VALUES ('delete', old.seq, old.text_content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS interactions_fts_au AFTER UPDATE OF text_content ON interactions BEGIN
			INSERT INTO interactions_fts(interactions_fts, rowid, text_content) VALUES ('delete', old.seq, old.text_content);
			INSERT INTO interactions_fts(rowid, text_content) VALUES (new.seq, new.text_content);
		END`,
	},
	resourceOrder:    "bm25(resources_fts)",
	interactionOrder: "bm25(interactions_fts)",
	integrityCheck:   "INSERT INTO %[1]s(%[1]s, rank) VALUES ('integrity-check', 1)",
}

// FTS4 external-content tables read the old row to find the tokens to remove,
// so removal must run BEFORE the base row changes.
var fts4Dialect = ftsDialect{
	name: "fts4",
	tables: []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS resources_fts USING fts4(
			content="resources", title, text_content)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS interactions_fts USING fts4(
			content="interactions", text_content)`,
	},
	triggers: []string{
		`CREATE TRIGGER IF NOT EXISTS resources_fts_bu BEFORE UPDATE OF title, text_content ON resources BEGIN
			DELETE FROM resources_fts WHERE docid = old.seq;
		END`,
		`CREATE TRIGGER IF NOT EXISTS resources_fts_bd BEFORE DELETE ON resources BEGIN
			DELETE FROM resources_fts WHERE docid = old.seq;
		END`,
		`CREATE TRIGGER IF NOT EXISTS resources_fts_ai AFTER INSERT ON resources BEGIN
			INSERT INTO resources_fts(docid, title, text_content) VALUES (new.seq, new.title, new.text_content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS resources_fts_au AFTER UPDATE OF title, text_content ON resources BEGIN
			INSERT INTO resources_fts(docid, title, text_content) VALUES (new.seq, new.title, new.text_content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS interactions_fts_bu BEFORE UPDATE OF text_content ON interactions BEGIN
			DELETE FROM interactions_fts WHERE docid = old.seq;
		END`,
		`CREATE TRIGGER IF NOT EXISTS interactions_fts_bd BEFORE DELETE ON interactions BEGIN
			DELETE FROM interactions_fts WHERE docid = old.seq;
		END`,
		`CREATE TRIGGER IF NOT EXISTS interactions_fts_ai AFTER INSERT ON interactions BEGIN
			INSERT INTO interactions_fts(docid, text_content) VALUES (new.seq, new.text_content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS interactions_fts_au AFTER UPDATE OF text_content ON interactions BEGIN
			INSERT INTO interactions_fts(docid, text_content) VALUES (new.seq, new.text_content);
		END`,
	},
	resourceOrder:    "r.updated_at DESC",
	interactionOrder: "i.updated_at DESC",
	integrityCheck:   "INSERT INTO %[1]s(%[1]s) VALUES ('integrity-check')",
}

// ftsTriggerNames covers both dialects so a rebuild can clean up after either.
var ftsTriggerNames = []string{
	"resources_fts_ai", "resources_fts_ad", "resources_fts_au", "resources_fts_bu", "resources_fts_bd",
	"interactions_fts_ai", "interactions_fts_ad", "interactions_fts_au", "interactions_fts_bu", "interactions_fts_bd",
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// detectDialect returns the dialect of the existing full-text tables, or the
// best one the linked SQLite supports when they are missing.
func detectDialect(ctx context.Context, db *sql.DB) (ftsDialect, error) {
	var ddl string
	err := db.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", resourcesFTS,
	).Scan(&ddl)
	switch {
	case err == nil:
		if strings.Contains(strings.ToLower(ddl), "fts5") {
			return fts5Dialect, nil
		}
		return fts4Dialect, nil
	case !errors.Is(err, sql.ErrNoRows):
		return ftsDialect{}, err
	}

	// Temp tables are per connection; pin one for the probe.
	conn, err := db.Conn(ctx)
	if err != nil {
		return ftsDialect{}, err
	}
	defer func() {
		_ = conn.Close()
	}()

	if _, err := conn.ExecContext(ctx, "CREATE VIRTUAL TABLE temp.fts5_probe USING fts5(x)"); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			return fts4Dialect, nil
		}
		return ftsDialect{}, err
	}
	_, _ = conn.ExecContext(ctx, "DROP TABLE temp.fts5_probe")
	return fts5Dialect, nil
}

func createFullText(ctx context.Context, db execer, d ftsDialect) error {
	for _, stmt := range d.tables {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create %s table: %w", d.name, err)
		}
	}
	for _, stmt := range d.triggers {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create %s trigger: %w", d.name, err)
		}
	}
	return nil
}

// MatchQuery turns free user text into a MATCH expression. Every token is
// quoted, so operators and column filters typed by the user are matched
// literally instead of being interpreted.
func MatchQuery(query string) (string, error) {
	tokens := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return "", apperr.Invalid("query", "must contain at least one word")
	}
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + tok + `"`
	}
	return strings.Join(quoted, " "), nil
}

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 200
)

func searchLimit(n int) int {
	switch {
	case n <= 0:
		return defaultSearchLimit
	case n > maxSearchLimit:
		return maxSearchLimit
	}
	return n
}

// SearchResources returns resources whose title or text matches query, best first.
func (s *Store) SearchResources(ctx context.Context, query string, opts SearchOptions) ([]Resource, error) {
	match, err := MatchQuery(query)
	if err != nil {
		return nil, err
	}

	q := "SELECT " + resourceColumns + " FROM resources_fts JOIN resources r ON r.seq = resources_fts.rowid" +
		" WHERE resources_fts MATCH ?"
	args := []any{match}
	if opts.ProjectID != "" {
		q += " AND r.project_id = ?"
		args = append(args, opts.ProjectID)
	}
	if opts.Type != "" {
		q += " AND r.type = ?"
		args = append(args, opts.Type)
	}
	q += " ORDER BY " + s.dialect.resourceOrder + " LIMIT ?"
	args = append(args, searchLimit(opts.Limit))

	return guarded(ctx, s, "search_resources", func(ctx context.Context) ([]Resource, error) {
		return s.queryResources(ctx, q, args...)
	})
}

// SearchInteractions returns interactions whose content matches query, best first.
func (s *Store) SearchInteractions(ctx context.Context, query string, opts SearchOptions) ([]Interaction, error) {
	match, err := MatchQuery(query)
	if err != nil {
		return nil, err
	}

	q := "SELECT " + interactionColumns + " FROM interactions_fts JOIN interactions i ON i.seq = interactions_fts.rowid" +
		" WHERE interactions_fts MATCH ?"
	args := []any{match}
	if opts.ProjectID != "" {
		q += " AND i.resource_id IN (SELECT id FROM resources WHERE project_id = ?)"
		args = append(args, opts.ProjectID)
	}
	if opts.Type != "" {
		q += " AND i.type = ?"
		args = append(args, opts.Type)
	}
	q += " ORDER BY " + s.dialect.interactionOrder + " LIMIT ?"
	args = append(args, searchLimit(opts.Limit))

	return guarded(ctx, s, "search_interactions", func(ctx context.Context) ([]Interaction, error) {
		return s.queryInteractions(ctx, q, args...)
	})
}

// CheckIntegrity runs the engine's quick check and the full-text integrity
// check on every index. It never repairs anything.
func (s *Store) CheckIntegrity(ctx context.Context) (*IntegrityReport, error) {
	report := &IntegrityReport{}

	rows, err := s.db.QueryContext(ctx, "PRAGMA quick_check")
	if err != nil {
		if !IsCorruption(err) {
			return nil, fmt.Errorf("failed to run quick_check: %w", err)
		}
		report.Errors = append(report.Errors, "quick_check: "+err.Error())
	} else {
		for rows.Next() {
			var line string
			if err := rows.Scan(&line); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to scan quick_check: %w", err)
			}
			if line != "ok" {
				report.Errors = append(report.Errors, "quick_check: "+line)
			}
		}
		if err := rows.Err(); err != nil {
			report.Errors = append(report.Errors, "quick_check: "+err.Error())
		}
		_ = rows.Close()
	}

	for _, table := range ftsTables {
		if err := s.checkTable(ctx, table); err != nil {
			report.Errors = append(report.Errors, table+": "+err.Error())
		}
	}

	report.OK = len(report.Errors) == 0
	return report, nil
}

func (s *Store) checkTable(ctx context.Context, table string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(s.dialect.integrityCheck, table))
	return err
}

// RepairFullTextIndex is the light repair pass: every full-text table that
// fails its integrity check is rebuilt in place from its base table. It
// reports whether all tables pass afterwards.
func (s *Store) RepairFullTextIndex(ctx context.Context) (bool, error) {
	ok := true
	for _, table := range ftsTables {
		if err := s.checkTable(ctx, table); err == nil {
			continue
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %[1]s(%[1]s) VALUES ('rebuild')", table)); err != nil {
			return false, fmt.Errorf("failed to rebuild %s: %w", table, err)
		}
		if err := s.checkTable(ctx, table); err != nil {
			ok = false
		}
	}
	return ok, nil
}

// RebuildFullTextIndex is the deep repair pass: the full-text tables and
// their triggers are dropped, recreated and repopulated from the base tables.
func (s *Store) RebuildFullTextIndex(ctx context.Context) error {
	s.InvalidateHandles()
	defer s.InvalidateHandles()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, name := range ftsTriggerNames {
		if _, err := tx.ExecContext(ctx, "DROP TRIGGER IF EXISTS "+name); err != nil {
			return fmt.Errorf("failed to drop trigger %s: %w", name, err)
		}
	}
	for _, table := range ftsTables {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	if err := createFullText(ctx, tx, s.dialect); err != nil {
		return err
	}
	for _, table := range ftsTables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %[1]s(%[1]s) VALUES ('rebuild')", table)); err != nil {
			return fmt.Errorf("failed to rebuild %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rebuild: %w", err)
	}
	return nil
}
