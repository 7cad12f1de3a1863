package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"dome/internal/apperr"
	"dome/internal/integrity"
)

var (
	_ ResourceStore    = (*Store)(nil)
	_ InteractionStore = (*Store)(nil)
	_ LinkStore        = (*Store)(nil)
	_ SettingsStore    = (*Store)(nil)
	_ FullTextStore    = (*Store)(nil)
)

// Store is the relational metadata store. Every operation runs under the
// integrity guard, so a corrupt full-text index is repaired and the operation
// retried before an error reaches the caller.
type Store struct {
	db      *sql.DB
	dialect ftsDialect
	guard   *integrity.Guard

	// inUse is held for reading from prepare until the statement has run, and
	// for writing while cached statements are closed.
	inUse sync.RWMutex
	mu    sync.Mutex
	stmts map[string]*sql.Stmt

	// faults, when set, runs before every guarded attempt. Tests use it to
	// simulate corruption.
	faults func(op string) error
}

// NewStore creates a Store over a migrated database.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	dialect, err := detectDialect(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to detect full-text dialect: %w", err)
	}
	s := &Store{
		db:      db,
		dialect: dialect,
		stmts:   make(map[string]*sql.Stmt),
	}
	s.guard = integrity.NewGuard(s, IsCorruption)
	return s, nil
}

// Guard exposes the integrity guard so callers can observe transitions.
func (s *Store) Guard() *integrity.Guard {
	return s.guard
}

// Dialect reports the full-text engine in use ("fts5" or "fts4").
func (s *Store) Dialect() string {
	return s.dialect.name
}

// InvalidateHandles closes and forgets every cached prepared statement.
func (s *Store) InvalidateHandles() {
	s.inUse.Lock()
	defer s.inUse.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for q, stmt := range s.stmts {
		_ = stmt.Close()
		delete(s.stmts, q)
	}
}

// Close releases cached statements. The *sql.DB is owned by the caller.
func (s *Store) Close() error {
	s.InvalidateHandles()
	return nil
}

func (s *Store) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stmt, ok := s.stmts[query]; ok {
		return stmt, nil
	}
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	s.stmts[query] = stmt
	return stmt, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.inUse.RLock()
	defer s.inUse.RUnlock()
	stmt, err := s.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

// query keeps the returned rows valid even if the statement is closed before
// they are drained.
func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	s.inUse.RLock()
	defer s.inUse.RUnlock()
	stmt, err := s.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	s.inUse.RLock()
	defer s.inUse.RUnlock()
	stmt, err := s.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryRowContext(ctx, args...), nil
}

func (s *Store) run(ctx context.Context, op string, fn func(context.Context) error) error {
	return s.guard.Run(ctx, op, func(ctx context.Context) error {
		if s.faults != nil {
			if err := s.faults(op); err != nil {
				return err
			}
		}
		return fn(ctx)
	})
}

func guarded[T any](ctx context.Context, s *Store, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := s.run(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

var corruptionMarkers = []string{
	"malformed",
	"fts5: corrupt",
	"vtable constructor failed",
	"no such table: main.resources_fts",
	"no such table: main.interactions_fts",
	"no such table: resources_fts",
	"no such table: interactions_fts",
}

// IsCorruption reports whether err means the database or its full-text index
// is inconsistent and a repair pass may help.
func IsCorruption(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperr.ErrIndexCorruption) {
		return true
	}
	var se sqlite3.Error
	if errors.As(err, &se) && (se.Code == sqlite3.ErrCorrupt || se.Code == sqlite3.ErrNotADB) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range corruptionMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func encodeJSON(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(b), nil
}

func decodeJSON(s sql.NullString) (map[string]any, error) {
	if !s.Valid || s.String == "" || s.String == "{}" || s.String == "null" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
