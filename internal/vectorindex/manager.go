// Package vectorindex manages one vector table per entity class. Each table
// has exactly one dimension; when an embedding of another length arrives the
// table is dropped and recreated at the new dimension.
package vectorindex

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index.go -package=mocks dome/internal/vectorindex Index

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"dome/internal/apperr"
	"dome/internal/contextutil"
	"dome/internal/integrity"
	"dome/internal/vectorstore"
)

// Index is the vector index used by the indexer, search and library service.
type Index interface {
	EnsureTable(ctx context.Context, class Class, dimension int) error
	Insert(ctx context.Context, class Class, records ...Record) error
	Search(ctx context.Context, class Class, query []float32, limit int, filter map[string]string) ([]Match, error)
	DeleteByOwner(ctx context.Context, class Class, ownerID string) error
	DeleteByResource(ctx context.Context, class Class, resourceID string) error
	Stats(ctx context.Context, class Class) (*Stats, error)
}

// pointNamespace seeds deterministic point ids.
var pointNamespace = uuid.MustParse("6f1c2a7e-4b0d-5e93-9a61-d2c3b8e4f015")

// Metadata is stored with every record as flat scalar fields.
type Metadata struct {
	ResourceID   string `json:"resource_id"`
	ProjectID    string `json:"project_id,omitempty"`
	Title        string `json:"title,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
	PageIndex    int    `json:"page_index"`
	Model        string `json:"model"`
	CreatedAt    int64  `json:"created_at"` // unix millis
	UpdatedAt    int64  `json:"updated_at"` // unix millis
}

// Record is one chunk of an entity with its embedding.
type Record struct {
	EntityID   string
	ChunkIndex int
	Text       string
	Vector     []float32
	Metadata   Metadata
}

// ID is the record id, unique within a table.
func (r Record) ID() string {
	return r.EntityID + ":" + strconv.Itoa(r.ChunkIndex)
}

// Match is a search hit. Distance is the cosine distance, lower is closer.
type Match struct {
	RecordID   string   `json:"record_id"`
	EntityID   string   `json:"entity_id"`
	ChunkIndex int      `json:"chunk_index"`
	Text       string   `json:"text"`
	Distance   float32  `json:"distance"`
	Metadata   Metadata `json:"metadata"`
}

// Stats describes a class table.
type Stats struct {
	Class     Class  `json:"class"`
	Table     string `json:"table"`
	Exists    bool   `json:"exists"`
	Dimension int    `json:"dimension"`
	Version   int    `json:"version"`
	Model     string `json:"model,omitempty"`
	Points    int    `json:"points"`
}

// filterFields are the payload fields Search accepts as filters.
var filterFields = map[string]bool{
	"entity_id":     true,
	"resource_id":   true,
	"project_id":    true,
	"resource_type": true,
}

// Manager implements Index over a VectorStore.
type Manager struct {
	store    vectorstore.VectorStore
	registry *Registry
	group    singleflight.Group

	locks map[Class]*sync.RWMutex

	mu   sync.Mutex
	dims map[Class]int // confirmed table dimensions
}

var _ Index = (*Manager)(nil)

// NewManager creates a Manager.
func NewManager(store vectorstore.VectorStore, registry *Registry) *Manager {
	m := &Manager{
		store:    store,
		registry: registry,
		locks:    make(map[Class]*sync.RWMutex, len(Classes)),
		dims:     make(map[Class]int),
	}
	for _, c := range Classes {
		m.locks[c] = &sync.RWMutex{}
	}
	return m
}

func (m *Manager) lock(class Class) (*sync.RWMutex, error) {
	l, ok := m.locks[class]
	if !ok {
		return nil, apperr.Invalid("class", "unknown entity class %q", class)
	}
	return l, nil
}

func (m *Manager) knownDim(class Class) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dims[class]
}

func (m *Manager) setDim(class Class, dim int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dim == 0 {
		delete(m.dims, class)
		return
	}
	m.dims[class] = dim
}

// EnsureTable opens the class table, creating it at dimension if absent.
// An existing table of another dimension is reported as
// apperr.ErrDimensionMismatch and left untouched. Concurrent callers for the
// same class share one check-and-create.
func (m *Manager) EnsureTable(ctx context.Context, class Class, dimension int) error {
	l, err := m.lock(class)
	if err != nil {
		return err
	}
	if dimension <= 0 {
		return apperr.Invalid("dimension", "must be positive, got %d", dimension)
	}
	_, err, _ = m.group.Do(string(class)+"/"+strconv.Itoa(dimension), func() (any, error) {
		// Serialised with Insert so a table being recreated is never observed half-way.
		l.Lock()
		defer l.Unlock()
		return nil, m.ensureTable(ctx, class, dimension, "")
	})
	return err
}

func (m *Manager) ensureTable(ctx context.Context, class Class, dimension int, model string) error {
	if dim := m.knownDim(class); dim != 0 {
		if dim != dimension {
			return apperr.Wrap("ensure_table", apperr.ErrDimensionMismatch, class.Table(),
				fmt.Errorf("table has dimension %d, vector has %d", dim, dimension))
		}
		return nil
	}

	table := class.Table()
	exists, err := m.store.CollectionExists(ctx, table)
	if err != nil {
		return err
	}
	if exists {
		info, err := m.store.CollectionInfo(ctx, table)
		if err != nil {
			return err
		}
		m.setDim(class, info.VectorSize)
		if info.VectorSize != dimension {
			return apperr.Wrap("ensure_table", apperr.ErrDimensionMismatch, table,
				fmt.Errorf("table has dimension %d, vector has %d", info.VectorSize, dimension))
		}
		return nil
	}

	if err := m.store.CreateCollection(ctx, table, dimension); err != nil {
		return err
	}
	if _, err := m.registry.Record(ctx, class, dimension, model); err != nil {
		return err
	}
	m.setDim(class, dimension)
	return nil
}

// recreate drops the class table and creates it again at dimension. Every
// vector previously stored for the class is lost.
func (m *Manager) recreate(ctx context.Context, class Class, dimension int, model string) error {
	logger := contextutil.LoggerFromContext(ctx)
	table := class.Table()

	logger.WarnContext(ctx, "recreating vector table, existing vectors are discarded",
		"table", table, "previous_dimension", m.knownDim(class), "dimension", dimension)

	m.setDim(class, 0)
	if err := m.store.DropCollection(ctx, table); err != nil {
		return fmt.Errorf("failed to drop %s: %w", table, err)
	}
	if err := m.store.CreateCollection(ctx, table, dimension); err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}
	if _, err := m.registry.Record(ctx, class, dimension, model); err != nil {
		return err
	}
	m.setDim(class, dimension)
	return nil
}

// Insert writes records into the class table. All records must share one
// vector length. If the table was declared with another dimension it is
// recreated at the new one and the insert retried once.
func (m *Manager) Insert(ctx context.Context, class Class, records ...Record) error {
	l, err := m.lock(class)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	dim := len(records[0].Vector)
	if dim == 0 {
		return apperr.Invalid("vector", "is empty")
	}
	for _, r := range records {
		if r.EntityID == "" {
			return apperr.Invalid("entity_id", "is required")
		}
		if len(r.Vector) != dim {
			return apperr.Invalid("vector", "records in one insert must share a dimension (%d vs %d)", len(r.Vector), dim)
		}
	}
	model := records[0].Metadata.Model

	l.Lock()
	defer l.Unlock()

	table := class.Table()
	points := make([]vectorstore.Point, len(records))
	for i, r := range records {
		points[i] = vectorstore.Point{
			ID:      pointID(table, r.ID()),
			Vec:     r.Vector,
			Payload: payload(r),
		}
	}

	return integrity.RecreateOnce(ctx, "insert_embedding",
		func(ctx context.Context) error {
			if err := m.ensureTable(ctx, class, dim, model); err != nil {
				return err
			}
			err := m.store.Upsert(ctx, table, points)
			if errors.Is(err, apperr.ErrDimensionMismatch) {
				// The table changed behind our back; forget the cached dimension.
				m.setDim(class, 0)
			}
			return err
		},
		func(ctx context.Context, _ error) error {
			return m.recreate(ctx, class, dim, model)
		},
	)
}

// Search returns the records of class nearest to query. A missing table
// yields no matches. A query of the wrong length fails with
// apperr.ErrDimensionMismatch.
func (m *Manager) Search(ctx context.Context, class Class, query []float32, limit int, filter map[string]string) ([]Match, error) {
	l, err := m.lock(class)
	if err != nil {
		return nil, err
	}
	if len(query) == 0 {
		return nil, apperr.Invalid("vector", "is empty")
	}
	if limit <= 0 {
		limit = 10
	}
	for k := range filter {
		if !filterFields[k] {
			return nil, apperr.Invalid("filter", "unsupported field %q", k)
		}
	}

	l.RLock()
	defer l.RUnlock()

	dim, err := m.tableDim(ctx, class)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return nil, nil
	}
	if dim != len(query) {
		return nil, apperr.Wrap("search_embeddings", apperr.ErrDimensionMismatch, class.Table(),
			fmt.Errorf("table has dimension %d, query has %d", dim, len(query)))
	}

	results, err := m.store.Search(ctx, class.Table(), query, limit, filter)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(results))
	for _, res := range results {
		matches = append(matches, matchFromPayload(res))
	}
	return matches, nil
}

// tableDim returns the dimension of the class table, or 0 if it does not exist.
func (m *Manager) tableDim(ctx context.Context, class Class) (int, error) {
	if dim := m.knownDim(class); dim != 0 {
		return dim, nil
	}
	info, err := m.store.CollectionInfo(ctx, class.Table())
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	m.setDim(class, info.VectorSize)
	return info.VectorSize, nil
}

// DeleteByOwner removes every record of the given owning entity.
func (m *Manager) DeleteByOwner(ctx context.Context, class Class, ownerID string) error {
	return m.deleteBy(ctx, class, "entity_id", ownerID)
}

// DeleteByResource removes every record whose metadata points at resourceID.
func (m *Manager) DeleteByResource(ctx context.Context, class Class, resourceID string) error {
	return m.deleteBy(ctx, class, "resource_id", resourceID)
}

func (m *Manager) deleteBy(ctx context.Context, class Class, field, value string) error {
	l, err := m.lock(class)
	if err != nil {
		return err
	}
	if value == "" {
		return apperr.Invalid(field, "is required")
	}

	l.RLock()
	defer l.RUnlock()

	dim, err := m.tableDim(ctx, class)
	if err != nil {
		return err
	}
	if dim == 0 {
		return nil
	}
	return m.store.DeleteByField(ctx, class.Table(), field, value)
}

// Stats reports the recorded schema and live point count of the class table.
func (m *Manager) Stats(ctx context.Context, class Class) (*Stats, error) {
	l, err := m.lock(class)
	if err != nil {
		return nil, err
	}
	l.RLock()
	defer l.RUnlock()

	st := &Stats{Class: class, Table: class.Table()}
	schema, err := m.registry.Get(ctx, class)
	switch {
	case err == nil:
		st.Dimension = schema.Dimension
		st.Version = schema.Version
		st.Model = schema.Model
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	info, err := m.store.CollectionInfo(ctx, class.Table())
	if errors.Is(err, apperr.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return nil, err
	}
	st.Exists = true
	st.Dimension = info.VectorSize
	st.Points = info.PointsCount
	return st, nil
}

func pointID(table, recordID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(table+"|"+recordID)).String()
}

func payload(r Record) map[string]any {
	return map[string]any{
		"record_id":     r.ID(),
		"entity_id":     r.EntityID,
		"chunk_index":   int64(r.ChunkIndex),
		"text":          r.Text,
		"resource_id":   r.Metadata.ResourceID,
		"project_id":    r.Metadata.ProjectID,
		"title":         r.Metadata.Title,
		"resource_type": r.Metadata.ResourceType,
		"page_index":    int64(r.Metadata.PageIndex),
		"model":         r.Metadata.Model,
		"created_at":    r.Metadata.CreatedAt,
		"updated_at":    r.Metadata.UpdatedAt,
	}
}

func matchFromPayload(res vectorstore.SearchResult) Match {
	p := res.Payload
	return Match{
		RecordID:   str(p["record_id"]),
		EntityID:   str(p["entity_id"]),
		ChunkIndex: int(num(p["chunk_index"])),
		Text:       str(p["text"]),
		Distance:   1 - res.Score,
		Metadata: Metadata{
			ResourceID:   str(p["resource_id"]),
			ProjectID:    str(p["project_id"]),
			Title:        str(p["title"]),
			ResourceType: str(p["resource_type"]),
			PageIndex:    int(num(p["page_index"])),
			Model:        str(p["model"]),
			CreatedAt:    num(p["created_at"]),
			UpdatedAt:    num(p["updated_at"]),
		},
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i
	}
	return 0
}
