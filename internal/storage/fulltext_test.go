package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"

	"dome/internal/apperr"
	"dome/internal/integrity"
)

func TestMatchQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    string
		wantErr bool
	}{
		{name: "single word", query: "quantum", want: `"quantum"`},
		{name: "several words", query: "quantum  field theory", want: `"quantum" "field" "theory"`},
		{name: "operators are literal", query: `title:foo OR bar*`, want: `"title" "foo" "OR" "bar"`},
		{name: "quotes stripped", query: `"unbalanced`, want: `"unbalanced"`},
		{name: "unicode", query: "café naïve", want: `"café" "naïve"`},
		{name: "empty", query: "", wantErr: true},
		{name: "punctuation only", query: `"*:-()`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchQuery(tt.query)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("MatchQuery() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("MatchQuery() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("MatchQuery() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStore_SearchResources(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateResource(t, s, &Resource{Type: ResourceNote, Title: "Photosynthesis basics", Content: "light reactions", ProjectID: "bio"})
	mustCreateResource(t, s, &Resource{Type: ResourceNote, Title: "Cell walls", Content: "cellulose and photosynthesis byproducts", ProjectID: "bio"})
	mustCreateResource(t, s, &Resource{Type: ResourcePDF, Title: "Tax forms", ProjectID: "admin"})

	tests := []struct {
		name  string
		query string
		opts  SearchOptions
		want  int
	}{
		{name: "title and body matches", query: "photosynthesis", want: 2},
		{name: "case insensitive", query: "PHOTOSYNTHESIS", want: 2},
		{name: "all tokens required", query: "photosynthesis cellulose", want: 1},
		{name: "project filter", query: "tax", opts: SearchOptions{ProjectID: "bio"}, want: 0},
		{name: "type filter", query: "photosynthesis", opts: SearchOptions{Type: "pdf"}, want: 0},
		{name: "limit", query: "photosynthesis", opts: SearchOptions{Limit: 1}, want: 1},
		{name: "no match", query: "astronomy", want: 0},
		{name: "operator text", query: "tax OR NEAR(", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchResources(ctx, tt.query, tt.opts)
			if err != nil {
				t.Fatalf("SearchResources() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("SearchResources() returned %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestStore_SearchResources_FollowsUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := mustCreateResource(t, s, &Resource{Type: ResourceNote, Title: "draft", Content: "walrus"})
	r.Content = "penguin"
	if err := s.UpdateResource(ctx, r); err != nil {
		t.Fatalf("UpdateResource() error = %v", err)
	}

	if got, _ := s.SearchResources(ctx, "walrus", SearchOptions{}); len(got) != 0 {
		t.Errorf("old text still matches: %v", got)
	}
	if got, _ := s.SearchResources(ctx, "penguin", SearchOptions{}); len(got) != 1 {
		t.Errorf("new text does not match")
	}

	if _, err := s.DeleteResource(ctx, r.ID); err != nil {
		t.Fatalf("DeleteResource() error = %v", err)
	}
	if got, _ := s.SearchResources(ctx, "penguin", SearchOptions{}); len(got) != 0 {
		t.Errorf("deleted resource still matches")
	}
}

func TestStore_SearchInteractions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := mustCreateResource(t, s, &Resource{Type: ResourcePDF, Title: "paper", ProjectID: "p1"})
	for _, in := range []*Interaction{
		{ResourceID: r.ID, Type: InteractionAnnotation, Content: "mitochondria are the powerhouse"},
		{ResourceID: r.ID, Type: InteractionNote, Content: "ask about mitochondria"},
	} {
		if err := s.CreateInteraction(ctx, in); err != nil {
			t.Fatalf("CreateInteraction() error = %v", err)
		}
	}

	got, err := s.SearchInteractions(ctx, "mitochondria", SearchOptions{})
	if err != nil {
		t.Fatalf("SearchInteractions() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("SearchInteractions() returned %d, want 2", len(got))
	}

	got, err = s.SearchInteractions(ctx, "mitochondria", SearchOptions{Type: string(InteractionAnnotation)})
	if err != nil {
		t.Fatalf("SearchInteractions() error = %v", err)
	}
	if len(got) != 1 || got[0].ResourceID != r.ID {
		t.Errorf("SearchInteractions() by type = %v", got)
	}

	got, err = s.SearchInteractions(ctx, "mitochondria", SearchOptions{ProjectID: "other"})
	if err != nil {
		t.Fatalf("SearchInteractions() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SearchInteractions() other project = %v", got)
	}

	if _, err := s.SearchInteractions(ctx, "  ", SearchOptions{}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("SearchInteractions() blank query error = %v, want validation error", err)
	}
}

func insertPhantomRow(t *testing.T, s *Store) {
	t.Helper()
	col := "rowid"
	if s.Dialect() == "fts4" {
		col = "docid"
	}
	q := fmt.Sprintf("INSERT INTO resources_fts(%s, title, text_content) VALUES (999999, 'ghost', 'ghost')", col)
	if _, err := s.db.Exec(q); err != nil {
		t.Fatalf("insert phantom row: %v", err)
	}
}

func TestStore_RepairFullTextIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateResource(t, s, &Resource{Type: ResourceNote, Title: "kept", Content: "survives repair"})

	report, err := s.CheckIntegrity(ctx)
	if err != nil {
		t.Fatalf("CheckIntegrity() error = %v", err)
	}
	if !report.OK {
		t.Fatalf("fresh store not ok: %v", report.Errors)
	}

	insertPhantomRow(t, s)

	report, err = s.CheckIntegrity(ctx)
	if err != nil {
		t.Fatalf("CheckIntegrity() error = %v", err)
	}
	if report.OK {
		t.Fatal("CheckIntegrity() ok with a phantom index row")
	}

	ok, err := s.RepairFullTextIndex(ctx)
	if err != nil {
		t.Fatalf("RepairFullTextIndex() error = %v", err)
	}
	if !ok {
		t.Error("RepairFullTextIndex() = false, want true")
	}

	report, err = s.CheckIntegrity(ctx)
	if err != nil {
		t.Fatalf("CheckIntegrity() error = %v", err)
	}
	if !report.OK {
		t.Errorf("CheckIntegrity() after repair: %v", report.Errors)
	}

	// Repairing a healthy index is a no-op.
	ok, err = s.RepairFullTextIndex(ctx)
	if err != nil || !ok {
		t.Errorf("second RepairFullTextIndex() = %v, %v", ok, err)
	}

	got, err := s.SearchResources(ctx, "survives", SearchOptions{})
	if err != nil {
		t.Fatalf("SearchResources() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("SearchResources() after repair = %d, want 1", len(got))
	}
}

func TestStore_RebuildFullTextIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateResource(t, s, &Resource{Type: ResourceNote, Title: "orchid", Content: "epiphyte"})

	if _, err := s.db.Exec("DROP TABLE resources_fts"); err != nil {
		t.Fatalf("drop index: %v", err)
	}

	if err := s.RebuildFullTextIndex(ctx); err != nil {
		t.Fatalf("RebuildFullTextIndex() error = %v", err)
	}

	got, err := s.SearchResources(ctx, "epiphyte", SearchOptions{})
	if err != nil {
		t.Fatalf("SearchResources() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("SearchResources() after rebuild = %d, want 1", len(got))
	}

	// Triggers are back: new rows are indexed.
	mustCreateResource(t, s, &Resource{Type: ResourceNote, Title: "fern", Content: "epiphyte too"})
	got, err = s.SearchResources(ctx, "epiphyte", SearchOptions{})
	if err != nil {
		t.Fatalf("SearchResources() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("SearchResources() after insert = %d, want 2", len(got))
	}
}

func TestStore_GuardRecoversFromMissingIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateResource(t, s, &Resource{Type: ResourceNote, Title: "lichen"})

	// A search against a dropped index fails with "no such table", which the
	// light repair cannot fix; the deep rebuild does.
	if _, err := s.db.Exec("DROP TABLE resources_fts"); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	s.InvalidateHandles()

	var states []integrity.State
	s.Guard().Observe(func(tr integrity.Transition) {
		states = append(states, tr.State)
	})

	got, err := s.SearchResources(ctx, "lichen", SearchOptions{})
	if err != nil {
		t.Fatalf("SearchResources() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("SearchResources() = %d, want 1", len(got))
	}
	if states[len(states)-1] != integrity.StateSucceeded {
		t.Errorf("final state = %v, want succeeded", states[len(states)-1])
	}
	var deep bool
	for _, st := range states {
		if st == integrity.StateDeepRepairing {
			deep = true
		}
	}
	if !deep {
		t.Errorf("states = %v, want a deep repair", states)
	}
}

func TestStore_CorruptionScenario(t *testing.T) {
	corrupt := sqlite3.Error{Code: sqlite3.ErrCorrupt}

	tests := []struct {
		name       string
		failures   int
		wantErr    bool
		wantStates []integrity.State
	}{
		{
			name:     "healthy",
			failures: 0,
			wantStates: []integrity.State{
				integrity.StateAttempt, integrity.StateSucceeded,
			},
		},
		{
			name:     "light repair suffices",
			failures: 1,
			wantStates: []integrity.State{
				integrity.StateAttempt, integrity.StateFailedCorruption, integrity.StateRepairing,
				integrity.StateRetrying, integrity.StateSucceeded,
			},
		},
		{
			name:     "deep repair needed",
			failures: 2,
			wantStates: []integrity.State{
				integrity.StateAttempt, integrity.StateFailedCorruption, integrity.StateRepairing,
				integrity.StateRetrying, integrity.StateFailedCorruption, integrity.StateDeepRepairing,
				integrity.StateRetrying, integrity.StateSucceeded,
			},
		},
		{
			name:     "surfaced",
			failures: 3,
			wantErr:  true,
			wantStates: []integrity.State{
				integrity.StateAttempt, integrity.StateFailedCorruption, integrity.StateRepairing,
				integrity.StateRetrying, integrity.StateFailedCorruption, integrity.StateDeepRepairing,
				integrity.StateRetrying, integrity.StateSurfaced,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()
			r := mustCreateResource(t, s, &Resource{Type: ResourceNote, Title: "moss"})

			calls := 0
			s.faults = func(op string) error {
				if op != "get_resource" {
					return nil
				}
				calls++
				if calls <= tt.failures {
					return corrupt
				}
				return nil
			}
			var states []integrity.State
			s.Guard().Observe(func(tr integrity.Transition) {
				states = append(states, tr.State)
			})

			got, err := s.GetResource(ctx, r.ID)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrIndexCorruption) {
					t.Errorf("GetResource() error = %v, want ErrIndexCorruption", err)
				}
			} else {
				if err != nil {
					t.Fatalf("GetResource() error = %v", err)
				}
				if got.ID != r.ID {
					t.Errorf("GetResource() id = %q, want %q", got.ID, r.ID)
				}
			}

			if len(states) != len(tt.wantStates) {
				t.Fatalf("states = %v, want %v", states, tt.wantStates)
			}
			for i := range states {
				if states[i] != tt.wantStates[i] {
					t.Errorf("states[%d] = %v, want %v", i, states[i], tt.wantStates[i])
				}
			}
		})
	}
}

func TestIsCorruption(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sqlite corrupt", err: sqlite3.Error{Code: sqlite3.ErrCorrupt}, want: true},
		{name: "not a database", err: sqlite3.Error{Code: sqlite3.ErrNotADB}, want: true},
		{name: "wrapped", err: fmt.Errorf("query: %w", sqlite3.Error{Code: sqlite3.ErrCorrupt}), want: true},
		{name: "malformed message", err: errors.New("database disk image is malformed"), want: true},
		{name: "fts5 corrupt", err: errors.New("fts5: corruption found reading blob"), want: true},
		{name: "missing fts table", err: errors.New("no such table: resources_fts"), want: true},
		{name: "index corruption kind", err: apperr.Wrap("search", apperr.ErrIndexCorruption, "", errors.New("x")), want: true},
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: false},
		{name: "not found", err: apperr.NotFound("get", "x"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCorruption(tt.err); got != tt.want {
				t.Errorf("IsCorruption(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
