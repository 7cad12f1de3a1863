package handlers

import (
	"errors"
	"net/http"
	"testing"

	"go.uber.org/mock/gomock"

	"dome/internal/apperr"
	"dome/internal/handlers/mocks"
	"dome/internal/search"
	"dome/internal/storage"
	"dome/internal/vectorindex"
)

func TestSearchHandler_Keyword(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(*mocks.MockSearcher)
		wantStatus int
		wantCount  int
	}{
		{
			name:   "passes filters through",
			target: "/api/search?q=sqlite&limit=5&project_id=p1&type=note&interaction_type=annotation",
			setup: func(m *mocks.MockSearcher) {
				m.EXPECT().
					Search(gomock.Any(), "sqlite", search.Options{Limit: 5, ProjectID: "p1", ResourceType: storage.ResourceNote, InteractionType: storage.InteractionAnnotation}).
					Return(&search.Results{
						Resources:    []storage.Resource{{ID: "r1", Title: "SQLite notes", Type: storage.ResourceNote}},
						Interactions: []storage.Interaction{{ID: "i1", ResourceID: "r1", Type: storage.InteractionAnnotation}},
					}, nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name:   "empty query is rejected by the service",
			target: "/api/search?q=",
			setup: func(m *mocks.MockSearcher) {
				m.EXPECT().Search(gomock.Any(), "", gomock.Any()).Return(nil, apperr.Invalid("query", "is required"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad limit",
			target:     "/api/search?q=x&limit=ten",
			setup:      func(m *mocks.MockSearcher) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "corruption surfaced",
			target: "/api/search?q=x",
			setup: func(m *mocks.MockSearcher) {
				m.EXPECT().Search(gomock.Any(), "x", gomock.Any()).
					Return(nil, apperr.Wrap("search_resources", apperr.ErrIndexCorruption, "", errors.New("database disk image is malformed")))
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := mocks.NewMockSearcher(ctrl)
			tt.setup(m)

			w := serve(t, NewSearchHandler(m).Keyword, http.MethodGet, "/api/search", tt.target, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decode[SearchResponse](t, w)
			if got := len(resp.Resources) + len(resp.Interactions); got != tt.wantCount {
				t.Errorf("results = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestSearchHandler_Semantic(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		setup      func(*mocks.MockSearcher)
		wantStatus int
		check      func(*testing.T, SemanticResponse)
	}{
		{
			name: "text query",
			body: SemanticRequest{Class: "source", Query: "vector tables", Limit: 3, OwnerID: "r1"},
			setup: func(m *mocks.MockSearcher) {
				m.EXPECT().
					SemanticSearch(gomock.Any(), search.SemanticRequest{Class: vectorindex.ClassSource, Query: "vector tables", Limit: 3, OwnerID: "r1"}).
					Return(&search.SemanticResults{
						Model:   "nomic-embed-text",
						Matches: []vectorindex.Match{{EntityID: "r1", ChunkIndex: 2, Distance: 0.12}},
					}, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp SemanticResponse) {
				if len(resp.Matches) != 1 || resp.Matches[0].ChunkIndex != 2 {
					t.Errorf("matches = %+v", resp.Matches)
				}
				if resp.Degraded || resp.Model != "nomic-embed-text" {
					t.Errorf("response = %+v", resp)
				}
			},
		},
		{
			name: "degraded with fallback",
			body: SemanticRequest{Class: "resource", Query: "budget"},
			setup: func(m *mocks.MockSearcher) {
				m.EXPECT().SemanticSearch(gomock.Any(), gomock.Any()).Return(&search.SemanticResults{
					Degraded: true,
					Reason:   "embedding provider unavailable",
					Fallback: &search.Results{Resources: []storage.Resource{{ID: "r9", Title: "Budget"}}},
				}, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp SemanticResponse) {
				if !resp.Degraded || resp.Fallback == nil || len(resp.Fallback.Resources) != 1 {
					t.Errorf("response = %+v", resp)
				}
				if resp.Matches == nil {
					t.Error("matches should encode as an empty list")
				}
			},
		},
		{
			name:       "unknown class",
			body:       SemanticRequest{Class: "chat", Query: "x"},
			setup:      func(m *mocks.MockSearcher) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid JSON",
			body:       "{not json",
			setup:      func(m *mocks.MockSearcher) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"class":"source","query":"x","k":3}`,
			setup:      func(m *mocks.MockSearcher) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "query and vector together",
			body: SemanticRequest{Class: "source", Query: "x", Vector: []float32{0.1, 0.2}},
			setup: func(m *mocks.MockSearcher) {
				m.EXPECT().SemanticSearch(gomock.Any(), gomock.Any()).
					Return(nil, apperr.Invalid("query", "give either query text or a vector, not both"))
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := mocks.NewMockSearcher(ctrl)
			tt.setup(m)

			w := serve(t, NewSearchHandler(m).Semantic, http.MethodPost, "/api/search/semantic", "/api/search/semantic", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.check != nil {
				tt.check(t, decode[SemanticResponse](t, w))
			}
		})
	}
}
