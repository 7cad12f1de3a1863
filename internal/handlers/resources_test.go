package handlers

import (
	"net/http"
	"testing"

	"go.uber.org/mock/gomock"

	"dome/internal/apperr"
	"dome/internal/service"
	svcmocks "dome/internal/service/mocks"
	"dome/internal/storage"
)

func TestResourceHandler_Import(t *testing.T) {
	tests := []struct {
		name          string
		body          any
		setup         func(*svcmocks.MockLibrary)
		wantStatus    int
		wantDuplicate bool
	}{
		{
			name: "new file",
			body: ImportRequest{Path: "/tmp/report.pdf", ProjectID: "p1"},
			setup: func(m *svcmocks.MockLibrary) {
				m.EXPECT().ImportFile(gomock.Any(), service.ImportRequest{Path: "/tmp/report.pdf", ProjectID: "p1"}).
					Return(&service.ImportResult{Resource: &storage.Resource{ID: "r1", Type: storage.ResourcePDF}}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "duplicate returns the existing resource",
			body: ImportRequest{Path: "/tmp/copy.pdf"},
			setup: func(m *svcmocks.MockLibrary) {
				m.EXPECT().ImportFile(gomock.Any(), gomock.Any()).
					Return(&service.ImportResult{Resource: &storage.Resource{ID: "r1"}, Duplicate: true}, nil)
			},
			wantStatus:    http.StatusOK,
			wantDuplicate: true,
		},
		{
			name: "explicit type",
			body: ImportRequest{Path: "/tmp/talk.bin", Type: "audio"},
			setup: func(m *svcmocks.MockLibrary) {
				m.EXPECT().ImportFile(gomock.Any(), service.ImportRequest{Path: "/tmp/talk.bin", Type: storage.ResourceAudio}).
					Return(&service.ImportResult{Resource: &storage.Resource{ID: "r2", Type: storage.ResourceAudio}}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "missing file",
			body: ImportRequest{Path: "/nope"},
			setup: func(m *svcmocks.MockLibrary) {
				m.EXPECT().ImportFile(gomock.Any(), gomock.Any()).Return(nil, apperr.NotFound("import_file", "/nope"))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid JSON",
			body:       "[",
			setup:      func(m *svcmocks.MockLibrary) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := svcmocks.NewMockLibrary(ctrl)
			tt.setup(m)

			w := serve(t, NewResourceHandler(m).Import, http.MethodPost, "/api/resources/import", "/api/resources/import", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus >= 300 {
				return
			}
			if resp := decode[ImportResponse](t, w); resp.Duplicate != tt.wantDuplicate {
				t.Errorf("duplicate = %v, want %v", resp.Duplicate, tt.wantDuplicate)
			}
		})
	}
}

func TestResourceHandler_ImportFolder(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := svcmocks.NewMockLibrary(ctrl)
	m.EXPECT().ImportFolder(gomock.Any(), service.FolderRequest{Path: "/tmp/notes", ProjectID: "p1"}).
		Return(&service.FolderImport{
			Folder:  &storage.Resource{ID: "f1", Type: storage.ResourceFolder},
			Folders: 2,
			Imported: []service.ImportResult{
				{Resource: &storage.Resource{ID: "r1"}},
				{Resource: &storage.Resource{ID: "r2"}, Duplicate: true},
			},
			Duplicates: 1,
			Failed:     map[string]string{"broken.md": "permission denied"},
		}, nil)

	w := serve(t, NewResourceHandler(m).Import, http.MethodPost, "/api/resources/import", "/api/resources/import",
		ImportRequest{Path: "/tmp/notes", ProjectID: "p1", Folder: true})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	resp := decode[FolderImportResponse](t, w)
	if resp.Folder.ID != "f1" || resp.Folders != 2 || len(resp.Imported) != 2 || resp.Duplicates != 1 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Failed["broken.md"] == "" {
		t.Error("failed files missing from response")
	}
}

func TestResourceHandler_CreateNote(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := svcmocks.NewMockLibrary(ctrl)
	m.EXPECT().CreateNote(gomock.Any(), service.NoteRequest{Content: "# Plans\n\nship it"}).
		Return(&storage.Resource{ID: "n1", Type: storage.ResourceNote, Title: "Plans"}, nil)

	w := serve(t, NewResourceHandler(m).CreateNote, http.MethodPost, "/api/resources/notes", "/api/resources/notes",
		NoteRequest{Content: "# Plans\n\nship it"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if resp := decode[ResourceResponse](t, w); resp.Title != "Plans" || resp.Type != "note" {
		t.Errorf("response = %+v", resp)
	}
}

func TestResourceHandler_GetPatchDelete(t *testing.T) {
	title := "Renamed"

	tests := []struct {
		name       string
		method     string
		handler    func(*ResourceHandler) http.HandlerFunc
		body       any
		setup      func(*svcmocks.MockLibrary)
		wantStatus int
	}{
		{
			name:    "get",
			method:  http.MethodGet,
			handler: func(h *ResourceHandler) http.HandlerFunc { return h.Get },
			setup: func(m *svcmocks.MockLibrary) {
				m.EXPECT().GetResource(gomock.Any(), "r1").Return(&storage.Resource{ID: "r1"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:    "get missing",
			method:  http.MethodGet,
			handler: func(h *ResourceHandler) http.HandlerFunc { return h.Get },
			setup: func(m *svcmocks.MockLibrary) {
				m.EXPECT().GetResource(gomock.Any(), "r1").Return(nil, apperr.NotFound("get_resource", "r1"))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:    "patch title and drop a metadata key",
			method:  http.MethodPatch,
			handler: func(h *ResourceHandler) http.HandlerFunc { return h.Patch },
			body:    `{"title":"Renamed","metadata":{"stale":null,"pages":12}}`,
			setup: func(m *svcmocks.MockLibrary) {
				m.EXPECT().UpdateResource(gomock.Any(), "r1", service.ResourcePatch{
					Title:    &title,
					Metadata: map[string]any{"stale": nil, "pages": float64(12)},
				}).Return(&storage.Resource{ID: "r1", Title: "Renamed"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:    "patch blank title",
			method:  http.MethodPatch,
			handler: func(h *ResourceHandler) http.HandlerFunc { return h.Patch },
			body:    `{"title":"  "}`,
			setup: func(m *svcmocks.MockLibrary) {
				m.EXPECT().UpdateResource(gomock.Any(), "r1", gomock.Any()).Return(nil, apperr.Invalid("title", "must not be blank"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:    "delete",
			method:  http.MethodDelete,
			handler: func(h *ResourceHandler) http.HandlerFunc { return h.Delete },
			setup: func(m *svcmocks.MockLibrary) {
				m.EXPECT().DeleteResource(gomock.Any(), "r1").
					Return(&service.DeleteReport{ResourceID: "r1", Interactions: 3, BlobDeleted: true}, nil)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := svcmocks.NewMockLibrary(ctrl)
			tt.setup(m)

			w := serve(t, tt.handler(NewResourceHandler(m)), tt.method, "/api/resources/{id}", "/api/resources/r1", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestResourceHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := svcmocks.NewMockLibrary(ctrl)
	m.EXPECT().ListResources(gomock.Any(), storage.ResourceFilter{FolderID: "f1", Type: storage.ResourceNote, Limit: 10, Offset: 20}).
		Return([]storage.Resource{{ID: "a"}, {ID: "b"}}, nil)

	h := NewResourceHandler(m)
	w := serve(t, h.List, http.MethodGet, "/api/resources", "/api/resources?folder_id=f1&type=note&limit=10&offset=20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode[[]ResourceResponse](t, w); len(got) != 2 {
		t.Errorf("got %d resources, want 2", len(got))
	}

	w = serve(t, h.List, http.MethodGet, "/api/resources", "/api/resources?offset=-1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative offset status = %d, want 400", w.Code)
	}
}

func TestResourceHandler_Interactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := svcmocks.NewMockLibrary(ctrl)
	h := NewResourceHandler(m)

	m.EXPECT().AddInteraction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, in *storage.Interaction) error {
		if in.ResourceID != "r1" || in.Type != storage.InteractionAnnotation || in.PositionData["page"] != float64(3) {
			t.Errorf("interaction = %+v", in)
		}
		in.ID = "i1"
		return nil
	})
	w := serve(t, h.CreateInteraction, http.MethodPost, "/api/resources/{id}/interactions", "/api/resources/r1/interactions",
		InteractionRequest{Type: "annotation", Content: "key claim", PositionData: map[string]any{"page": 3}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", w.Code)
	}
	if resp := decode[InteractionResponse](t, w); resp.ID != "i1" {
		t.Errorf("id = %q, want i1", resp.ID)
	}

	m.EXPECT().ListInteractions(gomock.Any(), "r1", storage.InteractionNote).
		Return([]storage.Interaction{{ID: "i2", ResourceID: "r1", Type: storage.InteractionNote}}, nil)
	w = serve(t, h.ListInteractions, http.MethodGet, "/api/resources/{id}/interactions", "/api/resources/r1/interactions?type=note", nil)
	if got := decode[[]InteractionResponse](t, w); len(got) != 1 || got[0].ID != "i2" {
		t.Errorf("list = %+v", got)
	}

	m.EXPECT().UpdateInteraction(gomock.Any(), "i2", "edited", map[string]any(nil)).
		Return(&storage.Interaction{ID: "i2", Content: "edited"}, nil)
	w = serve(t, h.UpdateInteraction, http.MethodPatch, "/api/interactions/{id}", "/api/interactions/i2", InteractionRequest{Content: "edited"})
	if w.Code != http.StatusOK {
		t.Errorf("update status = %d, want 200", w.Code)
	}

	m.EXPECT().DeleteInteraction(gomock.Any(), "i2").Return(nil)
	w = serve(t, h.DeleteInteraction, http.MethodDelete, "/api/interactions/{id}", "/api/interactions/i2", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}

	m.EXPECT().AddInteraction(gomock.Any(), gomock.Any()).Return(apperr.NotFound("create_interaction", "gone"))
	w = serve(t, h.CreateInteraction, http.MethodPost, "/api/resources/{id}/interactions", "/api/resources/gone/interactions",
		InteractionRequest{Type: "note", Content: "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing parent status = %d, want 404", w.Code)
	}
}

func TestResourceHandler_Links(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := svcmocks.NewMockLibrary(ctrl)
	h := NewResourceHandler(m)

	m.EXPECT().CreateLink(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, l *storage.Link) error {
		l.ID = "l1"
		return nil
	})
	w := serve(t, h.CreateLink, http.MethodPost, "/api/links", "/api/links", LinkRequest{SourceID: "a", TargetID: "b", Type: "cites", Weight: 0.5})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", w.Code)
	}
	if resp := decode[LinkResponse](t, w); resp.ID != "l1" || resp.Weight != 0.5 {
		t.Errorf("link = %+v", resp)
	}

	m.EXPECT().ListLinks(gomock.Any(), "a").Return(
		[]storage.Link{{ID: "l1", SourceID: "a", TargetID: "b"}},
		nil, nil)
	w = serve(t, h.ListLinks, http.MethodGet, "/api/resources/{id}/links", "/api/resources/a/links", nil)
	resp := decode[LinksResponse](t, w)
	if len(resp.Outgoing) != 1 || resp.Incoming == nil || len(resp.Incoming) != 0 {
		t.Errorf("links = %+v", resp)
	}

	m.EXPECT().DeleteLink(gomock.Any(), "l1").Return(nil)
	w = serve(t, h.DeleteLink, http.MethodDelete, "/api/links/{id}", "/api/links/l1", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}
}

func TestResourceHandler_Settings(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := svcmocks.NewMockLibrary(ctrl)
	h := NewResourceHandler(m)

	m.EXPECT().SetSetting(gomock.Any(), "embedding.model", "all-minilm").Return(nil)
	w := serve(t, h.PutSetting, http.MethodPut, "/api/settings/{key}", "/api/settings/embedding.model", SettingRequest{Value: "all-minilm"})
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d, want 200", w.Code)
	}

	m.EXPECT().SetSetting(gomock.Any(), "vector.source.dimension", "3").
		Return(apperr.Invalid("key", "vector.* settings are managed by the index"))
	w = serve(t, h.PutSetting, http.MethodPut, "/api/settings/{key}", "/api/settings/vector.source.dimension", SettingRequest{Value: "3"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("reserved key status = %d, want 400", w.Code)
	}

	m.EXPECT().GetSetting(gomock.Any(), "embedding.model").Return("all-minilm", nil)
	w = serve(t, h.GetSetting, http.MethodGet, "/api/settings/{key}", "/api/settings/embedding.model", nil)
	if resp := decode[SettingResponse](t, w); resp.Value != "all-minilm" {
		t.Errorf("setting = %+v", resp)
	}

	m.EXPECT().GetSetting(gomock.Any(), "missing").Return("", apperr.NotFound("get_setting", "missing"))
	w = serve(t, h.GetSetting, http.MethodGet, "/api/settings/{key}", "/api/settings/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing setting status = %d, want 404", w.Code)
	}

	m.EXPECT().ListSettings(gomock.Any()).Return(map[string]string{"embedding.model": "all-minilm"}, nil)
	w = serve(t, h.ListSettings, http.MethodGet, "/api/settings", "/api/settings", nil)
	if got := decode[map[string]string](t, w); got["embedding.model"] != "all-minilm" {
		t.Errorf("settings = %v", got)
	}
}
