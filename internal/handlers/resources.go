package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"dome/internal/contextutil"
	"dome/internal/service"
	"dome/internal/storage"
)

// ResourceHandler serves resources, their interactions and links, and settings.
type ResourceHandler struct {
	library service.Library
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(library service.Library) *ResourceHandler {
	return &ResourceHandler{library: library}
}

// ImportRequest represents a file or folder import request.
//
// swagger:model ImportRequest
type ImportRequest struct {
	Path      string `json:"path"`
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	FolderID  string `json:"folder_id,omitempty"`
	// Folder imports Path as a directory tree.
	Folder bool `json:"folder,omitempty"`
}

// ImportResponse represents the result of a file import.
//
// swagger:model ImportResponse
type ImportResponse struct {
	Resource  ResourceResponse `json:"resource"`
	Duplicate bool             `json:"duplicate"`
}

// FolderImportResponse represents the result of a folder import.
//
// swagger:model FolderImportResponse
type FolderImportResponse struct {
	Folder     ResourceResponse  `json:"folder"`
	Folders    int               `json:"folders"`
	Imported   []ImportResponse  `json:"imported"`
	Duplicates int               `json:"duplicates"`
	Failed     map[string]string `json:"failed,omitempty"`
}

// NoteRequest represents a note creation request.
//
// swagger:model NoteRequest
type NoteRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	ProjectID string `json:"project_id,omitempty"`
	FolderID  string `json:"folder_id,omitempty"`
}

// PatchRequest lists the resource fields to change. Absent fields are kept;
// a null metadata value removes that key.
//
// swagger:model PatchRequest
type PatchRequest struct {
	Title     *string        `json:"title,omitempty"`
	Content   *string        `json:"content,omitempty"`
	ProjectID *string        `json:"project_id,omitempty"`
	FolderID  *string        `json:"folder_id,omitempty"`
	Thumbnail *string        `json:"thumbnail,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// InteractionRequest represents an interaction create or update request.
//
// swagger:model InteractionRequest
type InteractionRequest struct {
	Type         string         `json:"type,omitempty"`
	Content      string         `json:"content"`
	PositionData map[string]any `json:"position_data,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// LinkRequest represents a link creation request.
//
// swagger:model LinkRequest
type LinkRequest struct {
	SourceID string         `json:"source_id"`
	TargetID string         `json:"target_id"`
	Type     string         `json:"type,omitempty"`
	Weight   float64        `json:"weight,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// LinksResponse holds the links of one resource.
//
// swagger:model LinksResponse
type LinksResponse struct {
	Outgoing []LinkResponse `json:"outgoing"`
	Incoming []LinkResponse `json:"incoming"`
}

// SettingRequest represents a setting value.
//
// swagger:model SettingRequest
type SettingRequest struct {
	Value string `json:"value"`
}

// SettingResponse represents one setting.
//
// swagger:model SettingResponse
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *ResourceHandler) badBody(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to decode request body", "error", err)
	writeError(w, http.StatusBadRequest, "Invalid JSON body")
}

// Import handles POST /api/resources/import.
func (h *ResourceHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ImportRequest
	if err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	if req.Folder {
		res, err := h.library.ImportFolder(ctx, service.FolderRequest{
			Path:      req.Path,
			ProjectID: req.ProjectID,
			FolderID:  req.FolderID,
		})
		if err != nil {
			handleServiceError(ctx, w, err, "Failed to import folder")
			return
		}
		out := FolderImportResponse{
			Folder:     toResource(res.Folder),
			Folders:    res.Folders,
			Imported:   make([]ImportResponse, 0, len(res.Imported)),
			Duplicates: res.Duplicates,
			Failed:     res.Failed,
		}
		for _, imp := range res.Imported {
			out.Imported = append(out.Imported, ImportResponse{Resource: toResource(imp.Resource), Duplicate: imp.Duplicate})
		}
		writeJSON(ctx, w, http.StatusCreated, out)
		return
	}

	res, err := h.library.ImportFile(ctx, service.ImportRequest{
		Path:      req.Path,
		Type:      storage.ResourceType(req.Type),
		Title:     req.Title,
		ProjectID: req.ProjectID,
		FolderID:  req.FolderID,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to import file")
		return
	}
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(ctx, w, status, ImportResponse{Resource: toResource(res.Resource), Duplicate: res.Duplicate})
}

// CreateNote handles POST /api/resources/notes.
func (h *ResourceHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req NoteRequest
	if err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}
	res, err := h.library.CreateNote(ctx, service.NoteRequest{
		Title:     req.Title,
		Content:   req.Content,
		ProjectID: req.ProjectID,
		FolderID:  req.FolderID,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to create note")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, toResource(res))
}

// List handles GET /api/resources.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := storage.ResourceFilter{
		ProjectID: q.Get("project_id"),
		FolderID:  q.Get("folder_id"),
		Type:      storage.ResourceType(q.Get("type")),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	res, err := h.library.ListResources(ctx, filter)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list resources")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toResources(res))
}

// Get handles GET /api/resources/{id}.
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.library.GetResource(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load resource")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toResource(res))
}

// Patch handles PATCH /api/resources/{id}.
func (h *ResourceHandler) Patch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PatchRequest
	if err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}
	res, err := h.library.UpdateResource(ctx, chi.URLParam(r, "id"), service.ResourcePatch{
		Title:     req.Title,
		Content:   req.Content,
		ProjectID: req.ProjectID,
		FolderID:  req.FolderID,
		Thumbnail: req.Thumbnail,
		Metadata:  req.Metadata,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update resource")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toResource(res))
}

// Delete handles DELETE /api/resources/{id}.
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.library.DeleteResource(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to delete resource")
		return
	}
	writeJSON(ctx, w, http.StatusOK, report)
}

// ListInteractions handles GET /api/resources/{id}/interactions?type=.
func (h *ResourceHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.library.ListInteractions(ctx, chi.URLParam(r, "id"), storage.InteractionType(r.URL.Query().Get("type")))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list interactions")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toInteractions(res))
}

// CreateInteraction handles POST /api/resources/{id}/interactions.
func (h *ResourceHandler) CreateInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req InteractionRequest
	if err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}
	in := &storage.Interaction{
		ResourceID:   chi.URLParam(r, "id"),
		Type:         storage.InteractionType(req.Type),
		Content:      req.Content,
		PositionData: req.PositionData,
		Metadata:     req.Metadata,
	}
	if err := h.library.AddInteraction(ctx, in); err != nil {
		handleServiceError(ctx, w, err, "Failed to add interaction")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, toInteraction(in))
}

// UpdateInteraction handles PATCH /api/interactions/{id}.
func (h *ResourceHandler) UpdateInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req InteractionRequest
	if err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}
	in, err := h.library.UpdateInteraction(ctx, chi.URLParam(r, "id"), req.Content, req.PositionData)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update interaction")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toInteraction(in))
}

// DeleteInteraction handles DELETE /api/interactions/{id}.
func (h *ResourceHandler) DeleteInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.library.DeleteInteraction(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete interaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateLink handles POST /api/links.
func (h *ResourceHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LinkRequest
	if err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}
	link := &storage.Link{
		SourceID: req.SourceID,
		TargetID: req.TargetID,
		Type:     req.Type,
		Weight:   req.Weight,
		Metadata: req.Metadata,
	}
	if err := h.library.CreateLink(ctx, link); err != nil {
		handleServiceError(ctx, w, err, "Failed to create link")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, toLinks([]storage.Link{*link})[0])
}

// DeleteLink handles DELETE /api/links/{id}.
func (h *ResourceHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.library.DeleteLink(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete link")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLinks handles GET /api/resources/{id}/links.
func (h *ResourceHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, to, err := h.library.ListLinks(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list links")
		return
	}
	writeJSON(ctx, w, http.StatusOK, LinksResponse{Outgoing: toLinks(from), Incoming: toLinks(to)})
}

// ListSettings handles GET /api/settings.
func (h *ResourceHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.library.ListSettings(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list settings")
		return
	}
	writeJSON(ctx, w, http.StatusOK, settings)
}

// GetSetting handles GET /api/settings/{key}.
func (h *ResourceHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")
	value, err := h.library.GetSetting(ctx, key)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load setting")
		return
	}
	writeJSON(ctx, w, http.StatusOK, SettingResponse{Key: key, Value: value})
}

// PutSetting handles PUT /api/settings/{key}.
func (h *ResourceHandler) PutSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := strings.TrimSpace(chi.URLParam(r, "key"))

	var req SettingRequest
	if err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}
	if err := h.library.SetSetting(ctx, key, req.Value); err != nil {
		handleServiceError(ctx, w, err, "Failed to store setting")
		return
	}
	writeJSON(ctx, w, http.StatusOK, SettingResponse{Key: key, Value: req.Value})
}
