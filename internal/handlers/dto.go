package handlers

import (
	"time"

	"dome/internal/storage"
)

// ResourceResponse is the JSON form of a resource.
//
// swagger:model ResourceResponse
type ResourceResponse struct {
	ID           string         `json:"id"`
	ProjectID    string         `json:"project_id,omitempty"`
	Type         string         `json:"type"`
	Title        string         `json:"title"`
	Content      string         `json:"content,omitempty"`
	ContentHash  string         `json:"content_hash,omitempty"`
	InternalPath string         `json:"internal_path,omitempty"`
	MimeType     string         `json:"mime_type,omitempty"`
	Size         int64          `json:"size,omitempty"`
	Thumbnail    string         `json:"thumbnail,omitempty"`
	OriginalName string         `json:"original_name,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	FolderID     string         `json:"folder_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// InteractionResponse is the JSON form of an interaction.
//
// swagger:model InteractionResponse
type InteractionResponse struct {
	ID           string         `json:"id"`
	ResourceID   string         `json:"resource_id"`
	Type         string         `json:"type"`
	Content      string         `json:"content"`
	PositionData map[string]any `json:"position_data,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// LinkResponse is the JSON form of a link.
//
// swagger:model LinkResponse
type LinkResponse struct {
	ID        string         `json:"id"`
	SourceID  string         `json:"source_id"`
	TargetID  string         `json:"target_id"`
	Type      string         `json:"type"`
	Weight    float64        `json:"weight"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func toResource(r *storage.Resource) ResourceResponse {
	return ResourceResponse{
		ID:           r.ID,
		ProjectID:    r.ProjectID,
		Type:         string(r.Type),
		Title:        r.Title,
		Content:      r.Content,
		ContentHash:  r.ContentHash,
		InternalPath: r.InternalPath,
		MimeType:     r.MimeType,
		Size:         r.Size,
		Thumbnail:    r.Thumbnail,
		OriginalName: r.OriginalName,
		Metadata:     r.Metadata,
		FolderID:     r.FolderID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toResources(rs []storage.Resource) []ResourceResponse {
	out := make([]ResourceResponse, 0, len(rs))
	for i := range rs {
		out = append(out, toResource(&rs[i]))
	}
	return out
}

func toInteraction(in *storage.Interaction) InteractionResponse {
	return InteractionResponse{
		ID:           in.ID,
		ResourceID:   in.ResourceID,
		Type:         string(in.Type),
		Content:      in.Content,
		PositionData: in.PositionData,
		Metadata:     in.Metadata,
		CreatedAt:    in.CreatedAt,
		UpdatedAt:    in.UpdatedAt,
	}
}

func toInteractions(ins []storage.Interaction) []InteractionResponse {
	out := make([]InteractionResponse, 0, len(ins))
	for i := range ins {
		out = append(out, toInteraction(&ins[i]))
	}
	return out
}

func toLinks(ls []storage.Link) []LinkResponse {
	out := make([]LinkResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, LinkResponse{
			ID:        l.ID,
			SourceID:  l.SourceID,
			TargetID:  l.TargetID,
			Type:      l.Type,
			Weight:    l.Weight,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt,
		})
	}
	return out
}
