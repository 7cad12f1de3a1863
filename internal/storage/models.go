package storage

import "time"

// ResourceType is the kind of content a Resource holds.
type ResourceType string

const (
	ResourceNote     ResourceType = "note"
	ResourceURL      ResourceType = "url"
	ResourcePDF      ResourceType = "pdf"
	ResourceImage    ResourceType = "image"
	ResourceVideo    ResourceType = "video"
	ResourceAudio    ResourceType = "audio"
	ResourceDocument ResourceType = "document"
	ResourceFolder   ResourceType = "folder"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceNote, ResourceURL, ResourcePDF, ResourceImage, ResourceVideo,
		ResourceAudio, ResourceDocument, ResourceFolder:
		return true
	}
	return false
}

// InteractionType is the kind of content attached to a Resource.
type InteractionType string

const (
	InteractionNote       InteractionType = "note"
	InteractionAnnotation InteractionType = "annotation"
	InteractionChat       InteractionType = "chat"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionNote, InteractionAnnotation, InteractionChat:
		return true
	}
	return false
}

// Resource is a top-level piece of user-owned content.
type Resource struct {
	ID           string
	ProjectID    string
	Type         ResourceType
	Title        string
	Content      string // inline text, empty for binary resources
	ContentHash  string // sha256 hex of the blob, empty when there is no blob
	InternalPath string // blob path relative to the blob root
	MimeType     string
	Size         int64
	Thumbnail    string // cached preview as a data URI
	OriginalName string
	Metadata     map[string]any
	FolderID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Interaction is a note, annotation or chat turn attached to a Resource.
type Interaction struct {
	ID           string
	ResourceID   string
	Type         InteractionType
	Content      string
	PositionData map[string]any // e.g. {"page": 3, "offset": 120}
	Metadata     map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Link is a directed, weighted relationship between two Resources.
type Link struct {
	ID        string
	SourceID  string
	TargetID  string
	Type      string
	Weight    float64
	Metadata  map[string]any
	CreatedAt time.Time
}

// ResourceFilter narrows ListResources. Zero values mean "any".
type ResourceFilter struct {
	ProjectID string
	FolderID  string
	Type      ResourceType
	Limit     int
	Offset    int
}

// SearchOptions narrows full-text searches.
type SearchOptions struct {
	Limit     int
	ProjectID string
	Type      string // resource type or interaction type, depending on the search
}

// DeletedResource describes what DeleteResource removed, so callers can clean
// up state living outside the database (vectors, blobs).
type DeletedResource struct {
	Resource       *Resource
	InteractionIDs []string
}

// IntegrityReport is the result of CheckIntegrity.
type IntegrityReport struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}
