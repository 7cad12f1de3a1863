package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"dome/internal/contextutil"
	"dome/internal/service"
	"dome/internal/storage"
)

// BlobOpener opens stored blobs by their internal path.
type BlobOpener interface {
	Open(internalPath string) (*os.File, error)
}

// ViewHandler serves resources for people: text resources as rendered HTML
// pages and binary resources as their raw blob.
type ViewHandler struct {
	library  service.Library
	blobs    BlobOpener
	parser   goldmark.Markdown
	template *template.Template
}

// viewPageData holds template data for rendered resource pages.
type viewPageData struct {
	Title   string
	Type    string
	Updated string
	Content template.HTML
}

var viewTemplate = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 860px;
      line-height: 1.65;
      color: #1f2937;
    }
    header {
      border-bottom: 1px solid #e5e7eb;
      margin-bottom: 1.5rem;
    }
    pre {
      background: #f3f4f6;
      padding: 1rem;
      overflow-x: auto;
      border-radius: 6px;
    }
    code {
      font-family: 'SFMono-Regular', Consolas, Menlo, monospace;
    }
    blockquote {
      border-left: 3px solid #93c5fd;
      margin-left: 0;
      padding-left: 1rem;
      color: #4b5563;
    }
    table {
      border-collapse: collapse;
    }
    td, th {
      border: 1px solid #e5e7eb;
      padding: 0.3rem 0.6rem;
    }
    .meta {
      color: #6b7280;
      font-size: 0.9rem;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p class="meta">{{.Type}} &middot; updated {{.Updated}}</p>
  </header>
  <article>{{.Content}}</article>
</body>
</html>`))

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(library service.Library, blobs BlobOpener) *ViewHandler {
	return &ViewHandler{
		library: library,
		blobs:   blobs,
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: viewTemplate,
	}
}

// ServeHTTP handles GET /resources/{id}/view.
func (h *ViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	res, err := h.library.GetResource(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load resource")
		return
	}

	if res.Content == "" && res.InternalPath != "" {
		h.serveBlob(w, r, res)
		return
	}

	htmlContent, err := h.renderMarkdown([]byte(res.Content))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "resource_id", res.ID, "error", err)
		http.Error(w, "failed to render resource", http.StatusInternalServerError)
		return
	}

	pageData := viewPageData{
		Title:   res.Title,
		Type:    string(res.Type),
		Updated: res.UpdatedAt.Format("2006-01-02 15:04"),
		Content: template.HTML(htmlContent),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, pageData); err != nil {
		logger.ErrorContext(ctx, "failed to execute view template", "resource_id", res.ID, "error", err)
		http.Error(w, "failed to render resource", http.StatusInternalServerError)
		return
	}
}

func (h *ViewHandler) serveBlob(w http.ResponseWriter, r *http.Request, res *storage.Resource) {
	ctx := r.Context()

	f, err := h.blobs.Open(res.InternalPath)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to open blob")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to stat blob", "path", res.InternalPath, "error", err)
		http.Error(w, "failed to read blob", http.StatusInternalServerError)
		return
	}

	if res.MimeType != "" {
		w.Header().Set("Content-Type", res.MimeType)
	}
	name := res.OriginalName
	if name == "" {
		name = filepath.Base(res.InternalPath)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", strings.ReplaceAll(name, `"`, "")))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *ViewHandler) renderMarkdown(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := h.parser.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
