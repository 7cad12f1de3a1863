// Package blob stores binary payloads on local disk, named by content hash
// under type-scoped directories.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"dome/internal/apperr"
	"dome/internal/contextutil"
)

// Directory layout under the blob root.
const (
	DirPDFs      = "pdfs"
	DirImages    = "images"
	DirAudio     = "audio"
	DirVideos    = "videos"
	DirDocuments = "documents"
	DirTemp      = "temp"
)

var layout = []string{DirPDFs, DirImages, DirAudio, DirVideos, DirDocuments, DirTemp}

// StaleTempAge is how old a file in temp/ must be before a sweep removes it.
const StaleTempAge = time.Hour

// ImportResult identifies an imported blob.
type ImportResult struct {
	InternalPath string // slash-separated, relative to the blob root
	Hash         string // sha256, hex
	MimeType     string
	Size         int64
	OriginalName string
}

// CleanupReport is returned by CleanupOrphans.
type CleanupReport struct {
	DeletedCount int      `json:"deleted_count"`
	FreedBytes   int64    `json:"freed_bytes"`
	Deleted      []string `json:"deleted,omitempty"`
}

// Store is a content-addressable file store rooted at a directory.
type Store struct {
	root      string
	protected string // relative path never removed by CleanupOrphans
}

// New creates the blob root and its type directories. avatarPath, if set, is
// excluded from orphan sweeps; it may be absolute (inside root) or relative.
func New(root, avatarPath string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blob root: %w", err)
	}
	for _, dir := range layout {
		if err := os.MkdirAll(filepath.Join(abs, dir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create blob directory %s: %w", dir, err)
		}
	}

	s := &Store{root: abs}
	if avatarPath != "" {
		rel := avatarPath
		if filepath.IsAbs(avatarPath) {
			if rel, err = filepath.Rel(abs, avatarPath); err != nil {
				return nil, fmt.Errorf("failed to resolve avatar path: %w", err)
			}
		}
		s.protected = filepath.ToSlash(filepath.Clean(rel))
	}
	return s, nil
}

// Root returns the absolute blob root.
func (s *Store) Root() string {
	return s.root
}

// DirForKind maps a resource type to its storage directory.
func DirForKind(kind string) string {
	switch kind {
	case "pdf":
		return DirPDFs
	case "image":
		return DirImages
	case "audio":
		return DirAudio
	case "video":
		return DirVideos
	}
	return DirDocuments
}

// KindForMIME guesses a resource type from a MIME type.
func KindForMIME(mime string) string {
	switch {
	case mime == "application/pdf":
		return "pdf"
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "audio/"):
		return "audio"
	case strings.HasPrefix(mime, "video/"):
		return "video"
	}
	return "document"
}

// resolve turns an internal path into an absolute one, rejecting paths that
// would leave the root.
func (s *Store) resolve(internalPath string) (string, error) {
	clean := filepath.FromSlash(path.Clean(internalPath))
	if internalPath == "" || !filepath.IsLocal(clean) {
		return "", apperr.Invalid("internal_path", "%q is not inside the blob root", internalPath)
	}
	return filepath.Join(s.root, clean), nil
}

// Import copies sourcePath into the store under the directory for kind. The
// bytes go to temp/ first and are renamed into place, so a crash never leaves
// a partial file under its final name. Importing identical bytes twice is a
// no-op returning the same path.
func (s *Store) Import(ctx context.Context, sourcePath, kind string) (*ImportResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	src, err := os.Open(sourcePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound("blob_import", sourcePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	info, err := src.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, apperr.Invalid("path", "%s is not a regular file", sourcePath)
	}

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to detect mime type: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind source: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, DirTemp), "import-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to copy source: %w", err)
	}
	hash := hex.EncodeToString(h.Sum(nil))

	ext := strings.ToLower(filepath.Ext(sourcePath))
	if ext == "" {
		ext = mt.Extension()
	}
	internalPath := path.Join(DirForKind(kind), hash+ext)
	dest := filepath.Join(s.root, filepath.FromSlash(internalPath))

	if _, err := os.Stat(dest); err == nil {
		logger.DebugContext(ctx, "blob already present", "path", internalPath)
	} else {
		if err := os.Rename(tmpPath, dest); err != nil {
			return nil, fmt.Errorf("failed to move blob into place: %w", err)
		}
		committed = true
		logger.InfoContext(ctx, "blob imported", "path", internalPath, "size", humanize.Bytes(uint64(size)), "mime", mt.String())
	}

	return &ImportResult{
		InternalPath: internalPath,
		Hash:         hash,
		MimeType:     mt.String(),
		Size:         size,
		OriginalName: filepath.Base(sourcePath),
	}, nil
}

// Delete removes the blob at internalPath.
func (s *Store) Delete(internalPath string) error {
	p, err := s.resolve(internalPath)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound("blob_delete", internalPath)
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// Exists reports whether a blob is stored at internalPath.
func (s *Store) Exists(internalPath string) (bool, error) {
	p, err := s.resolve(internalPath)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat blob: %w", err)
}

// Open opens the blob at internalPath for reading.
func (s *Store) Open(internalPath string) (*os.File, error) {
	p, err := s.resolve(internalPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound("blob_open", internalPath)
	}
	return f, err
}

// ReadAsInlineData returns the blob as a base64 data URI.
func (s *Store) ReadAsInlineData(internalPath string) (string, error) {
	p, err := s.resolve(internalPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", apperr.NotFound("blob_read", internalPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read blob: %w", err)
	}
	return "data:" + mimetype.Detect(data).String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// CleanupOrphans deletes every file under the root that is not in referenced,
// except the protected avatar and temp files younger than StaleTempAge (an
// import may still be writing them). It must not run inline with imports: a
// blob is written before the resource row that references it.
func (s *Store) CleanupOrphans(ctx context.Context, referenced map[string]struct{}) (*CleanupReport, error) {
	logger := contextutil.LoggerFromContext(ctx)
	report := &CleanupReport{}
	cutoff := time.Now().Add(-StaleTempAge)

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == s.protected {
			return nil
		}
		if _, ok := referenced[rel]; ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if strings.HasPrefix(rel, DirTemp+"/") && info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.WarnContext(ctx, "failed to remove orphan blob", "path", rel, "error", err)
			return nil
		}
		report.DeletedCount++
		report.FreedBytes += info.Size()
		report.Deleted = append(report.Deleted, rel)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to sweep blob root: %w", err)
	}

	if report.DeletedCount > 0 {
		logger.InfoContext(ctx, "orphan blobs removed",
			"count", report.DeletedCount, "freed", humanize.Bytes(uint64(report.FreedBytes)))
	}
	return report, nil
}
