package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dome/internal/apperr"
	"dome/internal/contextutil"
	"dome/internal/indexer"
	"dome/internal/storage"
)

// FolderRequest asks for a directory tree to be imported.
type FolderRequest struct {
	Path      string
	ProjectID string
	FolderID  string // parent folder resource, optional
}

// FolderImport reports the result of ImportFolder.
type FolderImport struct {
	Folder     *storage.Resource
	Folders    int               // folder resources created, the root included
	Imported   []ImportResult    // one per file, duplicates included
	Failed     map[string]string // relative path -> error
	Duplicates int
}

// scannedFile is a regular file found under an imported directory.
type scannedFile struct {
	RelPath string // slash-separated, relative to the scanned root
	Folder  string // RelPath without the file name, "" at the root
	AbsPath string
}

// hidden reports whether a path element should be skipped.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// scanFolder walks root and returns every regular, non-hidden file and every
// non-hidden directory (relative, slash-separated) below root.
func scanFolder(ctx context.Context, root string) ([]scannedFile, []string, error) {
	var files []scannedFile
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			dirs = append(dirs, rel)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		folder := filepath.ToSlash(filepath.Dir(rel))
		if folder == "." {
			folder = ""
		}
		files = append(files, scannedFile{RelPath: rel, Folder: folder, AbsPath: path})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return files, dirs, nil
}

// ImportFolder creates a folder resource for dir and for each of its
// subdirectories, then imports every file into the folder that contains it.
// Failures of single files are collected, not returned.
func (l *library) ImportFolder(ctx context.Context, req FolderRequest) (*FolderImport, error) {
	logger := contextutil.LoggerFromContext(ctx)

	root, err := filepath.Abs(req.Path)
	if err != nil || strings.TrimSpace(req.Path) == "" {
		return nil, apperr.Invalid("path", "is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("import_folder", req.Path)
		}
		return nil, fmt.Errorf("failed to stat folder: %w", err)
	}
	if !info.IsDir() {
		return nil, apperr.Invalid("path", "%s is not a directory", req.Path)
	}

	files, dirs, err := scanFolder(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan folder: %w", err)
	}

	newFolder := func(name, parent string) (*storage.Resource, error) {
		f := &storage.Resource{
			ProjectID:    req.ProjectID,
			Type:         storage.ResourceFolder,
			Title:        indexer.TitleFromFilename(name),
			OriginalName: name,
			FolderID:     parent,
		}
		if err := l.resources.CreateResource(ctx, f); err != nil {
			return nil, err
		}
		l.indexResource(ctx, f)
		return f, nil
	}

	top, err := newFolder(filepath.Base(root), req.FolderID)
	if err != nil {
		return nil, err
	}
	result := &FolderImport{Folder: top, Folders: 1, Failed: make(map[string]string)}

	// WalkDir visits parents before children, so every parent id is known.
	folderIDs := map[string]string{"": top.ID}
	for _, rel := range dirs {
		parent := filepath.ToSlash(filepath.Dir(rel))
		if parent == "." {
			parent = ""
		}
		f, err := newFolder(filepath.Base(rel), folderIDs[parent])
		if err != nil {
			return result, err
		}
		folderIDs[rel] = f.ID
		result.Folders++
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res, err := l.ImportFile(ctx, ImportRequest{
			Path:      file.AbsPath,
			ProjectID: req.ProjectID,
			FolderID:  folderIDs[file.Folder],
		})
		if err != nil {
			logger.WarnContext(ctx, "failed to import file", "rel_path", file.RelPath, "error", err)
			result.Failed[file.RelPath] = err.Error()
			continue
		}
		if res.Duplicate {
			result.Duplicates++
		}
		result.Imported = append(result.Imported, *res)
	}

	logger.InfoContext(ctx, "folder imported", "path", root, "folders", result.Folders,
		"files", len(result.Imported), "duplicates", result.Duplicates, "failed", len(result.Failed))
	return result, nil
}
