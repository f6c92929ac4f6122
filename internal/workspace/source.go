package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sha1n/rift/internal/domain"
)

// DirSource lists and reads eligible files below an input root.
type DirSource struct {
	root   string
	filter *FileFilter
}

// NewDirSource creates a source rooted at root. A nil filter makes every
// regular file eligible.
func NewDirSource(root string, filter *FileFilter) *DirSource {
	if filter == nil {
		filter = NewFileFilter(nil, nil)
	}
	return &DirSource{
		root:   root,
		filter: filter,
	}
}

// List walks the input root and returns the slash separated relative paths
// of all eligible regular files in lexical order. Entries that cannot be
// accessed are skipped with a warning; only an inaccessible root fails.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to access input root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input root is not a directory: %s", s.root)
	}

	var paths []string
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			slog.Warn("Skipping inaccessible entry", "path", path, "error", err)
			return nil
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = domain.NormalizePath(relPath)

		if d.IsDir() {
			if s.filter.ShouldSkipDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !isRegular(path, d) {
			return nil
		}
		if !s.filter.Eligible(relPath) {
			return nil
		}

		paths = append(paths, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// Read returns the content of the file at the slash separated relative path.
func (s *DirSource) Read(relPath string) (string, error) {
	content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(relPath)))
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// isRegular reports whether the entry is a regular file, following symlinks.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
