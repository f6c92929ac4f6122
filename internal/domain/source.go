package domain

import (
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// SourceFile represents a file loaded from the input root.
type SourceFile struct {
	// Path is the file path relative to the input root, in slash form.
	// Example: "templates/header.html"
	Path string

	// Extension is the file extension without the leading dot.
	// Example: "html", "txt"
	Extension string

	// Content is the original, unresolved file content.
	Content string

	// Binary marks content that looks binary. Binary files are copied
	// through unchanged and never scanned for directives.
	Binary bool
}

// NewSourceFile creates a SourceFile, normalizing the path and deriving the extension.
func NewSourceFile(relPath, content string) SourceFile {
	p := NormalizePath(relPath)
	return SourceFile{
		Path:      p,
		Extension: strings.TrimPrefix(path.Ext(p), "."),
		Content:   content,
		Binary:    IsBinary(content),
	}
}

// IsBinary checks if the content appears to be binary by looking for null bytes
// in the first 512 bytes. This is a heuristic used by git and other tools.
func IsBinary(content string) bool {
	return strings.IndexByte(content[:min(len(content), 512)], 0) >= 0
}

// NormalizePath converts a relative path to the slash separated form used as index key.
func NormalizePath(relPath string) string {
	p := filepath.ToSlash(relPath)
	return strings.TrimPrefix(p, "./")
}

// ContentIndex maps relative paths to original file contents.
// It is built once per run and never modified afterwards, so it is safe
// for concurrent readers.
type ContentIndex struct {
	files map[string]SourceFile
}

// NewContentIndex builds an index from the given files.
// When two files share a path the later one wins.
func NewContentIndex(files []SourceFile) *ContentIndex {
	byPath := make(map[string]SourceFile, len(files))
	for _, f := range files {
		f.Path = NormalizePath(f.Path)
		byPath[f.Path] = f
	}
	return &ContentIndex{files: byPath}
}

// Lookup returns the original content for a path. Lookups are case-sensitive.
func (c *ContentIndex) Lookup(relPath string) (string, bool) {
	if c == nil {
		return "", false
	}
	f, ok := c.files[relPath]
	return f.Content, ok
}

// Binary reports whether the indexed file at the path is binary.
func (c *ContentIndex) Binary(relPath string) bool {
	if c == nil {
		return false
	}
	return c.files[relPath].Binary
}

// Len returns the number of indexed files.
func (c *ContentIndex) Len() int {
	if c == nil {
		return 0
	}
	return len(c.files)
}

// Paths returns all indexed paths in sorted order.
func (c *ContentIndex) Paths() []string {
	if c == nil {
		return nil
	}
	paths := make([]string, 0, len(c.files))
	for p := range c.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}
