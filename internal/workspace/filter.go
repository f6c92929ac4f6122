package workspace

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileFilter determines which files are eligible for the content index.
type FileFilter struct {
	extensions map[string]bool
	patterns   []string
}

// NewFileFilter creates a FileFilter. An empty extension list makes every
// extension eligible. Extensions are matched case-sensitively, with or
// without a leading dot. Exclude patterns are doublestar globs matched
// against slash separated paths relative to the input root.
func NewFileFilter(extensions []string, excludes []string) *FileFilter {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			exts[ext] = true
		}
	}
	return &FileFilter{
		extensions: exts,
		patterns:   excludes,
	}
}

// ValidatePatterns returns an error for the first pattern doublestar rejects.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	return nil
}

// Eligible reports whether a regular file at relPath belongs in the index.
func (f *FileFilter) Eligible(relPath string) bool {
	if f.ShouldExclude(relPath) {
		return false
	}
	if len(f.extensions) == 0 {
		return true
	}
	return f.extensions[GetFileExtension(relPath)]
}

// ShouldExclude returns true if the given path matches any exclusion pattern.
// The path should be relative to the input root.
func (f *FileFilter) ShouldExclude(relPath string) bool {
	// Normalize path separators
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range f.patterns {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

// ShouldSkipDir returns true if a "dir/**" pattern covers the whole directory.
func (f *FileFilter) ShouldSkipDir(relDir string) bool {
	relDir = filepath.ToSlash(relDir)

	for _, pattern := range f.patterns {
		dirPattern, ok := strings.CutSuffix(pattern, "/**")
		if !ok {
			continue
		}
		if matched, _ := doublestar.Match(dirPattern, relDir); matched {
			return true
		}
	}
	return false
}

// GetFileExtension returns the file extension without the leading dot.
// Returns empty string if no extension.
func GetFileExtension(relPath string) string {
	ext := path.Ext(filepath.ToSlash(relPath))
	return strings.TrimPrefix(ext, ".")
}

// OutputExcludePattern returns an exclude pattern covering outRoot when it
// lies inside inRoot, so a run never reads its own earlier output.
func OutputExcludePattern(inRoot, outRoot string) (string, bool) {
	absIn, err := filepath.Abs(inRoot)
	if err != nil {
		return "", false
	}
	absOut, err := filepath.Abs(outRoot)
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(absIn, absOut)
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return "", false
	}
	return escapeMeta(filepath.ToSlash(rel)) + "/**", true
}

// escapeMeta backslash-escapes the characters doublestar treats as pattern syntax.
func escapeMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '*', '?', '[', ']', '{', '}':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
