package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes resolved files below an output root.
type DirSink struct {
	root string
}

// NewDirSink creates a sink rooted at root.
func NewDirSink(root string) *DirSink {
	return &DirSink{root: root}
}

// EnsureParentDirs creates any missing directories above the output file.
func (s *DirSink) EnsureParentDirs(relPath string) error {
	target, err := s.target(relPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// Write writes content to the output file atomically.
// Uses write-to-temp + rename pattern so readers never see a partial file.
func (s *DirSink) Write(relPath, content string) error {
	target, err := s.target(relPath)
	if err != nil {
		return err
	}

	// Temp file in the target directory keeps the rename on one filesystem
	tempFile, err := os.CreateTemp(filepath.Dir(target), ".rift-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.WriteString(content); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, target); err != nil {
		// Clean up temp file on error
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file to %s: %w", target, err)
	}

	return nil
}

// target maps a relative path to its location below the output root.
func (s *DirSink) target(relPath string) (string, error) {
	local := filepath.FromSlash(relPath)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("path escapes output root: %s", relPath)
	}
	return filepath.Join(s.root, local), nil
}
