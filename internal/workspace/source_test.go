package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// writeFiles creates the given files below dir
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

func TestDirSource_List_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt": "A",
		"b.md":  "B",
		"c":     "C",
	})

	source := NewDirSource(dir, NewFileFilter([]string{"txt"}, nil))
	paths, err := source.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if want := []string{"a.txt"}; !slices.Equal(paths, want) {
		t.Errorf("List() = %v, want %v", paths, want)
	}
}

func TestDirSource_List_AllFilesRelativeSlashPaths(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":            "A",
		"sub/b.txt":        "B",
		"sub/deeper/c.inc": "C",
	})

	source := NewDirSource(dir, nil)
	paths, err := source.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"a.txt", "sub/b.txt", "sub/deeper/c.inc"}
	if !slices.Equal(paths, want) {
		t.Errorf("List() = %v, want %v", paths, want)
	}
}

func TestDirSource_List_SkipsExcludedDirs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":         "A",
		"out/a.txt":     "old output",
		"src/x.tmp":     "scratch",
		"src/keep.html": "K",
	})

	source := NewDirSource(dir, NewFileFilter(nil, []string{"out/**", "**/*.tmp"}))
	paths, err := source.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"a.txt", "src/keep.html"}
	if !slices.Equal(paths, want) {
		t.Errorf("List() = %v, want %v", paths, want)
	}
}

func TestDirSource_List_FollowsFileSymlinks(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"real.txt": "R"})
	if err := os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("Symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "nowhere"), filepath.Join(dir, "dangling.txt")); err != nil {
		t.Skipf("Symlinks not supported: %v", err)
	}

	paths, err := NewDirSource(dir, nil).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"link.txt", "real.txt"}
	if !slices.Equal(paths, want) {
		t.Errorf("List() = %v, want %v", paths, want)
	}
}

func TestDirSource_List_RootErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"file.txt": "F"})

	if _, err := NewDirSource(filepath.Join(dir, "missing"), nil).List(context.Background()); err == nil {
		t.Error("Expected error for missing root")
	}
	if _, err := NewDirSource(filepath.Join(dir, "file.txt"), nil).List(context.Background()); err == nil {
		t.Error("Expected error for file root")
	}
}

func TestDirSource_List_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "A"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirSource(dir, nil).List(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestDirSource_Read(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"sub/a.txt": "hello #include \"b.txt\"\n",
		"bin.dat":   "ab\x00cd",
	})
	source := NewDirSource(dir, nil)

	content, err := source.Read("sub/a.txt")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if content != "hello #include \"b.txt\"\n" {
		t.Errorf("Read() = %q", content)
	}

	if bin, err := source.Read("bin.dat"); err != nil || bin != "ab\x00cd" {
		t.Errorf("Read(bin.dat) = %q, %v, want raw content", bin, err)
	}
	if _, err := source.Read("missing.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}
