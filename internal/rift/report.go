package rift

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/sha1n/rift/internal/include"
)

// FileResult describes the outcome for one indexed file.
type FileResult struct {
	Path    string
	Passes  int
	State   include.State
	Written bool
}

// RunReport summarizes a completed run.
type RunReport struct {
	// FilesListed is the number of eligible files found in the input root.
	FilesListed int
	// FilesRead is the number of files loaded into the content index.
	FilesRead int
	// FilesWritten is the number of resolved files written to the output root.
	FilesWritten int
	// Files holds one entry per indexed file, sorted by path.
	Files []FileResult
	// Warnings holds every recoverable problem, sorted by path.
	Warnings []include.Warning
}

// WarningsOf returns the warnings of the given kind.
func (r *RunReport) WarningsOf(kind include.WarningKind) []include.Warning {
	var result []include.Warning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			result = append(result, w)
		}
	}
	return result
}

// CountDistinct returns the number of warnings of the given kind, counting a
// warning repeated on several passes for the same path and include once.
func (r *RunReport) CountDistinct(kind include.WarningKind) int {
	type key struct{ path, include string }
	seen := make(map[key]bool)
	for _, w := range r.Warnings {
		if w.Kind == kind {
			seen[key{w.Path, w.Include}] = true
		}
	}
	return len(seen)
}

// HasWarnings returns true if any warning was reported.
func (r *RunReport) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// collector is the run's Reporter. It logs every warning and records it.
// Resolution workers share it, so it is guarded by a mutex.
type collector struct {
	logger   *slog.Logger
	mu       sync.Mutex
	warnings []include.Warning
}

func newCollector(logger *slog.Logger) *collector {
	return &collector{logger: logger}
}

// Report implements include.Reporter.
func (c *collector) Report(w include.Warning) {
	c.log(w)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, w)
}

func (c *collector) log(w include.Warning) {
	switch w.Kind {
	case include.MissingInclude:
		c.logger.Warn("Included file doesn't exist, ignoring", "path", w.Path, "include", w.Include)
	case include.DepthExhausted:
		c.logger.Warn("Max inclusion depth reached", "path", w.Path, "depth", w.Depth)
	case include.SourceRead:
		c.logger.Warn("Couldn't read file, skipping", "path", w.Path, "error", w.Err)
	case include.SinkWrite:
		c.logger.Warn("Couldn't write file, skipping", "path", w.Path, "error", w.Err)
	default:
		c.logger.Warn("Unexpected warning", "path", w.Path, "kind", w.Kind.String())
	}
}

// sorted returns the recorded warnings ordered by path then kind. Warnings
// of one file keep their reporting order.
func (c *collector) sorted() []include.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := slices.Clone(c.warnings)
	slices.SortStableFunc(result, func(a, b include.Warning) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Kind, b.Kind))
	})
	return result
}
