package rift

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sha1n/rift/internal/domain"
	"github.com/sha1n/rift/internal/include"
	"golang.org/x/sync/errgroup"
)

// Source lists and reads eligible input files by slash separated relative path.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Read(relPath string) (string, error)
}

// Sink stores resolved files by slash separated relative path.
type Sink interface {
	EnsureParentDirs(relPath string) error
	Write(relPath, content string) error
}

// Options configures a run.
type Options struct {
	// Expr is the inclusion pattern. Its first capture group is the path.
	Expr string
	// Engine selects the regular expression implementation.
	Engine include.Engine
	// MaxDepth bounds the substitution passes per file. Zero disables substitution.
	MaxDepth int
	// Jobs is the number of concurrent resolution workers. Values below 1 mean 1.
	Jobs int
	// Logger receives progress and warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Orchestrator loads a content index from a Source, resolves every file
// against it and writes the results to a Sink.
type Orchestrator struct {
	source Source
	sink   Sink
	opts   Options
	logger *slog.Logger
}

// New creates an Orchestrator.
func New(source Source, sink Sink, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Jobs = max(opts.Jobs, 1)
	return &Orchestrator{
		source: source,
		sink:   sink,
		opts:   opts,
		logger: logger,
	}
}

// Run executes the three phases of a run, strictly in order: load all
// eligible files, resolve every indexed file, write all results.
// An invalid pattern fails before anything is read. Per-file read and
// write failures, missing includes and depth exhaustion are recorded in
// the report and do not fail the run.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	pattern, err := include.Compile(o.opts.Expr, o.opts.Engine)
	if err != nil {
		return nil, err
	}

	c := newCollector(o.logger)
	report := &RunReport{}

	index, err := o.load(ctx, report, c)
	if err != nil {
		return nil, err
	}

	resolutions, err := o.resolve(ctx, index, pattern, c)
	if err != nil {
		return nil, err
	}

	o.write(resolutions, report, c)
	report.Warnings = c.sorted()

	o.logger.Info("Run complete",
		"read", report.FilesRead,
		"written", report.FilesWritten,
		"warnings", len(report.Warnings))
	return report, nil
}

// load builds the content index. Files that cannot be read are left out.
func (o *Orchestrator) load(ctx context.Context, report *RunReport, r include.Reporter) (*domain.ContentIndex, error) {
	paths, err := o.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source files: %w", err)
	}
	report.FilesListed = len(paths)

	files := make([]domain.SourceFile, 0, len(paths))
	for _, path := range paths {
		content, err := o.source.Read(path)
		if err != nil {
			r.Report(include.Warning{Kind: include.SourceRead, Path: path, Err: err})
			continue
		}
		files = append(files, domain.NewSourceFile(path, content))
	}

	index := domain.NewContentIndex(files)
	report.FilesRead = index.Len()
	o.logger.Debug("Content index loaded", "files", index.Len())
	return index, nil
}

// resolve runs the resolver over every indexed file. The index is read-only
// here, so workers need no coordination beyond the shared reporter.
func (o *Orchestrator) resolve(ctx context.Context, index *domain.ContentIndex, pattern *include.Pattern, r include.Reporter) ([]include.Resolution, error) {
	resolver := include.NewResolver(pattern, index, o.opts.MaxDepth, r)
	paths := index.Paths()
	resolutions := make([]include.Resolution, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := resolver.Resolve(path)
			if err != nil {
				return err
			}
			o.logger.Debug("Resolved file", "path", path, "passes", res.Passes, "state", res.State.String())
			resolutions[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolutions, nil
}

// write stores every resolution in path order.
func (o *Orchestrator) write(resolutions []include.Resolution, report *RunReport, r include.Reporter) {
	report.Files = make([]FileResult, 0, len(resolutions))
	for _, res := range resolutions {
		result := FileResult{Path: res.Path, Passes: res.Passes, State: res.State}
		if err := o.writeOne(res); err != nil {
			r.Report(include.Warning{Kind: include.SinkWrite, Path: res.Path, Err: err})
		} else {
			result.Written = true
			report.FilesWritten++
		}
		report.Files = append(report.Files, result)
	}
}

func (o *Orchestrator) writeOne(res include.Resolution) error {
	if err := o.sink.EnsureParentDirs(res.Path); err != nil {
		return err
	}
	return o.sink.Write(res.Path, res.Content)
}
