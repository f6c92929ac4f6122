package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sha1n/rift/internal/config"
	"github.com/sha1n/rift/internal/include"
	"github.com/sha1n/rift/internal/rift"
	"github.com/sha1n/rift/internal/workspace"
	"github.com/spf13/pflag"
)

// Locker guards an output root against concurrent runs
type Locker interface {
	Lock(ctx context.Context, timeout time.Duration) error
	Unlock() error
}

// RunParams contains dependencies for the run function
type RunParams struct {
	LoadSettings  func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings func(*config.Settings) error
	NewLock       func(outRoot string) (Locker, error)
	Run           func(context.Context, *config.Settings, *slog.Logger) (*rift.RunReport, error)
	Stdout        io.Writer
	Stderr        io.Writer
	Color         bool
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateSettings,
		NewLock: func(outRoot string) (Locker, error) {
			return workspace.NewOutputLock(outRoot)
		},
		Run:    Run,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Color:  isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

// RunWithDeps executes a run with the provided dependencies
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	// Load settings
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Validate settings
	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Configure logging - always use stderr so stdout only carries the summary
	level, err := config.ParseLogLevel(settings.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	stderr := params.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("Starting rift", "version", version)
	config.Log(settings)
	logger.Debug("Resolved settings", "settings", config.SettingsLogValue(*settings))

	lock, err := params.NewLock(settings.OutPath)
	if err != nil {
		return fmt.Errorf("failed to create output lock: %w", err)
	}
	if err := lock.Lock(ctx, settings.LockTimeout); err != nil {
		return fmt.Errorf("failed to lock output directory: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Error("Failed to unlock output directory", "error", err)
		}
	}()

	report, err := params.Run(ctx, settings, logger)
	if err != nil {
		return err
	}

	if params.Stdout != nil {
		PrintSummary(params.Stdout, report, params.Color)
	}
	return nil
}

// Run resolves the input root into the output root. Both roots are resolved
// against the working directory exactly once.
func Run(ctx context.Context, settings *config.Settings, logger *slog.Logger) (*rift.RunReport, error) {
	inRoot, err := filepath.Abs(settings.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	outRoot, err := filepath.Abs(settings.OutPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve out_path: %w", err)
	}

	excludes := settings.Exclude
	if pattern, ok := workspace.OutputExcludePattern(inRoot, outRoot); ok {
		logger.Debug("Excluding output directory from input", "pattern", pattern)
		excludes = append(excludes[:len(excludes):len(excludes)], pattern)
	}

	source := workspace.NewDirSource(inRoot, workspace.NewFileFilter(settings.Extensions, excludes))
	sink := workspace.NewDirSink(outRoot)

	orchestrator := rift.New(source, sink, rift.Options{
		Expr:     settings.Regex,
		Engine:   include.Engine(settings.Engine),
		MaxDepth: settings.MaxDepth,
		Jobs:     settings.Jobs,
		Logger:   logger,
	})
	return orchestrator.Run(ctx)
}
