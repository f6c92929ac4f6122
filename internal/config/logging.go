package config

import (
	"context"
	"log/slog"
	"strings"
)

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: root", "value", s.Root)
	logger.InfoContext(ctx, "Config: out_path", "value", s.OutPath)
	logger.InfoContext(ctx, "Config: regex", "value", s.Regex, "engine", s.Engine)
	logger.InfoContext(ctx, "Config: max_depth", "value", s.MaxDepth)

	if len(s.Extensions) > 0 {
		logger.InfoContext(ctx, "Config: ext", "value", strings.Join(s.Extensions, ","))
	} else {
		logger.InfoContext(ctx, "Config: ext", "value", "all")
	}
	if len(s.Exclude) > 0 {
		logger.InfoContext(ctx, "Config: exclude", "count", len(s.Exclude))
	}
	if s.Jobs > 1 {
		logger.InfoContext(ctx, "Config: jobs", "value", s.Jobs)
	}
}

// SettingsLogValue returns a slog.Value for Settings
func SettingsLogValue(s Settings) slog.Value {
	return slog.GroupValue(
		slog.String("root", s.Root),
		slog.String("out_path", s.OutPath),
		slog.String("regex", s.Regex),
		slog.String("engine", s.Engine),
		slog.Int("max_depth", s.MaxDepth),
		slog.Any("ext", s.Extensions),
		slog.Any("exclude", s.Exclude),
		slog.Int("jobs", s.Jobs),
		slog.Duration("lock_timeout", s.LockTimeout),
		slog.String("log_level", s.LogLevel),
	)
}
