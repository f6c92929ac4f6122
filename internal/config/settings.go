package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sha1n/rift/internal/include"
	"github.com/sha1n/rift/internal/workspace"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultMaxDepth    = 5
	DefaultRoot        = "."
	DefaultJobs        = 1
	DefaultLockTimeout = 30 * time.Second
	DefaultLogLevel    = "info"
)

// Settings application settings
type Settings struct {
	OutPath     string        `mapstructure:"out_path"`
	Regex       string        `mapstructure:"regex"`
	MaxDepth    int           `mapstructure:"max_depth"`
	Extensions  []string      `mapstructure:"ext"`
	Root        string        `mapstructure:"root"`
	Exclude     []string      `mapstructure:"exclude"`
	Engine      string        `mapstructure:"engine"`
	Jobs        int           `mapstructure:"jobs"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
	LogLevel    string        `mapstructure:"log_level"`
}

// flagKeys maps configuration keys to their CLI flag names
var flagKeys = map[string]string{
	"out_path":     "out_path",
	"regex":        "regex",
	"max_depth":    "max_depth",
	"ext":          "ext",
	"root":         "root",
	"exclude":      "exclude",
	"engine":       "engine",
	"jobs":         "jobs",
	"lock_timeout": "lock_timeout",
	"log_level":    "log_level",
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("regex", include.DefaultExpr)
	v.SetDefault("max_depth", DefaultMaxDepth)
	v.SetDefault("root", DefaultRoot)
	v.SetDefault("engine", string(include.EngineRE2))
	v.SetDefault("jobs", DefaultJobs)
	v.SetDefault("lock_timeout", DefaultLockTimeout)
	v.SetDefault("log_level", DefaultLogLevel)

	// Environment variables
	v.SetEnvPrefix("RIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key := range flagKeys {
		_ = v.BindEnv(key, "RIFT_"+strings.ToUpper(key))
	}

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Comma separated lists may arrive as a single element from env or .env
	settings.Extensions = splitList(settings.Extensions)
	settings.Exclude = splitList(settings.Exclude)

	settings.OutPath = expandHomeDir(strings.TrimSpace(settings.OutPath))
	settings.Root = expandHomeDir(strings.TrimSpace(settings.Root))
	settings.Engine = strings.ToLower(strings.TrimSpace(settings.Engine))

	return &settings, nil
}

// splitList splits comma separated elements, trims spaces and drops empty ones
func splitList(values []string) []string {
	var parts []string
	for _, value := range values {
		for part := range strings.SplitSeq(value, ",") {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return filterEmptyStrings(parts)
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ParseLogLevel converts a level name to a slog.Level
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
	return level, nil
}

// ValidateSettings checks for missing or out of range settings.
// The inclusion pattern is not checked here; an unusable pattern is
// reported by the run itself.
func ValidateSettings(s *Settings) error {
	if s.OutPath == "" {
		return errors.New("out_path is required")
	}

	if s.Root == "" {
		return errors.New("root cannot be empty")
	}

	if s.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got: %d", s.MaxDepth)
	}

	if s.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got: %d", s.Jobs)
	}

	if !slices.Contains(include.Engines, include.Engine(s.Engine)) {
		return fmt.Errorf("engine must be 're2' or 'ecmascript', got: %s", s.Engine)
	}

	if s.LockTimeout <= 0 {
		return errors.New("lock_timeout must be positive")
	}

	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}

	return workspace.ValidatePatterns(s.Exclude)
}
