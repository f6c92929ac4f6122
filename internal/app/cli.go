package app

import (
	"github.com/sha1n/rift/internal/config"
	"github.com/sha1n/rift/internal/include"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("out_path", "o", "", "Output directory (required)")
	flags.StringP("regex", "r", include.DefaultExpr, "Inclusion regex, the first capture group is the included path")
	flags.IntP("max_depth", "d", config.DefaultMaxDepth, "Max inclusion depth")
	flags.StringSliceP("ext", "e", nil, "Eligible file extensions (comma-separated, empty means all)")
	flags.StringP("root", "C", config.DefaultRoot, "Input directory")
	flags.StringSliceP("exclude", "x", nil, "Glob patterns of input files to skip (comma-separated)")
	flags.String("engine", string(include.EngineRE2), "Regex engine: re2 or ecmascript")
	flags.IntP("jobs", "j", config.DefaultJobs, "Number of files resolved concurrently")
	flags.Duration("lock_timeout", config.DefaultLockTimeout, "How long to wait for another run on the same output directory")
	flags.String("log_level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
}
