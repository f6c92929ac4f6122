package include

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a path that is not in the content index.
var ErrNotFound = errors.New("path not found in content index")

// PatternError reports an inclusion pattern that cannot be used.
// It is fatal to a whole run since every file shares the same pattern.
type PatternError struct {
	Pattern string
	Reason  string
	Err     error
}

func (e *PatternError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid inclusion pattern %q: %s: %v", e.Pattern, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid inclusion pattern %q: %s", e.Pattern, e.Reason)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// WarningKind classifies recoverable problems reported during a run.
type WarningKind int

const (
	// MissingInclude is a directive whose target is not in the content index.
	MissingInclude WarningKind = iota
	// DepthExhausted is a file that still substituted on its last allowed pass.
	DepthExhausted
	// SourceRead is a file that could not be loaded into the content index.
	SourceRead
	// SinkWrite is a resolved file that could not be written.
	SinkWrite
)

// String returns a human-readable name for the warning kind
func (k WarningKind) String() string {
	switch k {
	case MissingInclude:
		return "missing include"
	case DepthExhausted:
		return "depth exhausted"
	case SourceRead:
		return "source read"
	case SinkWrite:
		return "sink write"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal problem. The run continues after it is reported.
type Warning struct {
	Kind WarningKind
	// Path is the file being processed.
	Path string
	// Include is the referenced path for MissingInclude warnings.
	Include string
	// Depth is the pass limit for DepthExhausted warnings.
	Depth int
	// Err is the underlying error for SourceRead and SinkWrite warnings.
	Err error
}

func (w Warning) String() string {
	switch w.Kind {
	case MissingInclude:
		return fmt.Sprintf("%s: included file %q doesn't exist, directive kept", w.Path, w.Include)
	case DepthExhausted:
		return fmt.Sprintf("%s: max inclusion depth %d reached", w.Path, w.Depth)
	case SourceRead:
		return fmt.Sprintf("%s: couldn't read: %v", w.Path, w.Err)
	case SinkWrite:
		return fmt.Sprintf("%s: couldn't write: %v", w.Path, w.Err)
	default:
		return fmt.Sprintf("%s: %s", w.Path, w.Kind)
	}
}

// Reporter receives non-fatal warnings.
type Reporter interface {
	Report(w Warning)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(w Warning)

// Report calls f(w).
func (f ReporterFunc) Report(w Warning) {
	f(w)
}

// NopReporter discards all warnings.
var NopReporter Reporter = ReporterFunc(func(Warning) {})
