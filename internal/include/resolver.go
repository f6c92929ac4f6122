package include

import (
	"fmt"

	"github.com/sha1n/rift/internal/domain"
)

// State is the position of a file in the resolution state machine.
type State int

const (
	// StatePending is the initial state. A file stays Pending when no pass is allowed.
	StatePending State = iota
	// StateSubstituted means the last pass changed the body and another pass may follow.
	StateSubstituted
	// StateStable means a pass found nothing to substitute.
	StateStable
	// StateDepthExhausted means the last allowed pass still substituted.
	StateDepthExhausted
)

// String returns a human-readable representation of the state
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSubstituted:
		return "substituted"
	case StateStable:
		return "stable"
	case StateDepthExhausted:
		return "depth exhausted"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of resolving one file.
type Resolution struct {
	Path    string
	Content string
	// Passes is the number of passes that performed a substitution.
	Passes int
	State  State
}

// Resolver runs bounded substitution passes over files of a content index.
// It holds no mutable state and can be shared between goroutines as long as
// its Reporter is safe for concurrent use.
type Resolver struct {
	includer *Includer
	index    *domain.ContentIndex
	maxDepth int
	reporter Reporter
}

// NewResolver creates a Resolver. A negative maxDepth is treated as zero.
func NewResolver(pattern *Pattern, index *domain.ContentIndex, maxDepth int, reporter Reporter) *Resolver {
	if reporter == nil {
		reporter = NopReporter
	}
	return &Resolver{
		includer: NewIncluder(pattern, index, reporter),
		index:    index,
		maxDepth: max(maxDepth, 0),
		reporter: reporter,
	}
}

// Resolve substitutes the directives of the file at path until a pass finds
// nothing to substitute or maxDepth passes have run. Each pass matches against
// the current, partially resolved body while lookups always return original
// contents. Reaching the limit is reported as DepthExhausted and the last
// body is still returned. Binary files are returned unchanged without a pass.
func (r *Resolver) Resolve(path string) (Resolution, error) {
	body, ok := r.index.Lookup(path)
	if !ok {
		return Resolution{}, fmt.Errorf("failed to resolve %s: %w", path, ErrNotFound)
	}

	res := Resolution{Path: path, Content: body, State: StatePending}
	if r.index.Binary(path) {
		res.State = StateStable
		return res, nil
	}
	for res.Passes < r.maxDepth {
		next, substituted := r.includer.ApplyOnce(path, res.Content)
		if !substituted {
			res.State = StateStable
			return res, nil
		}
		res.Content = next
		res.Passes++
		res.State = StateSubstituted
	}

	if res.State == StateSubstituted {
		res.State = StateDepthExhausted
		r.reporter.Report(Warning{Kind: DepthExhausted, Path: path, Depth: r.maxDepth})
	}
	return res, nil
}
