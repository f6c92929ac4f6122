package include

import (
	"strings"

	"github.com/sha1n/rift/internal/domain"
)

// Includer performs single substitution passes against a fixed content index.
type Includer struct {
	pattern  *Pattern
	index    *domain.ContentIndex
	reporter Reporter
}

// NewIncluder creates an Includer. A nil reporter discards warnings.
func NewIncluder(pattern *Pattern, index *domain.ContentIndex, reporter Reporter) *Includer {
	if reporter == nil {
		reporter = NopReporter
	}
	return &Includer{
		pattern:  pattern,
		index:    index,
		reporter: reporter,
	}
}

// ApplyOnce replaces every directive in text whose path is in the index with
// that file's original content. Directives with unknown targets are kept
// verbatim and reported as MissingInclude. Substituted content is not
// re-scanned in the same pass. The returned flag is true when at least one
// directive was substituted. path identifies the file for warnings.
func (i *Includer) ApplyOnce(path, text string) (string, bool) {
	matches := i.pattern.MatchAll(text)
	if len(matches) == 0 {
		return text, false
	}

	var b strings.Builder
	b.Grow(len(text))
	substituted := false
	rest := 0

	for _, m := range matches {
		content, ok := i.index.Lookup(m.Path)
		if !ok {
			i.reporter.Report(Warning{Kind: MissingInclude, Path: path, Include: m.Path})
			continue
		}
		b.WriteString(m.Prefix(text, rest))
		b.WriteString(content)
		rest = m.End
		substituted = true
	}

	if !substituted {
		return text, false
	}
	b.WriteString(text[rest:])
	return b.String(), true
}
