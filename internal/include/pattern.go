package include

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// DefaultExpr matches directives like #include "relative/path".
const DefaultExpr = `#include "([\w./%]*)"`

// Engine selects the regular expression implementation.
type Engine string

// Supported engines
const (
	// EngineRE2 uses Go's regexp package (RE2 syntax, linear time).
	EngineRE2 Engine = "re2"
	// EngineECMAScript uses regexp2 in ECMAScript mode, which supports
	// backreferences and lookarounds.
	EngineECMAScript Engine = "ecmascript"
)

// Engines lists all supported engines.
var Engines = []Engine{EngineRE2, EngineECMAScript}

// Match is a single inclusion directive found in a text.
type Match struct {
	// Path is the text of the first capture group.
	Path string
	// Start and End are byte offsets of the whole directive.
	Start int
	End   int
}

// Prefix returns the text between the previous match end and this match.
func (m Match) Prefix(text string, prevEnd int) string {
	return text[prevEnd:m.Start]
}

// Text returns the matched directive.
func (m Match) Text(text string) string {
	return text[m.Start:m.End]
}

// Pattern is a compiled inclusion pattern. It is safe for concurrent use.
type Pattern struct {
	expr   string
	engine Engine
	re2    *regexp.Regexp
	ecma   *regexp2.Regexp
}

// Compile compiles an inclusion pattern. The pattern must have at least one
// capture group. When it has more, the first group is the referenced path.
// Any problem is returned as a *PatternError.
func Compile(expr string, engine Engine) (*Pattern, error) {
	p := &Pattern{expr: expr, engine: engine}
	var groups int

	switch engine {
	case EngineRE2, "":
		p.engine = EngineRE2
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &PatternError{Pattern: expr, Reason: "syntax error", Err: err}
		}
		p.re2 = re
		groups = re.NumSubexp()
	case EngineECMAScript:
		re, err := regexp2.Compile(expr, regexp2.ECMAScript)
		if err != nil {
			return nil, &PatternError{Pattern: expr, Reason: "syntax error", Err: err}
		}
		p.ecma = re
		// Group 0 is the whole match
		groups = len(re.GetGroupNumbers()) - 1
	default:
		return nil, &PatternError{Pattern: expr, Reason: fmt.Sprintf("unknown engine %q", engine)}
	}

	if groups < 1 {
		return nil, &PatternError{Pattern: expr, Reason: "regex doesn't include a capture group"}
	}
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string, engine Engine) *Pattern {
	p, err := Compile(expr, engine)
	if err != nil {
		panic(err)
	}
	return p
}

// MatchAll compiles expr with the RE2 engine and returns its matches in text.
func MatchAll(expr, text string) ([]Match, error) {
	p, err := Compile(expr, EngineRE2)
	if err != nil {
		return nil, err
	}
	return p.MatchAll(text), nil
}

// String returns the source expression.
func (p *Pattern) String() string {
	return p.expr
}

// Engine returns the engine the pattern was compiled with.
func (p *Pattern) Engine() Engine {
	return p.engine
}

// MatchAll returns all non-overlapping matches in text, leftmost first.
func (p *Pattern) MatchAll(text string) []Match {
	if p.ecma != nil {
		return p.matchECMAScript(text)
	}

	locs := p.re2.FindAllStringSubmatchIndex(text, -1)
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		m := Match{Start: loc[0], End: loc[1]}
		// An optional group that did not participate reports -1
		if loc[2] >= 0 {
			m.Path = text[loc[2]:loc[3]]
		}
		matches = append(matches, m)
	}
	return matches
}

// matchECMAScript runs the regexp2 engine. regexp2 reports rune offsets,
// which are translated back to byte offsets.
func (p *Pattern) matchECMAScript(text string) []Match {
	var matches []Match
	var offsets []int

	m, err := p.ecma.FindStringMatch(text)
	for err == nil && m != nil {
		if offsets == nil {
			offsets = runeByteOffsets(text)
		}
		match := Match{
			Start: offsets[m.Index],
			End:   offsets[m.Index+m.Length],
		}
		if g := m.GroupByNumber(1); g != nil && len(g.Captures) > 0 {
			match.Path = g.String()
		}
		matches = append(matches, match)
		m, err = p.ecma.FindNextMatch(m)
	}
	return matches
}

// runeByteOffsets returns the byte offset of every rune index in s,
// plus a final entry for len(s).
func runeByteOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
