package include

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestResolver_RoundTrip(t *testing.T) {
	index := newIndex(map[string]string{
		"a.txt": `X #include "b.txt" Y`,
		"b.txt": "B",
	})
	r := NewResolver(MustCompile(DefaultExpr, EngineRE2), index, 5, nil)

	res, err := r.Resolve("a.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Content != "X B Y" {
		t.Errorf("Content = %q, want %q", res.Content, "X B Y")
	}
	if res.State != StateStable || res.Passes != 1 {
		t.Errorf("State = %v, Passes = %d, want stable after 1", res.State, res.Passes)
	}

	res, err = r.Resolve("b.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Content != "B" || res.Passes != 0 || res.State != StateStable {
		t.Errorf("Unexpected resolution for b.txt: %+v", res)
	}
}

func TestResolver_Chained(t *testing.T) {
	index := newIndex(map[string]string{
		"a.txt": `#include "b.txt"`,
		"b.txt": `#include "c.txt"`,
		"c.txt": "Z",
	})

	tests := []struct {
		maxDepth  int
		want      string
		wantState State
		wantWarn  bool
	}{
		{0, `#include "b.txt"`, StatePending, false},
		{1, `#include "c.txt"`, StateDepthExhausted, true},
		{2, "Z", StateDepthExhausted, true},
		{3, "Z", StateStable, false},
		{10, "Z", StateStable, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth=%d", tt.maxDepth), func(t *testing.T) {
			rec := &recorder{}
			r := NewResolver(MustCompile(DefaultExpr, EngineRE2), index, tt.maxDepth, rec)

			res, err := r.Resolve("a.txt")
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if res.Content != tt.want {
				t.Errorf("Content = %q, want %q", res.Content, tt.want)
			}
			if res.State != tt.wantState {
				t.Errorf("State = %v, want %v", res.State, tt.wantState)
			}

			gotWarn := len(rec.warnings) == 1 && rec.warnings[0].Kind == DepthExhausted
			if gotWarn != tt.wantWarn {
				t.Errorf("depth warning = %v, want %v (warnings: %+v)", gotWarn, tt.wantWarn, rec.warnings)
			}
			if gotWarn && (rec.warnings[0].Path != "a.txt" || rec.warnings[0].Depth != tt.maxDepth) {
				t.Errorf("Unexpected warning: %+v", rec.warnings[0])
			}
		})
	}
}

func TestResolver_DepthMonotonicity(t *testing.T) {
	// f0 includes f1 includes ... f5, needing exactly 5 passes
	const n = 5
	files := make(map[string]string, n+1)
	for i := range n {
		files[fmt.Sprintf("f%d.txt", i)] = fmt.Sprintf("%d#include \"f%d.txt\"", i, i+1)
	}
	files[fmt.Sprintf("f%d.txt", n)] = "end"
	index := newIndex(files)
	pattern := MustCompile(DefaultExpr, EngineRE2)
	includer := NewIncluder(pattern, index, nil)

	for depth := 0; depth <= n+1; depth++ {
		t.Run(fmt.Sprintf("depth=%d", depth), func(t *testing.T) {
			want, _ := index.Lookup("f0.txt")
			for range min(depth, n) {
				want, _ = includer.ApplyOnce("f0.txt", want)
			}

			res, err := NewResolver(pattern, index, depth, nil).Resolve("f0.txt")
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if res.Content != want {
				t.Errorf("Content = %q, want %q", res.Content, want)
			}
			if depth >= n && res.Content != "01234end" {
				t.Errorf("Expected fully flattened text, got %q", res.Content)
			}
		})
	}
}

func TestResolver_IdempotentWhenStable(t *testing.T) {
	index := newIndex(map[string]string{
		"a.txt": `A #include "b.txt" #include "missing.txt"`,
		"b.txt": "B",
	})
	pattern := MustCompile(DefaultExpr, EngineRE2)
	r := NewResolver(pattern, index, 5, nil)

	res, err := r.Resolve("a.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.State != StateStable {
		t.Fatalf("State = %v, want stable", res.State)
	}

	again, subst := NewIncluder(pattern, index, nil).ApplyOnce("a.txt", res.Content)
	if subst || again != res.Content {
		t.Errorf("Stable body changed on another pass: %q -> %q", res.Content, again)
	}
}

func TestResolver_CycleBoundedByDepth(t *testing.T) {
	index := newIndex(map[string]string{
		"a.txt": `a(#include "b.txt")`,
		"b.txt": `b(#include "a.txt")`,
	})
	rec := &recorder{}
	r := NewResolver(MustCompile(DefaultExpr, EngineRE2), index, 3, rec)

	res, err := r.Resolve("a.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := `a(b(a(b(#include "a.txt"))))`
	if res.Content != want {
		t.Errorf("Content = %q, want %q", res.Content, want)
	}
	if res.State != StateDepthExhausted || res.Passes != 3 {
		t.Errorf("State = %v, Passes = %d", res.State, res.Passes)
	}
	if len(rec.warnings) != 1 || rec.warnings[0].Kind != DepthExhausted {
		t.Errorf("Expected a single depth warning, got %+v", rec.warnings)
	}
}

func TestResolver_NoCrossContamination(t *testing.T) {
	index := newIndex(map[string]string{
		"a.txt": `#include "b.txt"`,
		"b.txt": `#include "c.txt"`,
		"c.txt": "C",
	})
	r := NewResolver(MustCompile(DefaultExpr, EngineRE2), index, 1, nil)

	// Resolving b first must not change what a sees as b's content
	if _, err := r.Resolve("b.txt"); err != nil {
		t.Fatalf("Resolve(b) failed: %v", err)
	}
	res, err := r.Resolve("a.txt")
	if err != nil {
		t.Fatalf("Resolve(a) failed: %v", err)
	}
	if res.Content != `#include "c.txt"` {
		t.Errorf("Content = %q, want b's original text", res.Content)
	}
	if got, _ := index.Lookup("b.txt"); got != `#include "c.txt"` {
		t.Errorf("index was mutated: b.txt = %q", got)
	}
}

func TestResolver_NotFound(t *testing.T) {
	r := NewResolver(MustCompile(DefaultExpr, EngineRE2), newIndex(nil), 5, nil)

	_, err := r.Resolve("ghost.txt")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost.txt") {
		t.Errorf("Expected path in error, got %q", err.Error())
	}
}

func TestResolver_NegativeDepth(t *testing.T) {
	index := newIndex(map[string]string{"a.txt": `#include "b.txt"`, "b.txt": "B"})
	rec := &recorder{}
	r := NewResolver(MustCompile(DefaultExpr, EngineRE2), index, -3, rec)

	res, err := r.Resolve("a.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Content != `#include "b.txt"` || res.Passes != 0 || res.State != StatePending {
		t.Errorf("Negative depth should behave like 0, got %+v", res)
	}
	if len(rec.warnings) != 0 {
		t.Errorf("Unexpected warnings: %+v", rec.warnings)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StatePending:        "pending",
		StateSubstituted:    "substituted",
		StateStable:         "stable",
		StateDepthExhausted: "depth exhausted",
		State(42):           "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestWarning_String(t *testing.T) {
	tests := []struct {
		warning Warning
		contain string
	}{
		{Warning{Kind: MissingInclude, Path: "a.txt", Include: "b.txt"}, `"b.txt" doesn't exist`},
		{Warning{Kind: DepthExhausted, Path: "a.txt", Depth: 5}, "max inclusion depth 5 reached"},
		{Warning{Kind: SourceRead, Path: "a.txt", Err: errors.New("boom")}, "couldn't read: boom"},
		{Warning{Kind: SinkWrite, Path: "a.txt", Err: errors.New("boom")}, "couldn't write: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.warning.Kind.String(), func(t *testing.T) {
			if got := tt.warning.String(); !strings.Contains(got, tt.contain) {
				t.Errorf("String() = %q, want it to contain %q", got, tt.contain)
			}
		})
	}
}

func TestResolver_BinaryFileUnchanged(t *testing.T) {
	bin := "\x00\x01#include \"b.txt\""
	index := newIndex(map[string]string{
		"logo.bin": bin,
		"b.txt":    "B",
	})
	rec := &recorder{}
	r := NewResolver(MustCompile(DefaultExpr, EngineRE2), index, 5, rec)

	res, err := r.Resolve("logo.bin")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Content != bin || res.Passes != 0 || res.State != StateStable {
		t.Errorf("Binary file should pass through unchanged, got %+v", res)
	}
	if len(rec.warnings) != 0 {
		t.Errorf("Unexpected warnings: %+v", rec.warnings)
	}
}
