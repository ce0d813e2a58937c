package repl

import (
	"slices"
	"testing"

	"github.com/MOARdV/AvionicsSystems-sub005/lang"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "alt", 3, "alt", 0, 3},
		{"dot_separated", "fc.gear", 7, "gear", 3, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "math.max(fo", 11, "fo", 9, 11},
		{"after_comma", "f(a, fo", 7, "fo", 5, 7},
		{"after_concat", "a..fo", 5, "fo", 3, 5},
		{"after_comparison", "a ~= fo", 7, "fo", 5, 7},
		{"after_caret", "a^fo", 4, "fo", 2, 4},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"underscore", "fc.gear_down", 12, "gear_down", 3, 12},
		{"hyphen_splits", "a-b", 3, "b", 2, 3},
		{"empty_after_dot", "fc.", 3, "", 3, 3},
		{"cursor_past_end", "ab", 9, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "fc.gear.", 8, "fc.gear"},
		{"after_operator", "x + fc.gear.", 12, "fc.gear"},
		{"after_paren", "(fc.gear.", 9, "fc.gear"},
		{"no_chain", "a + ", 4, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"after_not", "not fc.", 7, "fc"},
		{"word_after_space", "fc ", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parentPath(tt.input, tt.wordStart)
			if got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

type flightComputer struct{}

func (flightComputer) GetThrottle() float64            { return 0.5 }
func (flightComputer) GetAltitude(mode float64) float64 { return mode }

func testEnv(tb testing.TB) lang.Env {
	tb.Helper()

	env := lang.Builtins()
	env["fc"] = flightComputer{}

	if err := env.Set("ship.gear", true); err != nil {
		tb.Fatal(err)
	}

	return env
}

func TestChildCandidates(t *testing.T) {
	env := testEnv(t)

	top := childCandidates(env, "")
	for _, want := range []string{"math", "fc", "ship", "and", "or", "not"} {
		if !slices.Contains(top, want) {
			t.Errorf("top-level candidates %v missing %q", top, want)
		}
	}

	if got := childCandidates(env, "ship"); !slices.Equal(got, []string{"gear"}) {
		t.Errorf("childCandidates(ship) = %v", got)
	}

	if got := childCandidates(env, "fc"); !slices.Equal(got, []string{"GetAltitude", "GetThrottle"}) {
		t.Errorf("childCandidates(fc) = %v", got)
	}

	if got := childCandidates(env, "nothing"); len(got) != 0 {
		t.Errorf("childCandidates(nothing) = %v, want none", got)
	}
}

func TestComputeMatches(t *testing.T) {
	m := newModel(t.Context(), Config{Env: testEnv(t)}, NewHistory(""))

	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  string // best match, or "" for none
	}{
		{name: "top level", input: "mat", want: "math"},
		{name: "member", input: "math.sq", want: "sqrt"},
		{name: "empty top level", input: "", want: ""},
		{name: "after dot", input: "ship.", want: "gear"},
		{name: "command", mode: modeCtrl, input: "sym", want: "symbols"},
		{name: "command argument", mode: modeCtrl, input: "vars ma", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, _, _ := m.computeMatches()

			switch {
			case tt.want == "" && len(matches) != 0:
				t.Errorf("matches = %v, want none", matches)
			case tt.want != "" && (len(matches) == 0 || matches[0].Str != tt.want):
				t.Errorf("matches = %v, want first %q", matches, tt.want)
			}
		})
	}
}

func TestFormatPreview(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{2.5, "2.5"},
		{"gear", `"gear"`},
		{map[string]any{"a": 1.0, "b": 2.0}, "{ 2 entries }"},
		{func() {}, "function"},
	}

	for _, tt := range tests {
		if got := formatPreview(tt.in); got != tt.want {
			t.Errorf("formatPreview(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
