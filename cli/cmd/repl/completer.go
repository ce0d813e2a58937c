package repl

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/MOARdV/AvionicsSystems-sub005/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "vars", "set", "unset", "tree", "symbols", "edit", "clear", "quit",
}

// keywords are the word operators offered at the top level.
var keywords = []string{"and", "not", "or"}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the identifier at the cursor position and its byte
// boundaries within input. Any rune that cannot appear in a name ends a word,
// including the member-access dot and every operator.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isIdentRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word starting
// at wordStart. For input "x + fc.gear.do" with the word "do", the parent
// path is "fc.gear". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && !isIdentRune(r) {
			break
		}

		pos -= size
	}

	return prefix[pos:]
}

// childCandidates returns the names that complete a word under parent. The
// top level offers every bound name plus the word operators.
func childCandidates(env lang.Env, parent string) []string {
	names := lang.BuiltinLookup(env, parent)

	if parent == "" {
		names = append(names, keywords...)
	} else if len(names) == 0 {
		names = methodNames(env, parent)
	}

	return names
}

// methodNames returns the exported methods of the value bound to path.
func methodNames(env lang.Env, path string) []string {
	v, ok := env.Lookup(path)
	if !ok || v == nil {
		return nil
	}

	t := reflect.TypeOf(v)
	names := make([]string, 0, t.NumMethod())

	for i := range t.NumMethod() {
		names = append(names, t.Method(i).Name)
	}

	return slices.Sorted(slices.Values(names))
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches ranked best-first, the candidate list, and
// the word boundaries. An empty top-level word has no matches. An empty
// word after a dot matches every member.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	if m.mode == modeCtrl {
		if word == "" || wordStart > 0 {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		parent := parentPath(input, wordStart)
		candidates = childCandidates(m.env, parent)

		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// qualify joins a candidate to the parent path of the current word.
func (m model) qualify(name string) string {
	parent := parentPath(m.input.Value(), m.wordStart)
	if parent == "" {
		return name
	}

	return parent + "." + name
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Candidates for which isFn reports true
// are shown with a "()" suffix.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFn func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected, isFn != nil && isFn(match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected, fn bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if fn {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// formatPreview generates a short description of a bound value.
func formatPreview(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case map[string]any:
		return fmt.Sprintf("{ %d entries }", len(v))
	case string:
		s := lang.FormatValue(v)
		if len(s) > 40 {
			s = s[:37] + "..."
		}

		return fmt.Sprintf("%q", s)
	}

	if reflect.TypeOf(value).Kind() == reflect.Func {
		return "function"
	}

	s := lang.FormatValue(value)
	if len(s) > 40 {
		return s[:37] + "..."
	}

	return s
}
