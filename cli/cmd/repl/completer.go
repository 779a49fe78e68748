package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "inputs", "edit", "clear", "quit"}

// boundaryRunes delimit completion words. '$' is absent so that input
// references such as $orders complete as one word.
const boundaryRunes = ". \t()[]{}+-*/%<>=!&|,?:;@\"'"

func isWordBoundary(r rune) bool { return strings.ContainsRune(boundaryRunes, r) }

// wordBounds returns the word under the cursor and its byte offsets in
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	// Every boundary rune is a single byte.
	start = strings.LastIndexFunc(input[:cursor], isWordBoundary) + 1

	end = len(input)
	if i := strings.IndexFunc(input[cursor:], isWordBoundary); i >= 0 {
		end = cursor + i
	}

	return input[start:end], start, end
}

// parentPath returns the member path that the word at wordStart is a
// member of: for "x + $orders.customer?.na" it is "$orders.customer".
// Words not preceded by a dot are top-level and yield "".
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	chain := strings.TrimRight(strings.ReplaceAll(prefix, "?.", "."), ".")
	from := strings.LastIndexFunc(chain, func(r rune) bool {
		return r != '.' && isWordBoundary(r)
	})

	return strings.TrimSpace(chain[from+1:])
}

// computeMatches ranks the candidates for the word at the cursor. A blank
// word offers nothing at the top level, so the usage hint stays visible,
// but lists every member after a dot.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	parent := ""

	switch {
	case m.mode == modeCtrl:
		candidates = ctrlCommands
	case wordStart > 0:
		parent = parentPath(input, wordStart)
	}

	if m.mode == modeEval {
		if parent == "" {
			candidates = m.sess.topLevel()
		} else {
			candidates = m.sess.children(parent)
		}
	}

	switch {
	case len(candidates) == 0:
		return nil, nil, wordStart, wordEnd

	case word != "":
		return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd

	case parent == "":
		return nil, nil, wordStart, wordEnd
	}

	matches = make(fuzzy.Matches, len(candidates))
	for i, c := range candidates {
		matches[i] = fuzzy.Match{Str: c, Index: i}
	}

	return matches, candidates, wordStart, wordEnd
}

// candidateStyle pairs the style of a candidate with the style of its
// characters that matched the typed word.
type candidateStyle struct {
	base, hit lipgloss.Style
}

var (
	plainCandidate = candidateStyle{
		base: suggestionStyle,
		hit:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
	}
	selectedCandidate = candidateStyle{
		base: selectedStyle,
		hit: lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true),
	}
)

// renderCandidateBar lays the ranked candidates out on one line, cut off
// with an ellipsis where the next one would overflow width. The candidate
// selected while tab-cycling is highlighted, and functions get a "()"
// suffix.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFunction func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := width - lipgloss.Width(ellipsis)

	parts := make([]string, 0, len(matches))
	used := 0

	for i, match := range matches {
		cell := renderCandidate(match, tabActive && i == suggIdx, isFunction(match.Str))

		need := lipgloss.Width(cell)
		if i > 0 {
			need += len(sep)
		}

		if i > 0 && used+need > room {
			parts = append(parts, ellipsis)

			break
		}

		parts = append(parts, cell)
		used += need
	}

	return strings.Join(parts, sep)
}

// renderCandidate renders one candidate with its matched characters
// emphasized.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	style := plainCandidate
	if selected {
		style = selectedCandidate
	}

	hits := make(map[int]struct{}, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		hits[i] = struct{}{}
	}

	var b strings.Builder

	for i, r := range match.Str {
		s := style.base
		if _, ok := hits[i]; ok {
			s = style.hit
		}

		b.WriteString(s.Render(string(r)))
	}

	if function {
		// Shown only; completion inserts the bare name.
		b.WriteString(style.base.Render("()"))
	}

	return b.String()
}
