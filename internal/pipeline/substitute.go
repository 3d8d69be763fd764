package pipeline

import (
	"cmp"
	"slices"
	"strings"

	"github.com/alnah/go-invoicedocx/internal/docx"
)

// Substitute replaces every occurrence of each key in repl across all
// paragraphs of the body, including table cells and nested tables. It
// returns the number of replacements made.
//
// Matching is exact and case-sensitive. At any position the longest key
// wins, so "{{total}}" never eats part of "{{total_due}}". Inserted values
// are not rescanned. Tokens may span several runs: the value goes into the
// first run touched and the consumed text is trimmed from the others, so
// formatting of runs outside the match survives. Unknown tokens stay as
// literal text.
func Substitute(pkg *docx.Package, repl map[string]string) int {
	keys := sortedKeys(repl)
	if len(keys) == 0 {
		return 0
	}

	count := 0
	for _, p := range pkg.AllParagraphs() {
		count += substituteParagraph(p, keys, repl)
	}
	return count
}

// sortedKeys returns non-empty keys, longest first, ties ordered lexically.
func sortedKeys(repl map[string]string) []string {
	keys := make([]string, 0, len(repl))
	for k := range repl {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return keys
}

func substituteParagraph(p docx.Paragraph, keys []string, repl map[string]string) int {
	runs := p.Runs()
	if len(runs) == 0 {
		return 0
	}

	texts := make([]string, len(runs))
	for i, r := range runs {
		texts[i] = r.Text()
	}
	if !containsAny(strings.Join(texts, ""), keys) {
		return 0
	}

	dirty := make([]bool, len(runs))
	count := 0
	for from := 0; ; {
		joined := strings.Join(texts, "")
		start, key := nextMatch(joined, from, keys)
		if start < 0 {
			break
		}
		value := repl[key]
		spliceRuns(texts, dirty, start, start+len(key), value)
		from = start + len(value)
		count++
	}

	for i, r := range runs {
		if dirty[i] {
			r.SetText(texts[i])
		}
	}
	return count
}

// nextMatch finds the earliest key occurrence at or after from. keys are
// sorted longest first, so the first key found at a position is the longest.
func nextMatch(text string, from int, keys []string) (int, string) {
	best, bestKey := -1, ""
	for _, k := range keys {
		idx := strings.Index(text[from:], k)
		if idx < 0 {
			continue
		}
		if pos := from + idx; best < 0 || pos < best {
			best, bestKey = pos, k
		}
	}
	return best, bestKey
}

// spliceRuns replaces the span [start, end) of the concatenated run texts
// with value. The value lands in the first run the span touches.
func spliceRuns(texts []string, dirty []bool, start, end int, value string) {
	placed := false
	pos := 0
	for i, t := range texts {
		runStart, runEnd := pos, pos+len(t)
		pos = runEnd
		if len(t) == 0 || runEnd <= start || runStart >= end {
			continue
		}
		cutFrom := max(start, runStart) - runStart
		cutTo := min(end, runEnd) - runStart
		if placed {
			texts[i] = t[:cutFrom] + t[cutTo:]
		} else {
			texts[i] = t[:cutFrom] + value + t[cutTo:]
			placed = true
		}
		dirty[i] = true
	}
}

func containsAny(text string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
