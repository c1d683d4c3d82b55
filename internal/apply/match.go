package apply

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

type matcher struct {
	maxEdit int
	tol     float64
}

// match compares an answer candidate with the text of a choice. Trimmed
// equality always matches.
func (m matcher) match(want, got string) bool {
	want, got = trim(want), trim(got)
	if want == got {
		return true
	}
	if m.tol >= 0 {
		a, okA := parseFloatLoose(want)
		b, okB := parseFloatLoose(got)
		if okA && okB && math.Abs(a-b) <= m.tol {
			return true
		}
	}
	if m.maxEdit > 0 {
		return levenshtein(normalize(want), normalize(got)) <= m.maxEdit
	}
	return false
}

func trim(s string) string { return strings.TrimSpace(s) }

// normalize casefolds, drops punctuation and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pending = b.Len() > 0
		case unicode.IsPunct(r):
		default:
			if pending {
				b.WriteByte(' ')
				pending = false
			}
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// levenshtein is the rune edit distance with unit costs.
func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	prev := make([]int, len(br)+1)
	cur := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		cur[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(br)]
}

// parseFloatLoose accepts "3", "3.0" and "3,5" (French decimal comma).
func parseFloatLoose(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
