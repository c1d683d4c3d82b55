package recognize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/pyeval"
)

var (
	doubleIndexRe = regexp.MustCompile(`^\s*\[\s*(-?\d+)\s*\]\s*\[\s*(-?\d+)\s*\]`)
	namedIndexRe  = regexp.MustCompile(`\b(` + ident + `)\s*\[\s*(-?\d+)\s*\]\s*\[\s*(-?\d+)\s*\]`)
)

// ListIndex evaluates a double subscript on a nested list literal, either
// written inline ("[[1, 2], [3, 4]][1][0]") or bound to a name in the code
// ("tab[1][0]" with "tab = [[...]]"). For the inline form a nested list in
// the code, when there is one, is the table the subscripts apply to; the
// question's own literal is used only without it.
type ListIndex struct{}

func (ListIndex) Name() string { return NameListIndex }

func (ListIndex) Recognize(q answer.Question) (answer.Answer, bool) {
	if v, ok := inlineDoubleIndex(q.Text, q.Code); ok {
		return single(pyeval.Display(v))
	}
	m := namedIndexRe.FindStringSubmatch(q.Text)
	if m == nil || !q.HasCode() {
		return none()
	}
	lit, ok := boundLiteral(q.Code, m[1])
	if !ok {
		return none()
	}
	if v, ok := item2(lit, m[2], m[3]); ok {
		return single(pyeval.Display(v))
	}
	return none()
}

func inlineDoubleIndex(text, code string) (pyeval.Value, bool) {
	table, fromCode := firstTable(code)
	for off := 0; ; {
		i := strings.Index(text[off:], "[[")
		if i < 0 {
			return nil, false
		}
		start := off + i
		off = start + 2
		lit, end, err := pyeval.ParseLiteralPrefix(text[start:])
		if err != nil {
			continue
		}
		m := doubleIndexRe.FindStringSubmatch(text[start+end:])
		if m == nil {
			continue
		}
		if fromCode {
			lit = table
		}
		if v, ok := item2(lit, m[1], m[2]); ok {
			return v, true
		}
	}
}

// firstTable returns the first list of lists written in code.
func firstTable(code string) (pyeval.Value, bool) {
	for off := 0; ; {
		i := strings.IndexByte(code[off:], '[')
		if i < 0 {
			return nil, false
		}
		start := off + i
		off = start + 1
		rest := strings.TrimLeft(code[off:], " \t\r\n")
		if !strings.HasPrefix(rest, "[") {
			continue
		}
		v, _, err := pyeval.ParseLiteralPrefix(code[start:])
		if err != nil {
			continue
		}
		if rows, ok := v.(pyeval.List); ok && len(rows) > 0 {
			if _, nested := rows[0].(pyeval.List); nested {
				return v, true
			}
		}
	}
}

// boundLiteral finds "name = [[...]]" in code and parses the literal.
func boundLiteral(code, name string) (pyeval.Value, bool) {
	re := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(name) + `\s*=\s*`)
	loc := re.FindStringIndex(code)
	if loc == nil {
		return nil, false
	}
	v, _, err := pyeval.ParseLiteralPrefix(code[loc[1]:])
	if err != nil {
		return nil, false
	}
	return v, true
}

func item2(v pyeval.Value, outer, inner string) (pyeval.Value, bool) {
	o, err1 := strconv.Atoi(outer)
	in, err2 := strconv.Atoi(inner)
	if err1 != nil || err2 != nil {
		return nil, false
	}
	rows, ok := v.(pyeval.List)
	if !ok {
		return nil, false
	}
	row, ok := rows.Item(o)
	if !ok {
		return nil, false
	}
	cells, ok := row.(pyeval.List)
	if !ok {
		return nil, false
	}
	return cells.Item(in)
}
