package recognize

import (
	"fmt"
	"regexp"

	"github.com/mind-engage/quizsense/internal/answer"
)

const (
	listOfDicts = "une liste de dictionnaires"
	listOfLists = "une liste de listes"
)

var (
	variableTypeRe = regexp.MustCompile(`(?i)type de la variable\s+(` + ident + `)`)
	dictReaderRe   = regexp.MustCompile(`\bDictReader\s*\(`)
	readerRe       = regexp.MustCompile(`\breader\s*\(`)

	sortWordRe   = regexp.MustCompile(`(?i)\btri(?:er|ez|e|ée|és)?\b`)
	sortKeyFnRe  = regexp.MustCompile(`def\s+(` + ident + `)\s*\(\s*` + ident + `\s*\)\s*:\s*(?:\r?\n\s*)?return\b`)
	descendingRe = regexp.MustCompile(`(?i)d[ée]croissant|plus grand au plus petit`)
)

// VariableType tells whether a variable filled by the csv module holds
// dictionaries or lists, based on the reader used in the code.
type VariableType struct{}

func (VariableType) Name() string { return NameVariableType }

func (VariableType) Recognize(q answer.Question) (answer.Answer, bool) {
	if !q.HasCode() {
		return none()
	}
	m := variableTypeRe.FindStringSubmatch(q.Text)
	if m == nil {
		return none()
	}
	name := m[1]
	assigned := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(name) + `\s*=.*$`)
	for _, line := range assigned.FindAllString(q.Code, -1) {
		if t, ok := readerKind(line); ok {
			return single(t)
		}
	}
	mentioned := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	if !mentioned.MatchString(q.Code) {
		return none()
	}
	if t, ok := readerKind(q.Code); ok {
		return single(t)
	}
	return none()
}

func readerKind(s string) (string, bool) {
	switch {
	case dictReaderRe.MatchString(s):
		return listOfDicts, true
	case readerRe.MatchString(s):
		return listOfLists, true
	}
	return "", false
}

// SortKey writes the sort call that uses the one-line key function
// defined in the code.
type SortKey struct{}

func (SortKey) Name() string { return NameSortKey }

func (SortKey) Recognize(q answer.Question) (answer.Answer, bool) {
	if !q.HasCode() || !sortWordRe.MatchString(q.Text) {
		return none()
	}
	m := sortKeyFnRe.FindStringSubmatch(q.Code)
	if m == nil {
		return none()
	}
	if descendingRe.MatchString(q.Text) {
		return single(fmt.Sprintf("sort(key=%s, reverse=True)", m[1]))
	}
	return single(fmt.Sprintf("sort(key=%s)", m[1]))
}
