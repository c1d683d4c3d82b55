package recognize

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/pyeval"
)

var (
	fstringRe   = regexp.MustCompile(`(?i)(f-?string|cha[iî]ne de caract[eè]res format[ée]e)`)
	greetingRe  = regexp.MustCompile(`["“](.*?)\s[\wÀ-ÖØ-öø-ÿ]+ !["”]`)
	givenVarRe  = regexp.MustCompile(`(?i)sachant que\s+(` + ident + `)\s*=`)
	replaceRe   = regexp.MustCompile(`['"]([^'"]+)['"]\.replace\(\s*['"]([^'"]*)['"]\s*,\s*['"]([^'"]*)['"]\s*\)`)
	sliceRe     = regexp.MustCompile(`["']([^"']+)["']\s*\[\s*(-?\d*)\s*:\s*(-?\d*)\s*:?(-?\d*)\s*\]`)
	indexRe     = regexp.MustCompile(`["']([^"']+)["']\s*\[\s*(-?\d+)\s*\]`)
	assignRe    = regexp.MustCompile(`(?i)affectant [àa] la variable\s+(` + ident + `)\s+la cha[iî]ne(?: de caract[eè]res)?\s+"([^"]+)"`)
	lenRe       = regexp.MustCompile(`(?i)sachant que\s+(` + ident + `)\s*=\s*["']([^"']+)["'],?\s*que renvoie l['’]instruction\s*len\(\s*(` + ident + `)\s*\)`)
)

// FString writes the f-string that produces a greeting such as
// "Bonjour Salsabil !" given the variable holding the name.
type FString struct{}

func (FString) Name() string { return NameFString }

func (FString) Recognize(q answer.Question) (answer.Answer, bool) {
	if !fstringRe.MatchString(q.Text) {
		return none()
	}
	greeting := "Bonjour"
	if m := greetingRe.FindStringSubmatch(q.Text); m != nil {
		greeting = m[1]
	}
	variable := "nom"
	if m := givenVarRe.FindStringSubmatch(q.Text); m != nil {
		variable = m[1]
	}
	return single(fmt.Sprintf(`f"%s {%s} !"`, greeting, variable))
}

// Replace evaluates "STR".replace("A", "B").
type Replace struct{}

func (Replace) Name() string { return NameReplace }

func (Replace) Recognize(q answer.Question) (answer.Answer, bool) {
	m := replaceRe.FindStringSubmatch(q.Text)
	if m == nil {
		return none()
	}
	return single(pyeval.Replace(m[1], m[2], m[3]))
}

// Slice evaluates "STR"[start:stop:step].
type Slice struct{}

func (Slice) Name() string { return NameSlice }

func (Slice) Recognize(q answer.Question) (answer.Answer, bool) {
	m := sliceRe.FindStringSubmatch(q.Text)
	if m == nil {
		return none()
	}
	s, err := pyeval.SliceString(m[1], m[2], m[3], m[4])
	if err != nil {
		return none()
	}
	return single(s)
}

// Index evaluates "STR"[i]; out of range gives "".
type Index struct{}

func (Index) Name() string { return NameIndex }

func (Index) Recognize(q answer.Question) (answer.Answer, bool) {
	m := indexRe.FindStringSubmatch(q.Text)
	if m == nil {
		return none()
	}
	i, err := strconv.Atoi(m[2])
	if err != nil {
		return none()
	}
	return single(pyeval.Index(m[1], i))
}

// Assignment writes VAR = "S" for "en affectant à la variable VAR la
// chaîne de caractères "S"".
type Assignment struct{}

func (Assignment) Name() string { return NameAssignment }

func (Assignment) Recognize(q answer.Question) (answer.Answer, bool) {
	m := assignRe.FindStringSubmatch(q.Text)
	if m == nil {
		return none()
	}
	return single(fmt.Sprintf(`%s = "%s"`, m[1], m[2]))
}

// Len answers "sachant que x = "S", que renvoie l'instruction len(x) ?".
// The name passed to len must be the one that was assigned.
type Len struct{}

func (Len) Name() string { return NameLen }

func (Len) Recognize(q answer.Question) (answer.Answer, bool) {
	m := lenRe.FindStringSubmatch(q.Text)
	if m == nil || m[1] != m[3] {
		return none()
	}
	return single(strconv.Itoa(pyeval.Len(m[2])))
}
