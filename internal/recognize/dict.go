package recognize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mind-engage/quizsense/internal/answer"
)

// The dictionary questions all work on a base of people keyed by name,
// e.g. base = {"Maroc": {"pays": ..., "age": ...}}. They only fire when
// code is shown, so the same wording without code is left alone.
var (
	countryRe   = regexp.MustCompile(`(?i)pays de (` + word + `)`)
	readAgeRe   = regexp.MustCompile(`(?i)renvoie l['’]?[aâ]ge de (` + word + `)`)
	updateAgeRe = regexp.MustCompile(`(?i)corriger l['’]?[aâ]ge de (` + word + `) par la valeur (\d+)`)
)

type DictCountry struct{}

func (DictCountry) Name() string { return NameDictCountry }

func (DictCountry) Recognize(q answer.Question) (answer.Answer, bool) {
	m := countryRe.FindStringSubmatch(q.Text)
	if m == nil || !q.HasCode() {
		return none()
	}
	return single(fmt.Sprintf(`base["%s"]["pays"]`, m[1]))
}

type DictAge struct{}

func (DictAge) Name() string { return NameDictAge }

func (DictAge) Recognize(q answer.Question) (answer.Answer, bool) {
	m := readAgeRe.FindStringSubmatch(q.Text)
	if m == nil || !q.HasCode() {
		return none()
	}
	return single(fmt.Sprintf(`base["%s"]["age"]`, m[1]))
}

type DictAgeUpdate struct{}

func (DictAgeUpdate) Name() string { return NameDictAgeUpdate }

func (DictAgeUpdate) Recognize(q answer.Question) (answer.Answer, bool) {
	m := updateAgeRe.FindStringSubmatch(q.Text)
	if m == nil || !q.HasCode() {
		return none()
	}
	return single(fmt.Sprintf(`base["%s"]["age"] = %s`, m[1], m[2]))
}

var (
	completeRe      = regexp.MustCompile(`(?i)compl[eéè]t`)
	comprehensionRe = regexp.MustCompile(`(?i)compr[eé]hension`)
	thresholdRe     = regexp.MustCompile(`(?i)\b(moins|plus) de (\d+)`)
	roleRe          = regexp.MustCompile(`(?i)fonction (?:de|est|d['’])\s*["'«]?\s*(` + word + `)`)
	tableInTextRe   = regexp.MustCompile(`(?i)\b(?:table|tableau)\s+["'«]?\s*(` + ident + `)\b`)
	tableInCodeRe   = regexp.MustCompile(`(?m)^\s*(` + ident + `)\s*=\s*\[`)
	loopVarRe       = regexp.MustCompile(`\bfor\s+(` + ident + `)\s+in\b`)
	subscriptVarRe  = regexp.MustCompile(`\[\s*(` + ident + `)\s*\[\s*["']`)
)

// Comprehension completes a list comprehension that filters a table of
// people by age threshold or by role, producing the
// "for VAR in TABLE if CONDITION" part.
type Comprehension struct{}

func (Comprehension) Name() string { return NameComprehension }

func (Comprehension) Recognize(q answer.Question) (answer.Answer, bool) {
	if !completeRe.MatchString(q.Text) || !comprehensionRe.MatchString(q.Text) {
		return none()
	}
	table := tableName(q)
	if table == "" {
		return none()
	}
	v := loopVariable(q.Code)

	var conds []string
	if m := thresholdRe.FindStringSubmatch(q.Text); m != nil {
		op := "<"
		if strings.EqualFold(m[1], "plus") {
			op = ">"
		}
		conds = append(conds, fmt.Sprintf(`%s["age"] %s %s`, v, op, m[2]))
	}
	if m := roleRe.FindStringSubmatch(q.Text); m != nil {
		conds = append(conds, fmt.Sprintf(`%s["fonction"] == "%s"`, v, m[1]))
	}
	if len(conds) == 0 {
		return none()
	}
	return single(fmt.Sprintf("for %s in %s if %s", v, table, strings.Join(conds, " and ")))
}

func tableName(q answer.Question) string {
	if m := tableInTextRe.FindStringSubmatch(q.Text); m != nil {
		return m[1]
	}
	if m := tableInCodeRe.FindStringSubmatch(q.Code); m != nil {
		return m[1]
	}
	return ""
}

// loopVariable sniffs the element name the shown code already uses.
func loopVariable(code string) string {
	if m := loopVarRe.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	if m := subscriptVarRe.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	return "x"
}
