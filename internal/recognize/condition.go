package recognize

import (
	"regexp"
	"strings"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/pyeval"
)

var conditionRe = regexp.MustCompile(`(?i)(?:que\s+(?:renvoie|vaut|retourne|donne)|quelle est la valeur de)\s+l['’]expression\s*:?\s*(.+?)\s*\??\s*$`)

// Condition evaluates a literal boolean expression asked about in the
// question ("Que renvoie l'expression 3 < 5 and 2 == 2 ?") and answers
// "True" or "False".
type Condition struct{}

func (Condition) Name() string { return NameCondition }

func (Condition) Recognize(q answer.Question) (answer.Answer, bool) {
	m := conditionRe.FindStringSubmatch(strings.TrimSpace(q.Text))
	if m == nil {
		return none()
	}
	expr := strings.Trim(m[1], "` ")
	ok, err := pyeval.EvalBool(expr)
	if err != nil {
		return none()
	}
	if ok {
		return single("True")
	}
	return single("False")
}
