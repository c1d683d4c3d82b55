package recognize

import (
	"fmt"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/answerkey"
)

// nestedLoopPattern needs a backreference (the inner bound indexes tab with
// the outer variable), which RE2 cannot express.
var nestedLoopPattern = answerkey.MustCompilePattern(
	`for\s+(\w+)\s+in\s+range\(\s*len\(\s*tab\s*\)\s*\)\s*:\s*[\r\n\s]*`+
		`for\s+(\w+)\s+in\s+range\(\s*len\(\s*tab\[\s*\1\s*\]\s*\)\s*\)\s*:`, "")

// NestedLoop answers "which expression reads the current cell" for a
// double loop over the 2-D list tab.
type NestedLoop struct{}

func (NestedLoop) Name() string { return NameNestedLoop }

func (NestedLoop) Recognize(q answer.Question) (answer.Answer, bool) {
	if !q.HasCode() {
		return none()
	}
	m, ok := nestedLoopPattern.Find(q.Code)
	if !ok {
		return none()
	}
	return answer.Multiple(fmt.Sprintf("tab[%s][%s]", m[1], m[2])), true
}
