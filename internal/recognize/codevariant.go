package recognize

import (
	"strings"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/answerkey"
)

// CodeVariant answers questions whose correct choice depends on how the
// shown code was written (which reader, which import style). Variants
// come from the answer key.
type CodeVariant struct {
	Key *answerkey.Key
}

func (CodeVariant) Name() string { return NameCodeVariant }

func (r CodeVariant) Recognize(q answer.Question) (answer.Answer, bool) {
	if r.Key == nil || !q.HasCode() {
		return none()
	}
	_, variants, ok := r.Key.Variants(q.Text)
	if !ok {
		return none()
	}
	for _, v := range variants {
		if !v.Pattern.Match(q.Code) {
			continue
		}
		if len(v.SubPatterns) == 0 {
			if v.HasAnswer {
				return single(v.Answer)
			}
			continue
		}
		for _, sp := range v.SubPatterns {
			if sp.Pattern.Match(q.Code) {
				return single(sp.Answer)
			}
		}
		// the import matched but no usage did: go by what the question asks for
		if s, ok := intentFromWording(q.Text, v.SubPatterns); ok {
			return single(s)
		}
		if v.HasAnswer {
			return single(v.Answer)
		}
	}
	return none()
}

// intentFromWording picks the first sub-pattern for questions about
// dictionaries and the second for questions about lists.
func intentFromWording(text string, subs []answerkey.SubPattern) (string, bool) {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "dictionnaire") || strings.Contains(t, "dictionar"):
		if len(subs) > 0 {
			return subs[0].Answer, true
		}
	case strings.Contains(t, "liste") || strings.Contains(t, "list"):
		if len(subs) > 1 {
			return subs[1].Answer, true
		}
	}
	return "", false
}
