package qti

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/mind-engage/quizsense/internal/answer"
)

// Skipped records an item that produced no answer-key entry.
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Entry is one question/answer pair destined for an answer key.
type Entry struct {
	Question string
	Answer   answer.Answer
}

// Entries maps items to answer-key entries. Choice items answer with the
// text of their correct choices, text-entry items with the accepted
// responses. Free-text items have no key and are skipped, as are items
// whose prompt text repeats an earlier one.
func Entries(items []Item) ([]Entry, []Skipped) {
	var (
		out  []Entry
		skip []Skipped
		seen = map[string]bool{}
	)
	for _, it := range items {
		q := Text(it.PromptHTML)
		switch {
		case q == "":
			skip = append(skip, Skipped{ID: it.ID, Reason: "empty prompt"})
			continue
		case seen[q]:
			skip = append(skip, Skipped{ID: it.ID, Reason: "duplicate prompt"})
			continue
		}

		var values []string
		switch it.Kind {
		case InteractionChoiceSingle, InteractionChoiceMulti:
			labels := make(map[string]string, len(it.Choices))
			for _, c := range it.Choices {
				labels[c.ID] = Text(c.Label)
			}
			for _, id := range it.Correct {
				if l, ok := labels[id]; ok && l != "" {
					values = append(values, l)
				}
			}
		case InteractionTextEntry:
			values = it.Correct
		default:
			skip = append(skip, Skipped{ID: it.ID, Reason: "no response key"})
			continue
		}
		if len(values) == 0 {
			skip = append(skip, Skipped{ID: it.ID, Reason: "no correct response"})
			continue
		}

		a := answer.Single(values[0])
		if it.Kind == InteractionChoiceMulti || len(values) > 1 {
			a = answer.Multiple(values...)
		}
		seen[q] = true
		out = append(out, Entry{Question: q, Answer: a})
	}
	return out, skip
}

// Document renders entries as a JSON answer-key document, keeping their
// order.
func Document(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, e := range entries {
		k, err := json.Marshal(e.Question)
		if err != nil {
			return nil, err
		}
		v, err := e.Answer.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
		if i < len(entries)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Convert reads a zipped package and returns its answer-key document.
func Convert(r io.ReaderAt, size int64) ([]byte, []Skipped, error) {
	items, err := ReadPackage(r, size)
	if err != nil {
		return nil, nil, err
	}
	entries, skipped := Entries(items)
	doc, err := Document(entries)
	return doc, skipped, err
}

// Text flattens an HTML fragment to the text a learner sees, with runs of
// whitespace collapsed to one space.
func Text(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	z := html.NewTokenizer(strings.NewReader(fragment))
	var sb strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "div", "li":
				sb.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li":
				sb.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		}
	}
}
