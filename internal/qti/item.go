package qti

import (
	"encoding/xml"
	"strings"
)

type assessmentItem struct {
	XMLName      xml.Name            `xml:"assessmentItem"`
	Identifier   string              `xml:"identifier,attr"`
	Title        string              `xml:"title,attr"`
	Body         itemBody            `xml:"itemBody"`
	ResponseDecl responseDeclaration `xml:"responseDeclaration"`
}

type itemBody struct {
	RawXML string `xml:",innerxml"`
}

type responseDeclaration struct {
	Identifier  string `xml:"identifier,attr"`
	Cardinality string `xml:"cardinality,attr"` // single|multiple|ordered
	Correct     struct {
		Values []string `xml:"value"`
	} `xml:"correctResponse"`
}

type Interaction string

const (
	InteractionChoiceSingle Interaction = "choice_single"
	InteractionChoiceMulti  Interaction = "choice_multi"
	InteractionTextEntry    Interaction = "text_entry"
	InteractionExtendedText Interaction = "extended_text"
)

// Item is one assessment item reduced to what an answer key needs.
type Item struct {
	ID         string
	Title      string
	PromptHTML string
	Kind       Interaction
	Choices    []Choice
	Correct    []string // choice identifiers or literal responses
}

type Choice struct {
	ID    string
	Label string // HTML
}

// ParseItem decodes a QTI 2.x/3.x assessmentItem. Interactions are
// detected from the body markup rather than fully modelled.
func ParseItem(data []byte) (Item, error) {
	var it assessmentItem
	if err := xml.Unmarshal(data, &it); err != nil {
		return Item{}, err
	}

	out := Item{
		ID:         it.Identifier,
		Title:      it.Title,
		PromptHTML: extractPrompt(it.Body.RawXML),
	}
	body := strings.ToLower(it.Body.RawXML)
	switch {
	case strings.Contains(body, "<choiceinteraction"):
		out.Kind = InteractionChoiceSingle
		if it.ResponseDecl.Cardinality == "multiple" {
			out.Kind = InteractionChoiceMulti
		}
		out.Choices = extractChoices(it.Body.RawXML)
		out.Correct = trimAll(it.ResponseDecl.Correct.Values)
	case strings.Contains(body, "<textentryinteraction"):
		out.Kind = InteractionTextEntry
		out.Correct = trimAll(it.ResponseDecl.Correct.Values)
	default:
		out.Kind = InteractionExtendedText
	}
	return out, nil
}

var interactionTags = []string{"<choiceinteraction", "<textentryinteraction", "<extendedtextinteraction"}

// extractPrompt keeps the markup in front of the interaction. A
// choiceInteraction's own <prompt> wins when present.
func extractPrompt(inner string) string {
	l := strings.ToLower(inner)
	if i := strings.Index(l, "<prompt>"); i >= 0 {
		if j := strings.Index(l[i:], "</prompt>"); j >= 0 {
			lead := strings.TrimSpace(cutInteraction(inner))
			p := strings.TrimSpace(inner[i+len("<prompt>") : i+j])
			if lead == "" {
				return p
			}
			return lead + " " + p
		}
	}
	return strings.TrimSpace(cutInteraction(inner))
}

func cutInteraction(inner string) string {
	l := strings.ToLower(inner)
	for _, tag := range interactionTags {
		if i := strings.Index(l, tag); i >= 0 {
			return inner[:i]
		}
	}
	return inner
}

// extractChoices collects <simpleChoice identifier="A">Label</simpleChoice>.
func extractChoices(inner string) []Choice {
	var out []Choice
	dec := xml.NewDecoder(strings.NewReader(inner))
	dec.Strict = false
	for {
		t, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := t.(xml.StartElement)
		if !ok || !strings.EqualFold(se.Name.Local, "simpleChoice") {
			continue
		}
		var id string
		for _, a := range se.Attr {
			if strings.EqualFold(a.Name.Local, "identifier") {
				id = a.Value
				break
			}
		}
		var text struct {
			Inner string `xml:",innerxml"`
		}
		if err := dec.DecodeElement(&text, &se); err == nil {
			out = append(out, Choice{ID: id, Label: strings.TrimSpace(text.Inner)})
		}
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
