package answerkey

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/quizsense/internal/answer"
)

var ErrInvalidDocument = errors.New("answerkey: invalid document")

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension; unknown
// extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// LoadFile reads and parses an answer-key document.
func LoadFile(path string) (*Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, FormatFromPath(path))
}

// Parse decodes a document: an object mapping question text to a string,
// a list of strings or an object of strings, plus the optional
// VariantsKey table.
func Parse(data []byte, format Format) (*Key, error) {
	var (
		root any
		err  error
	)
	switch format {
	case FormatYAML:
		root, err = decodeYAML(data)
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		root, err = answer.DecodeOrdered(dec)
		if err == nil && dec.More() {
			err = errors.New("trailing data after document")
		}
	default:
		return nil, fmt.Errorf("format %q: %w", format, ErrInvalidDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidDocument)
	}
	obj, ok := root.(answer.Ordered)
	if !ok {
		return nil, fmt.Errorf("top level must be an object: %w", ErrInvalidDocument)
	}

	entries := make(map[string]answer.Answer, len(obj))
	var variants map[string][]Variant
	for _, f := range obj {
		if f.Key == VariantsKey {
			if variants, err = parseVariantTable(f.Value); err != nil {
				return nil, err
			}
			continue
		}
		a, err := answer.FromValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("question %q: %v: %w", f.Key, err, ErrInvalidDocument)
		}
		entries[f.Key] = a
	}
	return New(entries, variants), nil
}

func parseVariantTable(v any) (map[string][]Variant, error) {
	obj, ok := v.(answer.Ordered)
	if !ok {
		return nil, fmt.Errorf("%s must be an object: %w", VariantsKey, ErrInvalidDocument)
	}
	out := make(map[string][]Variant, len(obj))
	for _, f := range obj {
		list, ok := f.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("variants for %q must be a list: %w", f.Key, ErrInvalidDocument)
		}
		vs := make([]Variant, 0, len(list))
		for i, item := range list {
			vr, err := parseVariant(item)
			if err != nil {
				return nil, fmt.Errorf("variant %q[%d]: %w", f.Key, i, err)
			}
			vs = append(vs, vr)
		}
		out[f.Key] = vs
	}
	return out, nil
}

func parseVariant(v any) (Variant, error) {
	fields, ok := v.(answer.Ordered)
	if !ok {
		return Variant{}, fmt.Errorf("must be an object: %w", ErrInvalidDocument)
	}
	var (
		vr           Variant
		src, flags   string
		subs         []any
		seenPattern  bool
		answerString string
	)
	for _, f := range fields {
		switch f.Key {
		case "pattern":
			s, ok := f.Value.(string)
			if !ok {
				return Variant{}, fmt.Errorf("pattern must be a string: %w", ErrInvalidDocument)
			}
			src, seenPattern = s, true
		case "flags":
			flags, _ = f.Value.(string)
		case "answer":
			a, err := answer.FromValue(f.Value)
			if err != nil || a.Kind() != answer.KindSingle {
				return Variant{}, fmt.Errorf("answer must be a scalar: %w", ErrInvalidDocument)
			}
			answerString, vr.HasAnswer = a.Value(), true
		case "subPatterns":
			if subs, ok = f.Value.([]any); !ok {
				return Variant{}, fmt.Errorf("subPatterns must be a list: %w", ErrInvalidDocument)
			}
		}
	}
	if !seenPattern {
		return Variant{}, fmt.Errorf("missing pattern: %w", ErrInvalidDocument)
	}
	p, err := CompilePattern(src, flags)
	if err != nil {
		return Variant{}, err
	}
	vr.Pattern, vr.Answer = p, answerString
	for i, s := range subs {
		sp, err := parseSubPattern(s)
		if err != nil {
			return Variant{}, fmt.Errorf("subPatterns[%d]: %w", i, err)
		}
		vr.SubPatterns = append(vr.SubPatterns, sp)
	}
	if !vr.HasAnswer && len(vr.SubPatterns) == 0 {
		return Variant{}, fmt.Errorf("needs an answer or subPatterns: %w", ErrInvalidDocument)
	}
	return vr, nil
}

func parseSubPattern(v any) (SubPattern, error) {
	fields, ok := v.(answer.Ordered)
	if !ok {
		return SubPattern{}, fmt.Errorf("must be an object: %w", ErrInvalidDocument)
	}
	var src, flags, ans string
	var hasAnswer bool
	for _, f := range fields {
		switch f.Key {
		case "pattern":
			src, _ = f.Value.(string)
		case "flags":
			flags, _ = f.Value.(string)
		case "answer":
			a, err := answer.FromValue(f.Value)
			if err != nil || a.Kind() != answer.KindSingle {
				return SubPattern{}, fmt.Errorf("answer must be a scalar: %w", ErrInvalidDocument)
			}
			ans, hasAnswer = a.Value(), true
		}
	}
	if src == "" || !hasAnswer {
		return SubPattern{}, fmt.Errorf("needs pattern and answer: %w", ErrInvalidDocument)
	}
	p, err := CompilePattern(src, flags)
	if err != nil {
		return SubPattern{}, err
	}
	return SubPattern{Pattern: p, Answer: ans}, nil
}

// decodeYAML turns a YAML document into the same shapes the JSON decoder
// produces, keeping mapping order.
func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, errors.New("empty document")
	}
	return fromYAML(&doc, 0)
}

func fromYAML(n *yaml.Node, depth int) (any, error) {
	if depth > 64 {
		return nil, errors.New("document nested too deep")
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, errors.New("empty document")
		}
		return fromYAML(n.Content[0], depth+1)
	case yaml.MappingNode:
		out := make(answer.Ordered, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAML(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, answer.OrderedField{Key: n.Content[i].Value, Value: v})
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAML(c, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return fromYAML(n.Alias, depth+1)
	case yaml.ScalarNode:
		// quoted scalars stay strings even when they look like numbers
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported YAML node kind %d", n.Kind)
}
