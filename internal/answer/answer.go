// Package answer defines the question and answer values that flow between
// the answer key, the recognizers and whatever renders the result.
package answer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Question is a quiz prompt and the code block shown with it, if any.
// Code == "" means no code was shown.
type Question struct {
	Text string `json:"text"`
	Code string `json:"code,omitempty"`
}

func (q Question) HasCode() bool { return q.Code != "" }

type Kind uint8

const (
	KindNone Kind = iota
	KindSingle
	KindMultiple
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindMultiple:
		return "multiple"
	case KindMapping:
		return "mapping"
	default:
		return "none"
	}
}

// Pair is one left→right association.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Answer is one of: nothing, a single string, an ordered list of strings
// (position matters for fill-in inputs), or an ordered set of
// associations. The zero value is None.
type Answer struct {
	kind   Kind
	value  string
	values []string
	pairs  []Pair
}

func None() Answer { return Answer{} }

func Single(v string) Answer { return Answer{kind: KindSingle, value: v} }

func Multiple(vs ...string) Answer {
	return Answer{kind: KindMultiple, values: slices.Clone(vs)}
}

func Mapping(ps ...Pair) Answer {
	return Answer{kind: KindMapping, pairs: slices.Clone(ps)}
}

func (a Answer) Kind() Kind    { return a.kind }
func (a Answer) IsNone() bool  { return a.kind == KindNone }
func (a Answer) Value() string { return a.value }

func (a Answer) Values() []string { return slices.Clone(a.values) }

func (a Answer) Pairs() []Pair { return slices.Clone(a.pairs) }

// Candidates flattens single and multiple answers into the list of
// strings a choice list is compared against.
func (a Answer) Candidates() []string {
	switch a.kind {
	case KindSingle:
		return []string{a.value}
	case KindMultiple:
		return slices.Clone(a.values)
	}
	return nil
}

// Lookup returns the right-hand side associated with left.
func (a Answer) Lookup(left string) (string, bool) {
	for _, p := range a.pairs {
		if p.Left == left {
			return p.Right, true
		}
	}
	return "", false
}

func (a Answer) Equal(b Answer) bool {
	return a.kind == b.kind && a.value == b.value &&
		slices.Equal(a.values, b.values) && slices.Equal(a.pairs, b.pairs)
}

func (a Answer) String() string {
	b, _ := a.MarshalJSON()
	return string(b)
}

// MarshalJSON encodes None as null, Single as a string, Multiple as an
// array and Mapping as an object whose keys keep their order.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case KindSingle:
		return json.Marshal(a.value)
	case KindMultiple:
		if a.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.values)
	case KindMapping:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, p := range a.pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(p.Left)
			v, _ := json.Marshal(p.Right)
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	return []byte("null"), nil
}

var errShape = errors.New("answer: unsupported JSON shape")

func (a *Answer) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeOrdered(dec)
	if err != nil {
		return err
	}
	out, err := FromValue(v)
	if err != nil {
		return err
	}
	*a = out
	return nil
}

// Ordered is a JSON/YAML object that remembers key order.
type Ordered []OrderedField

type OrderedField struct {
	Key   string
	Value any
}

// FromValue converts a decoded document value into an Answer: scalars
// become Single, arrays of scalars Multiple, objects of scalars Mapping.
// Accepted object forms are Ordered and map[string]any (sorted by key).
func FromValue(v any) (Answer, error) {
	switch x := v.(type) {
	case nil:
		return None(), nil
	case []any:
		out := make([]string, 0, len(x))
		for i, e := range x {
			s, ok := scalar(e)
			if !ok {
				return Answer{}, fmt.Errorf("item %d: %w", i, errShape)
			}
			out = append(out, s)
		}
		return Multiple(out...), nil
	case Ordered:
		ps := make([]Pair, 0, len(x))
		for _, f := range x {
			s, ok := scalar(f.Value)
			if !ok {
				return Answer{}, fmt.Errorf("key %q: %w", f.Key, errShape)
			}
			ps = append(ps, Pair{Left: f.Key, Right: s})
		}
		return Mapping(ps...), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		o := make(Ordered, 0, len(keys))
		for _, k := range keys {
			o = append(o, OrderedField{Key: k, Value: x[k]})
		}
		return FromValue(o)
	}
	if s, ok := scalar(v); ok {
		return Single(s), nil
	}
	return Answer{}, fmt.Errorf("%T: %w", v, errShape)
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		if x {
			return "true", true
		}
		return "false", true
	case int:
		return fmt.Sprint(x), true
	case int64:
		return fmt.Sprint(x), true
	case float64:
		return fmt.Sprint(x), true
	}
	return "", false
}

// DecodeOrdered reads one JSON value, keeping object key order (objects
// come back as Ordered, numbers as json.Number).
func DecodeOrdered(dec *json.Decoder) (any, error) {
	dec.UseNumber()
	return decodeOrdered(dec)
}

func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '[':
		out := []any{}
		for dec.More() {
			v, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		_, err := dec.Token()
		return out, err
	case '{':
		out := Ordered{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			k, _ := kt.(string)
			v, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, OrderedField{Key: k, Value: v})
		}
		_, err := dec.Token()
		return out, err
	}
	return nil, fmt.Errorf("unexpected delimiter %v", d)
}
