// Package recognize holds the pattern recognizers that derive an answer
// from the wording of a question and the code shown with it.
//
// Each recognizer is independent and side-effect free. Their patterns
// overlap (a slice question also looks like an index question), so the
// order returned by DefaultOrder is part of the behaviour.
package recognize

import (
	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/answerkey"
)

// Recognizer derives an answer for the questions it understands and
// reports false for everything else.
type Recognizer interface {
	Name() string
	Recognize(q answer.Question) (answer.Answer, bool)
}

// Recognizer names, also used as resolution sources in logs and metrics.
const (
	NameCodeVariant   = "code_variant"
	NameNestedLoop    = "nested_loop"
	NameDictCountry   = "dict_country"
	NameDictAge       = "dict_age"
	NameDictAgeUpdate = "dict_age_update"
	NameComprehension = "comprehension"
	NameListIndex     = "list_index"
	NameFString       = "fstring"
	NameReplace       = "str_replace"
	NameSlice         = "str_slice"
	NameIndex         = "str_index"
	NameAssignment    = "assignment"
	NameLen           = "len"
	NameVariableType  = "variable_type"
	NameSortKey       = "sort_key"
	NameCondition     = "condition"
)

// DefaultOrder returns the recognizers in trial order. key supplies the
// code-variant table and may be nil.
func DefaultOrder(key *answerkey.Key) []Recognizer {
	return []Recognizer{
		CodeVariant{Key: key},
		NestedLoop{},
		DictCountry{},
		DictAge{},
		DictAgeUpdate{},
		Comprehension{},
		ListIndex{},
		FString{},
		Replace{},
		Slice{},
		Index{},
		Assignment{},
		Len{},
		VariableType{},
		SortKey{},
		Condition{},
	}
}

// Names lists recognizer names in order.
func Names(rs []Recognizer) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name()
	}
	return out
}

// ident matches a Python identifier.
const ident = `[A-Za-z_][A-Za-z0-9_]*`

// word matches a name as it appears in French prose (accents allowed).
const word = `[\p{L}\p{N}_]+`

func none() (answer.Answer, bool) { return answer.None(), false }

func single(s string) (answer.Answer, bool) { return answer.Single(s), true }

