// Package answerkey holds the exact-match answer table and the code-variant
// table that ships with it. A Key is built once and never changes.
package answerkey

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mind-engage/quizsense/internal/answer"
)

// VariantsKey is the reserved document key holding the code-variant table.
const VariantsKey = "__code_variants__"

type Key struct {
	entries   map[string]answer.Answer
	variants  map[string][]Variant
	fragments []string // variant keys, longest first
}

// New builds a Key from already-decoded parts. The maps are copied.
func New(entries map[string]answer.Answer, variants map[string][]Variant) *Key {
	k := &Key{
		entries:  make(map[string]answer.Answer, len(entries)),
		variants: make(map[string][]Variant, len(variants)),
	}
	for q, a := range entries {
		k.entries[q] = a
	}
	for frag, vs := range variants {
		k.variants[frag] = slices.Clone(vs)
		k.fragments = append(k.fragments, frag)
	}
	slices.SortFunc(k.fragments, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return k
}

// Empty returns a key with no entries.
func Empty() *Key { return New(nil, nil) }

// Lookup matches the question text verbatim.
func (k *Key) Lookup(text string) (answer.Answer, bool) {
	a, ok := k.entries[text]
	return a, ok
}

// Variants finds the variant list for a question: an exact fragment match
// first, otherwise the longest fragment the text contains.
func (k *Key) Variants(text string) (string, []Variant, bool) {
	if vs, ok := k.variants[text]; ok {
		return text, vs, true
	}
	for _, frag := range k.fragments {
		if frag != "" && strings.Contains(text, frag) {
			return frag, k.variants[frag], true
		}
	}
	return "", nil, false
}

// Len is the number of exact-match entries.
func (k *Key) Len() int { return len(k.entries) }

// VariantCount is the number of question fragments with code variants.
func (k *Key) VariantCount() int { return len(k.variants) }
