// Package pyeval reproduces the small slice of Python string and literal
// semantics that quiz questions exercise: slicing, indexing, str.replace,
// list literals and boolean conditions over literals.
package pyeval

import (
	"fmt"
	"strconv"
	"strings"
)

// Slice returns s[start:stop:step]. A nil bound is unspecified.
//
// step 0 returns an empty sequence where Python would raise ValueError.
// Negative bounds are shifted by len(s) once; for a negative step the
// stop bound is never clamped, so -1 still means "before index 0".
func Slice(s []rune, start, stop, step *int) []rune {
	n := len(s)
	st := 1
	if step != nil {
		st = *step
	}
	out := []rune{}
	if st == 0 {
		return out
	}

	if st > 0 {
		lo, hi := 0, n
		if start != nil {
			lo = clamp(shift(*start, n), 0, n)
		}
		if stop != nil {
			hi = clamp(shift(*stop, n), 0, n)
		}
		for i := lo; i < hi; i += st {
			out = append(out, s[i])
			if st >= hi-i {
				break
			}
		}
		return out
	}
	if n == 0 {
		return out
	}

	lo, hi := n-1, -1
	if start != nil {
		lo = shift(*start, n)
	}
	if stop != nil {
		hi = shift(*stop, n)
	}
	// skip positions past the end without breaking step alignment
	if lo > n-1 {
		// unsigned so that a step of math.MinInt64 still has a magnitude
		stride := uint64(-(st + 1)) + 1
		d := uint64(lo - (n - 1))
		lo = (n - 1) - int(stride-1-(d-1)%stride)
	}
	for i := lo; i > hi && i >= 0; i += st {
		if i < n {
			out = append(out, s[i])
		}
	}
	return out
}

// SliceString parses textual bounds (empty means unspecified) and slices s
// on rune boundaries.
func SliceString(s, start, stop, step string) (string, error) {
	b, err := parseBound(start)
	if err != nil {
		return "", err
	}
	e, err := parseBound(stop)
	if err != nil {
		return "", err
	}
	st, err := parseBound(step)
	if err != nil {
		return "", err
	}
	return string(Slice([]rune(s), b, e, st)), nil
}

// Index returns the rune at position i (negative counts from the end), or
// "" when i is out of range.
func Index(s string, i int) string {
	r := []rune(s)
	i = shift(i, len(r))
	if i < 0 || i >= len(r) {
		return ""
	}
	return string(r[i])
}

// Replace substitutes every non-overlapping occurrence of old, left to
// right. An empty old leaves s unchanged.
func Replace(s, old, new string) string {
	if old == "" {
		return s
	}
	return strings.ReplaceAll(s, old, new)
}

// Len counts runes, which is what len() reports for a str.
func Len(s string) int { return len([]rune(s)) }

func parseBound(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("slice bound %q: %w", raw, ErrSyntax)
	}
	return &v, nil
}

func shift(i, n int) int {
	if i < 0 {
		return i + n
	}
	return i
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
