package answerkey

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single pattern match against a code snippet.
const matchTimeout = 250 * time.Millisecond

// Pattern is a compiled ECMAScript-flavoured regular expression, the
// dialect the variant table is authored in.
type Pattern struct {
	src string
	re  *regexp2.Regexp
}

// CompilePattern compiles src with JS-style flags (i, m, s; g and u are
// accepted and ignored).
func CompilePattern(src, flags string) (Pattern, error) {
	var opts regexp2.RegexOptions
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'g', 'u':
		default:
			return Pattern{}, fmt.Errorf("pattern %q: unknown flag %q: %w", src, f, ErrInvalidDocument)
		}
	}
	// ECMAScript mode pins "." to exclude line terminators, so dotAll
	// patterns compile in the default mode.
	if opts&regexp2.Singleline == 0 {
		opts |= regexp2.ECMAScript
	}
	re, err := regexp2.Compile(src, opts)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %q: %v: %w", src, err, ErrInvalidDocument)
	}
	re.MatchTimeout = matchTimeout
	return Pattern{src: src, re: re}, nil
}

// MustCompilePattern is CompilePattern for patterns known at build time.
func MustCompilePattern(src, flags string) Pattern {
	p, err := CompilePattern(src, flags)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether the pattern occurs in s. A timed-out match counts
// as no match.
func (p Pattern) Match(s string) bool {
	if p.re == nil {
		return false
	}
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

// Find returns the first match and its capture groups (index 0 is the
// whole match).
func (p Pattern) Find(s string) ([]string, bool) {
	if p.re == nil {
		return nil, false
	}
	m, err := p.re.FindStringMatch(s)
	if err != nil || m == nil {
		return nil, false
	}
	gs := m.Groups()
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.String()
	}
	return out, true
}

func (p Pattern) String() string { return p.src }

// SubPattern refines a Variant: tried in order once the Variant's own
// pattern matched.
type SubPattern struct {
	Pattern Pattern
	Answer  string
}

// Variant is one code-style alternative for a question.
type Variant struct {
	Pattern     Pattern
	Answer      string
	HasAnswer   bool
	SubPatterns []SubPattern
}
