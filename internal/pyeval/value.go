package pyeval

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrSyntax reports text that is not a well-formed literal or expression.
	ErrSyntax = errors.New("pyeval: syntax error")
	// ErrRejected reports input outside the accepted character set or
	// grammar (identifiers, calls, attribute access).
	ErrRejected = errors.New("pyeval: rejected expression")
	// ErrType reports an operation applied to unsupported operand types.
	ErrType = errors.New("pyeval: type error")
)

// Value is a literal value: Int, Float, Str, Bool, None or List.
type Value interface {
	// Repr renders the value the way the Python REPL would echo it.
	Repr() string
}

type (
	Int   int64
	Float float64
	Str   string
	Bool  bool
	List  []Value
	None  struct{}
)

func (v Int) Repr() string { return strconv.FormatInt(int64(v), 10) }

func (v Float) Repr() string {
	f := float64(v)
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func (v Str) Repr() string {
	s := string(v)
	q := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = `"`
	}
	var b strings.Builder
	b.WriteString(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case string(r) == q:
			b.WriteString(`\` + q)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(q)
	return b.String()
}

func (v Bool) Repr() string {
	if v {
		return "True"
	}
	return "False"
}

func (None) Repr() string { return "None" }

func (v List) Repr() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Repr()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Display renders v the way an answer field shows it: strings bare,
// everything else as its repr.
func Display(v Value) string {
	if s, ok := v.(Str); ok {
		return string(s)
	}
	return v.Repr()
}

// Item indexes a list with Python's negative-index rule.
func (v List) Item(i int) (Value, bool) {
	i = shift(i, len(v))
	if i < 0 || i >= len(v) {
		return nil, false
	}
	return v[i], true
}

func truthy(v Value) bool {
	switch x := v.(type) {
	case Bool:
		return bool(x)
	case Int:
		return x != 0
	case Float:
		return x != 0
	case Str:
		return x != ""
	case List:
		return len(x) > 0
	default:
		return false
	}
}

// numeric widens Bool and Int to their numeric form. isFloat reports
// whether the value needs float arithmetic.
func numeric(v Value) (i int64, f float64, isFloat, ok bool) {
	switch x := v.(type) {
	case Bool:
		if x {
			return 1, 1, false, true
		}
		return 0, 0, false, true
	case Int:
		return int64(x), float64(x), false, true
	case Float:
		return 0, float64(x), true, true
	}
	return 0, 0, false, false
}
