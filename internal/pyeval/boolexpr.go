package pyeval

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// allowed is the character whitelist for EvalBool. Anything else (commas,
// brackets, underscores, accents) rejects the expression outright.
var allowed = regexp.MustCompile(`^[=!<>+\-*/%&|()0-9\s'".A-Za-z]*$`)

// maxRepeat caps str * int so a condition cannot allocate without bound.
const maxRepeat = 1 << 16

// EvalBool evaluates a condition built from literals, arithmetic,
// comparisons and and/or/not. Identifiers, calls and attribute access are
// not part of the grammar, so they fail to parse rather than run. The
// result must be a bool; anything else is ErrType.
func EvalBool(expr string) (bool, error) {
	if strings.TrimSpace(expr) == "" || !allowed.MatchString(expr) {
		return false, ErrRejected
	}
	p, err := newParser(expr)
	if err != nil {
		return false, err
	}
	n, err := p.or()
	if err != nil {
		return false, err
	}
	if p.tok.kind != tokEOF {
		return false, fmt.Errorf("trailing input at %d: %w", p.tok.pos, ErrSyntax)
	}
	v, err := n.eval()
	if err != nil {
		return false, err
	}
	b, ok := v.(Bool)
	if !ok {
		return false, fmt.Errorf("result %s is not a bool: %w", v.Repr(), ErrType)
	}
	return bool(b), nil
}

type node interface {
	eval() (Value, error)
}

type litNode struct{ v Value }

func (n litNode) eval() (Value, error) { return n.v, nil }

type notNode struct{ x node }

func (n notNode) eval() (Value, error) {
	v, err := n.x.eval()
	if err != nil {
		return nil, err
	}
	return Bool(!truthy(v)), nil
}

type negNode struct{ x node }

func (n negNode) eval() (Value, error) {
	v, err := n.x.eval()
	if err != nil {
		return nil, err
	}
	return negate(v)
}

// logicNode returns the deciding operand, as Python's and/or do.
type logicNode struct {
	and  bool
	l, r node
}

func (n logicNode) eval() (Value, error) {
	l, err := n.l.eval()
	if err != nil {
		return nil, err
	}
	if truthy(l) != n.and {
		return l, nil
	}
	return n.r.eval()
}

// cmpNode is a comparison chain: a < b <= c means a < b and b <= c.
type cmpNode struct {
	ops   []string
	terms []node
}

func (n cmpNode) eval() (Value, error) {
	left, err := n.terms[0].eval()
	if err != nil {
		return nil, err
	}
	for i, op := range n.ops {
		right, err := n.terms[i+1].eval()
		if err != nil {
			return nil, err
		}
		ok, err := compare(op, left, right)
		if err != nil {
			return nil, err
		}
		if !ok {
			return Bool(false), nil
		}
		left = right
	}
	return Bool(true), nil
}

type binNode struct {
	op   string
	l, r node
}

func (n binNode) eval() (Value, error) {
	l, err := n.l.eval()
	if err != nil {
		return nil, err
	}
	r, err := n.r.eval()
	if err != nil {
		return nil, err
	}
	return arith(n.op, l, r)
}

// Grammar, lowest precedence first:
//
//	or   := and (("or" | "||") and)*
//	and  := not (("and" | "&&") not)*
//	not  := ("not" | "!") not | cmp
//	cmp  := sum (cmpop sum)*
//	sum  := term (("+" | "-") term)*
//	term := unary (("*" | "/" | "//" | "%") unary)*
//	unary := ("-" | "+") unary | atom
//	atom := number | string | True | False | None | "(" or ")"

func (p *parser) isName(name string) bool { return p.tok.kind == tokName && p.tok.text == name }

func (p *parser) or() (node, error) {
	l, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.isName("or") || p.isOp("||") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		r, err := p.and()
		if err != nil {
			return nil, err
		}
		l = logicNode{and: false, l: l, r: r}
	}
	return l, nil
}

func (p *parser) and() (node, error) {
	l, err := p.not()
	if err != nil {
		return nil, err
	}
	for p.isName("and") || p.isOp("&&") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		r, err := p.not()
		if err != nil {
			return nil, err
		}
		l = logicNode{and: true, l: l, r: r}
	}
	return l, nil
}

func (p *parser) not() (node, error) {
	if p.isName("not") || p.isOp("!") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.not()
		if err != nil {
			return nil, err
		}
		return notNode{x}, nil
	}
	return p.cmp()
}

var cmpOps = map[string]string{
	"==": "==", "===": "==", "!=": "!=", "!==": "!=",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

func (p *parser) cmp() (node, error) {
	first, err := p.sum()
	if err != nil {
		return nil, err
	}
	c := cmpNode{terms: []node{first}}
	for p.tok.kind == tokOp {
		op, ok := cmpOps[p.tok.text]
		if !ok {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		t, err := p.sum()
		if err != nil {
			return nil, err
		}
		c.ops = append(c.ops, op)
		c.terms = append(c.terms, t)
	}
	if len(c.ops) == 0 {
		return first, nil
	}
	return c, nil
}

func (p *parser) sum() (node, error) {
	l, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		r, err := p.term()
		if err != nil {
			return nil, err
		}
		l = binNode{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *parser) term() (node, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") || p.isOp("//") || p.isOp("%") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = binNode{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *parser) unary() (node, error) {
	if p.isOp("-") || p.isOp("+") {
		neg := p.tok.text == "-"
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		if neg {
			return negNode{x}, nil
		}
		return x, nil
	}
	return p.atom()
}

func (p *parser) atom() (node, error) {
	t := p.tok
	switch t.kind {
	case tokInt, tokFloat:
		v, err := numberValue(t)
		if err != nil {
			return nil, err
		}
		return litNode{v}, p.advance()
	case tokString:
		return litNode{Str(t.text)}, p.advance()
	case tokName:
		v, ok := constant(t.text)
		if !ok {
			return nil, fmt.Errorf("name %q at %d: %w", t.text, t.pos, ErrRejected)
		}
		return litNode{v}, p.advance()
	case tokOp:
		if t.text == "(" {
			p.depth++
			defer func() { p.depth-- }()
			if p.depth > maxDepth {
				return nil, fmt.Errorf("parentheses nested too deep: %w", ErrSyntax)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			x, err := p.or()
			if err != nil {
				return nil, err
			}
			return x, p.expectOp(")")
		}
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression: %w", ErrSyntax)
	}
	return nil, fmt.Errorf("unexpected %q at %d: %w", t.text, t.pos, ErrSyntax)
}

func negate(v Value) (Value, error) {
	i, f, isFloat, ok := numeric(v)
	if !ok {
		return nil, fmt.Errorf("unary minus on %s: %w", v.Repr(), ErrType)
	}
	if isFloat {
		return Float(-f), nil
	}
	if i == math.MinInt64 {
		return nil, fmt.Errorf("-%s overflows int64: %w", v.Repr(), ErrType)
	}
	return Int(-i), nil
}

// overflow reports int64 results Python would carry as big integers;
// rejecting them keeps a wrapped value from deciding a comparison.
func overflow(op string, a, b Value) error {
	return fmt.Errorf("%s %s %s overflows int64: %w", a.Repr(), op, b.Repr(), ErrType)
}

func compare(op string, a, b Value) (bool, error) {
	if op == "==" || op == "!=" {
		eq := equal(a, b)
		return eq == (op == "=="), nil
	}
	var c int
	if as, ok := a.(Str); ok {
		bs, ok := b.(Str)
		if !ok {
			return false, fmt.Errorf("%s %s %s: %w", a.Repr(), op, b.Repr(), ErrType)
		}
		c = strings.Compare(string(as), string(bs))
	} else {
		_, af, _, aok := numeric(a)
		_, bf, _, bok := numeric(b)
		if !aok || !bok {
			return false, fmt.Errorf("%s %s %s: %w", a.Repr(), op, b.Repr(), ErrType)
		}
		switch {
		case af < bf:
			c = -1
		case af > bf:
			c = 1
		}
	}
	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

func equal(a, b Value) bool {
	if as, ok := a.(Str); ok {
		bs, ok := b.(Str)
		return ok && as == bs
	}
	if _, ok := a.(None); ok {
		_, ok := b.(None)
		return ok
	}
	ai, af, afl, aok := numeric(a)
	bi, bf, bfl, bok := numeric(b)
	if !aok || !bok {
		return false
	}
	if afl || bfl {
		return af == bf
	}
	return ai == bi
}

func arith(op string, a, b Value) (Value, error) {
	if as, ok := a.(Str); ok {
		return strArith(op, as, b)
	}
	if bs, ok := b.(Str); ok && op == "*" {
		return strArith(op, bs, a)
	}
	ai, af, afl, aok := numeric(a)
	bi, bf, bfl, bok := numeric(b)
	if !aok || !bok {
		return nil, fmt.Errorf("%s %s %s: %w", a.Repr(), op, b.Repr(), ErrType)
	}
	if op == "/" || afl || bfl {
		return floatArith(op, af, bf)
	}
	switch op {
	case "+":
		r := ai + bi
		if (r > ai) != (bi > 0) {
			return nil, overflow(op, a, b)
		}
		return Int(r), nil
	case "-":
		r := ai - bi
		if (r < ai) != (bi > 0) {
			return nil, overflow(op, a, b)
		}
		return Int(r), nil
	case "*":
		r := ai * bi
		if ai != 0 && (r/ai != bi || (ai == -1 && bi == math.MinInt64)) {
			return nil, overflow(op, a, b)
		}
		return Int(r), nil
	}
	if bi == 0 {
		return nil, fmt.Errorf("integer division by zero: %w", ErrType)
	}
	if ai == math.MinInt64 && bi == -1 {
		return nil, overflow(op, a, b)
	}
	q, m := ai/bi, ai%bi
	// floor semantics: the remainder takes the divisor's sign
	if m != 0 && (m < 0) != (bi < 0) {
		q--
		m += bi
	}
	if op == "//" {
		return Int(q), nil
	}
	return Int(m), nil
}

func floatArith(op string, a, b float64) (Value, error) {
	switch op {
	case "+":
		return Float(a + b), nil
	case "-":
		return Float(a - b), nil
	case "*":
		return Float(a * b), nil
	}
	if b == 0 {
		return nil, fmt.Errorf("float division by zero: %w", ErrType)
	}
	switch op {
	case "/":
		return Float(a / b), nil
	case "//":
		return Float(math.Floor(a / b)), nil
	default:
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return Float(m), nil
	}
}

func strArith(op string, s Str, other Value) (Value, error) {
	switch op {
	case "+":
		if o, ok := other.(Str); ok {
			return s + o, nil
		}
	case "*":
		if n, ok := other.(Int); ok {
			if n <= 0 {
				return Str(""), nil
			}
			if int64(len(s))*int64(n) > maxRepeat {
				return nil, fmt.Errorf("repetition too large: %w", ErrType)
			}
			return Str(strings.Repeat(string(s), int(n))), nil
		}
	}
	return nil, fmt.Errorf("%s %s %s: %w", s.Repr(), op, other.Repr(), ErrType)
}
