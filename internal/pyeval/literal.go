package pyeval

import (
	"fmt"
	"strconv"
)

// maxDepth bounds list nesting so hostile input cannot exhaust the stack.
const maxDepth = 32

// parser is a one-token-lookahead cursor over a lexer.
type parser struct {
	lx      lexer
	tok     token
	lastEnd int // byte offset just past the last consumed token
	depth   int
}

func newParser(src string) (*parser, error) {
	p := &parser{lx: lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	p.lastEnd = 0
	return p, nil
}

func (p *parser) advance() error {
	p.lastEnd = p.lx.pos
	t, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) isOp(op string) bool { return p.tok.kind == tokOp && p.tok.text == op }

func (p *parser) expectOp(op string) error {
	if !p.isOp(op) {
		return fmt.Errorf("expected %q at %d: %w", op, p.tok.pos, ErrSyntax)
	}
	return p.advance()
}

// ParseLiteral parses a complete list/str/number/bool/None literal.
// Single and double quotes are both accepted.
func ParseLiteral(src string) (Value, error) {
	v, end, err := ParseLiteralPrefix(src)
	if err != nil {
		return nil, err
	}
	rest := lexer{src: src, pos: end}
	if t, err := rest.next(); err != nil || t.kind != tokEOF {
		return nil, fmt.Errorf("trailing input at %d: %w", end, ErrSyntax)
	}
	return v, nil
}

// ParseLiteralPrefix parses one literal at the start of src and returns
// the byte offset just past it, so callers can keep scanning the text that
// follows.
func ParseLiteralPrefix(src string) (Value, int, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, 0, err
	}
	v, err := p.literal()
	if err != nil {
		return nil, 0, err
	}
	return v, p.lastEnd, nil
}

func (p *parser) literal() (Value, error) {
	t := p.tok
	switch t.kind {
	case tokInt, tokFloat:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return numberValue(t)
	case tokString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Str(t.text), nil
	case tokName:
		v, ok := constant(t.text)
		if !ok {
			return nil, fmt.Errorf("name %q at %d: %w", t.text, t.pos, ErrRejected)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return v, nil
	case tokOp:
		switch t.text {
		case "-", "+":
			if err := p.advance(); err != nil {
				return nil, err
			}
			n := p.tok
			if n.kind != tokInt && n.kind != tokFloat {
				return nil, fmt.Errorf("sign without number at %d: %w", t.pos, ErrSyntax)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			v, err := numberValue(n)
			if err != nil || t.text == "+" {
				return v, err
			}
			return negate(v)
		case "[":
			return p.list()
		}
	}
	return nil, fmt.Errorf("unexpected token at %d: %w", t.pos, ErrSyntax)
}

func (p *parser) list() (Value, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, fmt.Errorf("list nesting too deep: %w", ErrSyntax)
	}
	if err := p.expectOp("["); err != nil {
		return nil, err
	}
	out := List{}
	for !p.isOp("]") {
		v, err := p.literal()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if p.isOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if !p.isOp("]") {
			return nil, fmt.Errorf("expected ',' or ']' at %d: %w", p.tok.pos, ErrSyntax)
		}
	}
	closeEnd := p.tok.pos + 1
	if p.depth > 1 {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return out, nil
	}
	// the outermost bracket ends the literal; do not lex the prose after it
	p.lastEnd = closeEnd
	p.lx.pos = closeEnd
	p.tok = token{kind: tokEOF, pos: closeEnd}
	return out, nil
}

func numberValue(t token) (Value, error) {
	if t.kind == tokInt {
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer %q: %w", t.text, ErrSyntax)
		}
		return Int(n), nil
	}
	f, err := strconv.ParseFloat(t.text, 64)
	if err != nil {
		return nil, fmt.Errorf("float %q: %w", t.text, ErrSyntax)
	}
	return Float(f), nil
}

func constant(name string) (Value, bool) {
	switch name {
	case "True", "true":
		return Bool(true), true
	case "False", "false":
		return Bool(false), true
	case "None":
		return None{}, true
	}
	return nil, false
}
