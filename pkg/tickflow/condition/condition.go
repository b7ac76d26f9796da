package condition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every *SyntaxError.
var ErrSyntax = errors.New("condition syntax error")

// SyntaxError reports where an expression failed to compile.
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("condition %q: %s at offset %d", e.Expr, e.Msg, e.Pos)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Operator compares two resolved operands.
type Operator func(left, right any) bool

// Option configures Compile.
type Option func(*compiler)

// WithOperator registers a custom binary operator. The name must be a plain
// identifier and must not shadow a keyword.
func WithOperator(name string, op Operator) Option {
	return func(c *compiler) {
		if c.ops == nil {
			c.ops = make(map[string]Operator)
		}
		c.ops[name] = op
	}
}

// Condition is a compiled expression. It is safe for concurrent use.
type Condition struct {
	src  string
	root node
}

// Compile parses src.
func Compile(src string, opts ...Option) (*Condition, error) {
	c := &compiler{src: src}
	for _, opt := range opts {
		opt(c)
	}
	for name := range c.ops {
		switch strings.ToLower(name) {
		case "and", "or", "not", "contains":
			return nil, fmt.Errorf("condition: operator %q shadows a keyword", name)
		}
	}

	if strings.TrimSpace(src) == "" {
		return &Condition{src: src, root: literal{false}}, nil
	}

	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	c.toks = toks
	root, err := c.parseOr()
	if err != nil {
		return nil, err
	}
	if t := c.peek(); t.kind != tokEOF {
		return nil, c.errorf(t, "unexpected %q", t.text)
	}
	return &Condition{src: src, root: root}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string, opts ...Option) *Condition {
	c, err := Compile(src, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Match evaluates the condition against vars. vars may be nil.
func (c *Condition) Match(vars map[string]any) bool {
	return Truthy(c.root.eval(vars))
}

// String returns the source expression.
func (c *Condition) String() string { return c.src }

// Eval compiles and matches src in one go.
func Eval(src string, vars map[string]any) (bool, error) {
	c, err := Compile(src)
	if err != nil {
		return false, err
	}
	return c.Match(vars), nil
}

type node interface {
	eval(vars map[string]any) any
}

type literal struct{ v any }

func (n literal) eval(map[string]any) any { return n.v }

type ident struct{ name string }

func (n ident) eval(vars map[string]any) any {
	if v, ok := lookup(vars, n.name); ok {
		return v
	}
	return n.name
}

type not struct{ x node }

func (n not) eval(vars map[string]any) any { return !Truthy(n.x.eval(vars)) }

type and struct{ l, r node }

func (n and) eval(vars map[string]any) any {
	return Truthy(n.l.eval(vars)) && Truthy(n.r.eval(vars))
}

type or struct{ l, r node }

func (n or) eval(vars map[string]any) any {
	return Truthy(n.l.eval(vars)) || Truthy(n.r.eval(vars))
}

type compare struct {
	op   Operator
	l, r node
}

func (n compare) eval(vars map[string]any) any {
	return n.op(n.l.eval(vars), n.r.eval(vars))
}

type compiler struct {
	src  string
	ops  map[string]Operator
	toks []token
	pos  int
}

func (c *compiler) peek() token { return c.toks[c.pos] }

func (c *compiler) next() token {
	t := c.toks[c.pos]
	if t.kind != tokEOF {
		c.pos++
	}
	return t
}

func (c *compiler) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Expr: c.src, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (c *compiler) parseOr() (node, error) {
	left, err := c.parseAnd()
	if err != nil {
		return nil, err
	}
	for c.peek().kind == tokOr {
		c.next()
		right, err := c.parseAnd()
		if err != nil {
			return nil, err
		}
		left = or{left, right}
	}
	return left, nil
}

func (c *compiler) parseAnd() (node, error) {
	left, err := c.parseUnary()
	if err != nil {
		return nil, err
	}
	for c.peek().kind == tokAnd {
		c.next()
		right, err := c.parseUnary()
		if err != nil {
			return nil, err
		}
		left = and{left, right}
	}
	return left, nil
}

func (c *compiler) parseUnary() (node, error) {
	switch t := c.peek(); t.kind {
	case tokNot:
		c.next()
		x, err := c.parseUnary()
		if err != nil {
			return nil, err
		}
		return not{x}, nil
	case tokLParen:
		c.next()
		x, err := c.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := c.next(); closing.kind != tokRParen {
			return nil, c.errorf(closing, "missing ')'")
		}
		return x, nil
	default:
		return c.parseCompare()
	}
}

func (c *compiler) parseCompare() (node, error) {
	left, err := c.parseOperand()
	if err != nil {
		return nil, err
	}
	op, ok := c.operator(c.peek())
	if !ok {
		return left, nil
	}
	c.next()
	right, err := c.parseOperand()
	if err != nil {
		return nil, err
	}
	return compare{op: op, l: left, r: right}, nil
}

// operator reports whether t is a comparison operator at this position.
func (c *compiler) operator(t token) (Operator, bool) {
	switch t.kind {
	case tokOp:
		return builtins[t.text], true
	case tokIdent:
		if strings.EqualFold(t.text, "contains") {
			return builtins["contains"], true
		}
		op, ok := c.ops[t.text]
		return op, ok
	}
	return nil, false
}

func (c *compiler) parseOperand() (node, error) {
	t := c.next()
	switch t.kind {
	case tokString:
		return literal{t.text}, nil
	case tokNumber:
		if i, err := strconv.ParseInt(t.text, 10, 64); err == nil {
			return literal{i}, nil
		}
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, c.errorf(t, "invalid number %q", t.text)
		}
		return literal{f}, nil
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true":
			return literal{true}, nil
		case "false":
			return literal{false}, nil
		case "null", "nil":
			return literal{nil}, nil
		}
		return ident{t.text}, nil
	case tokEOF:
		return nil, c.errorf(t, "unexpected end of expression")
	default:
		return nil, c.errorf(t, "expected operand, got %q", t.text)
	}
}
