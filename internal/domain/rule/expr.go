package rule

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Variables a rule expression may reference.
const (
	VarOvertime  = "overtime"
	VarNextTurn  = "nextTurn"
	VarAllOthers = "allOthers"
)

// Value is the result of evaluating an expression. Booleans coerce to 1 or 0
// when used in arithmetic.
type Value struct {
	Num    float64
	IsBool bool
}

func numberValue(f float64) Value { return Value{Num: f} }

func boolValue(b bool) Value {
	if b {
		return Value{Num: 1, IsBool: true}
	}
	return Value{Num: 0, IsBool: true}
}

// Truthy reports whether the value counts as true in a condition.
func (v Value) Truthy() bool {
	return v.Num != 0 && !math.IsNaN(v.Num)
}

// Expr is a parsed rule expression. Only the rule variables, numeric and
// boolean literals, arithmetic, comparison and logical operators, and a
// fixed set of math helpers are accepted.
type Expr struct {
	src  string
	root node
	refs map[string]bool
}

// Parse compiles src into an expression.
func Parse(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, refs: map[string]bool{}}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, p.peek().text, p.peek().pos)
	}
	return &Expr{src: src, root: root, refs: p.refs}, nil
}

// String returns the source text.
func (e *Expr) String() string {
	return e.src
}

// References reports whether the expression mentions the named variable.
func (e *Expr) References(name string) bool {
	return e.refs[name]
}

// MaxResult bounds the magnitude of an expression result so it always fits
// a second count.
const MaxResult = math.MaxInt32

// Eval evaluates the expression against the given bindings. Referencing a
// variable that isn't bound is an error, as is a result that isn't finite
// or exceeds MaxResult.
func (e *Expr) Eval(vars map[string]float64) (Value, error) {
	v, err := e.root.eval(vars)
	if err != nil {
		return Value{}, err
	}
	if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
		return Value{}, fmt.Errorf("result is not a finite number")
	}
	if math.Abs(v.Num) > MaxResult {
		return Value{}, fmt.Errorf("%w: %g exceeds %d", ErrOutOfRange, v.Num, MaxResult)
	}
	return v, nil
}

// lexer

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokKind
	text string
	num  float64
	pos  int
}

var operators = []string{"===", "!==", "==", "!=", "<=", ">=", "&&", "||", "<", ">", "+", "-", "*", "/", "%", "!"}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			f, err := strconv.ParseFloat(src[start:i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, src[start:i])
			}
			toks = append(toks, token{kind: tokNum, text: src[start:i], num: f, pos: start})
		case isIdentStart(c):
			start := i
			for i < len(src) && (isIdentStart(src[i]) || isDigit(src[i]) || src[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			matched := false
			for _, op := range operators {
				if strings.HasPrefix(src[i:], op) {
					toks = append(toks, token{kind: tokOp, text: op, pos: i})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrSyntax, c, i)
			}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// parser

type parser struct {
	toks []token
	pos  int
	refs map[string]bool
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *parser) binaryLevel(sub func() (node, error), ops ...string) (node, error) {
	left, err := sub()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp(ops...)
		if !ok {
			return left, nil
		}
		right, err := sub()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, l: left, r: right}
	}
}

func (p *parser) parseOr() (node, error)  { return p.binaryLevel(p.parseAnd, "||") }
func (p *parser) parseAnd() (node, error) { return p.binaryLevel(p.parseEq, "&&") }
func (p *parser) parseEq() (node, error) {
	return p.binaryLevel(p.parseRel, "===", "!==", "==", "!=")
}
func (p *parser) parseRel() (node, error) { return p.binaryLevel(p.parseAdd, "<=", ">=", "<", ">") }
func (p *parser) parseAdd() (node, error) { return p.binaryLevel(p.parseMul, "+", "-") }
func (p *parser) parseMul() (node, error) { return p.binaryLevel(p.parseUnary, "*", "/", "%") }

func (p *parser) parseUnary() (node, error) {
	if op, ok := p.acceptOp("-", "+", "!"); ok {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, x: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return numNode(t.num), nil
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ) for ( at offset %d", ErrSyntax, t.pos)
		}
		return inner, nil
	case tokIdent:
		switch t.text {
		case "true":
			return boolNode(true), nil
		case "false":
			return boolNode(false), nil
		case VarOvertime, VarNextTurn, VarAllOthers:
			p.refs[t.text] = true
			return varNode(t.text), nil
		}
		fn, ok := functions[t.text]
		if !ok {
			return nil, fmt.Errorf("%w: unknown identifier %q", ErrSyntax, t.text)
		}
		return p.parseCall(t, fn)
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	default:
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, t.text, t.pos)
	}
}

func (p *parser) parseCall(name token, fn function) (node, error) {
	if p.next().kind != tokLParen {
		return nil, fmt.Errorf("%w: %s must be called", ErrSyntax, name.text)
	}
	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if p.next().kind != tokRParen {
		return nil, fmt.Errorf("%w: missing ) in call to %s", ErrSyntax, name.text)
	}
	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return nil, fmt.Errorf("%w: wrong number of arguments to %s", ErrSyntax, name.text)
	}
	return callNode{name: name.text, fn: fn.apply, args: args}, nil
}

// functions

type function struct {
	minArgs int
	maxArgs int
	apply   func([]float64) float64
}

var functions = map[string]function{}

func init() {
	unary := func(f func(float64) float64) function {
		return function{minArgs: 1, maxArgs: 1, apply: func(a []float64) float64 { return f(a[0]) }}
	}
	variadic := func(f func(float64, float64) float64, empty float64) function {
		return function{minArgs: 0, maxArgs: -1, apply: func(a []float64) float64 {
			acc := empty
			for _, x := range a {
				acc = f(acc, x)
			}
			return acc
		}}
	}
	jsRound := func(x float64) float64 { return math.Floor(x + 0.5) }

	for _, prefix := range []string{"", "Math."} {
		functions[prefix+"abs"] = unary(math.Abs)
		functions[prefix+"floor"] = unary(math.Floor)
		functions[prefix+"ceil"] = unary(math.Ceil)
		functions[prefix+"round"] = unary(jsRound)
		functions[prefix+"min"] = variadic(math.Min, math.Inf(1))
		functions[prefix+"max"] = variadic(math.Max, math.Inf(-1))
	}
}

// evaluation

type node interface {
	eval(vars map[string]float64) (Value, error)
}

type numNode float64

func (n numNode) eval(map[string]float64) (Value, error) { return numberValue(float64(n)), nil }

type boolNode bool

func (n boolNode) eval(map[string]float64) (Value, error) { return boolValue(bool(n)), nil }

type varNode string

func (n varNode) eval(vars map[string]float64) (Value, error) {
	v, ok := vars[string(n)]
	if !ok {
		return Value{}, fmt.Errorf("%s is not available here", string(n))
	}
	return numberValue(v), nil
}

type unaryNode struct {
	op string
	x  node
}

func (n unaryNode) eval(vars map[string]float64) (Value, error) {
	x, err := n.x.eval(vars)
	if err != nil {
		return Value{}, err
	}
	switch n.op {
	case "-":
		return numberValue(-x.Num), nil
	case "+":
		return numberValue(x.Num), nil
	default:
		return boolValue(!x.Truthy()), nil
	}
}

type binaryNode struct {
	op   string
	l, r node
}

func (n binaryNode) eval(vars map[string]float64) (Value, error) {
	l, err := n.l.eval(vars)
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case "&&":
		if !l.Truthy() {
			return boolValue(false), nil
		}
		r, err := n.r.eval(vars)
		if err != nil {
			return Value{}, err
		}
		return boolValue(r.Truthy()), nil
	case "||":
		if l.Truthy() {
			return boolValue(true), nil
		}
		r, err := n.r.eval(vars)
		if err != nil {
			return Value{}, err
		}
		return boolValue(r.Truthy()), nil
	}

	r, err := n.r.eval(vars)
	if err != nil {
		return Value{}, err
	}
	a, b := l.Num, r.Num

	switch n.op {
	case "+":
		return numberValue(a + b), nil
	case "-":
		return numberValue(a - b), nil
	case "*":
		return numberValue(a * b), nil
	case "/":
		if b == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return numberValue(a / b), nil
	case "%":
		if b == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return numberValue(math.Mod(a, b)), nil
	case "<":
		return boolValue(a < b), nil
	case "<=":
		return boolValue(a <= b), nil
	case ">":
		return boolValue(a > b), nil
	case ">=":
		return boolValue(a >= b), nil
	case "==", "===":
		return boolValue(a == b), nil
	case "!=", "!==":
		return boolValue(a != b), nil
	}
	return Value{}, fmt.Errorf("unsupported operator %q", n.op)
}

type callNode struct {
	name string
	fn   func([]float64) float64
	args []node
}

func (n callNode) eval(vars map[string]float64) (Value, error) {
	args := make([]float64, 0, len(n.args))
	for _, a := range n.args {
		v, err := a.eval(vars)
		if err != nil {
			return Value{}, err
		}
		args = append(args, v.Num)
	}
	return numberValue(n.fn(args)), nil
}
