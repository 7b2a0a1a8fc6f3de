// Copyright 2025 The minesweeper-ai-benchmark Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// formula is a parsed arithmetic expression over one bound variable x.
// The grammar admits +, -, *, /, parentheses, and the functions min, max,
// and abs. Nothing else; formula strings are untrusted input and are never
// executed as code.
type formula struct {
	root exprNode
	src  string
}

func parseFormula(src string) (*formula, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &formulaParser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("rules: trailing input in formula %q", src)
	}
	return &formula{root: root, src: src}, nil
}

func (f *formula) eval(x float64) (float64, error) {
	v, err := f.root.eval(x)
	if err != nil {
		return 0, fmt.Errorf("rules: formula %q: %w", f.src, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("rules: formula %q produced a non-finite value", f.src)
	}
	return v, nil
}

type exprNode interface {
	eval(x float64) (float64, error)
}

type numberNode float64

func (n numberNode) eval(float64) (float64, error) { return float64(n), nil }

type variableNode struct{}

func (variableNode) eval(x float64) (float64, error) { return x, nil }

type binaryNode struct {
	op          byte
	left, right exprNode
}

func (n *binaryNode) eval(x float64) (float64, error) {
	l, err := n.left.eval(x)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(x)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return l / r, nil
	}
	return 0, fmt.Errorf("unknown operator %c", n.op)
}

type negateNode struct{ operand exprNode }

func (n *negateNode) eval(x float64) (float64, error) {
	v, err := n.operand.eval(x)
	return -v, err
}

type callNode struct {
	fn   string
	args []exprNode
}

func (n *callNode) eval(x float64) (float64, error) {
	vals := make([]float64, len(n.args))
	for i, arg := range n.args {
		v, err := arg.eval(x)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	switch n.fn {
	case "abs":
		return math.Abs(vals[0]), nil
	case "min":
		out := vals[0]
		for _, v := range vals[1:] {
			out = math.Min(out, v)
		}
		return out, nil
	case "max":
		out := vals[0]
		for _, v := range vals[1:] {
			out = math.Max(out, v)
		}
		return out, nil
	}
	return 0, fmt.Errorf("unknown function %q", n.fn)
}

type token struct {
	kind  byte // 'n' number, 'x' variable, 'f' function name, or the literal
	value float64
	name  string
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case strings.IndexByte("+-*/(),", c) >= 0:
			tokens = append(tokens, token{kind: c})
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			v, err := strconv.ParseFloat(src[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("rules: bad number %q in formula", src[i:j])
			}
			tokens = append(tokens, token{kind: 'n', value: v})
			i = j
		case unicode.IsLetter(rune(c)):
			j := i
			for j < len(src) && unicode.IsLetter(rune(src[j])) {
				j++
			}
			word := src[i:j]
			switch word {
			case "x":
				tokens = append(tokens, token{kind: 'x'})
			case "min", "max", "abs":
				tokens = append(tokens, token{kind: 'f', name: word})
			default:
				return nil, fmt.Errorf("rules: unknown identifier %q in formula", word)
			}
			i = j
		default:
			return nil, fmt.Errorf("rules: unexpected character %q in formula", c)
		}
	}
	return tokens, nil
}

type formulaParser struct {
	tokens []token
	pos    int
}

func (p *formulaParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *formulaParser) expect(kind byte) error {
	t, ok := p.peek()
	if !ok || t.kind != kind {
		return fmt.Errorf("rules: expected %q in formula", kind)
	}
	p.pos++
	return nil
}

func (p *formulaParser) parseExpr() (exprNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || (t.kind != '+' && t.kind != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.kind, left: left, right: right}
	}
}

func (p *formulaParser) parseTerm() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || (t.kind != '*' && t.kind != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.kind, left: left, right: right}
	}
}

func (p *formulaParser) parseUnary() (exprNode, error) {
	if t, ok := p.peek(); ok && t.kind == '-' {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negateNode{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *formulaParser) parsePrimary() (exprNode, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("rules: unexpected end of formula")
	}
	switch t.kind {
	case 'n':
		p.pos++
		return numberNode(t.value), nil
	case 'x':
		p.pos++
		return variableNode{}, nil
	case 'f':
		p.pos++
		if err := p.expect('('); err != nil {
			return nil, err
		}
		var args []exprNode
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			next, ok := p.peek()
			if !ok {
				return nil, fmt.Errorf("rules: unterminated call to %s", t.name)
			}
			if next.kind == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		if t.name == "abs" && len(args) != 1 {
			return nil, fmt.Errorf("rules: abs takes one argument")
		}
		if (t.name == "min" || t.name == "max") && len(args) < 2 {
			return nil, fmt.Errorf("rules: %s takes at least two arguments", t.name)
		}
		return &callNode{fn: t.name, args: args}, nil
	case '(':
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("rules: unexpected token %q in formula", t.kind)
	}
}
