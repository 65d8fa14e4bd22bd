package engine

import (
	"fmt"
	"strings"
)

// EvalExpression parses and evaluates an integer arithmetic expression
// built from a pool of available numbers. Supported syntax: integer
// literals, + - * /, and parentheses. Division must divide evenly.
//
// Every literal in the expression consumes one occurrence from the
// pool; using a number more often than the pool provides is an error.
//
// Precondition: expr must be non-empty.
// Postcondition: Returns the evaluated result or a descriptive error.
func EvalExpression(expr string, pool []int) (int, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, fmt.Errorf("expr: empty expression")
	}

	p := &exprParser{input: expr, remaining: make(map[int]int, len(pool))}
	for _, n := range pool {
		p.remaining[n]++
	}

	result, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("expr: unexpected %q at position %d in %q", p.input[p.pos], p.pos, p.input)
	}
	return result, nil
}

// exprParser is a recursive-descent parser over a byte offset; grammar:
//
//	sum    := term (('+'|'-') term)*
//	term   := factor (('*'|'/') factor)*
//	factor := number | '(' sum ')'
type exprParser struct {
	input     string
	pos       int
	remaining map[int]int // pool numbers still unused
}

func (p *exprParser) parseSum() (int, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return left, nil
		}
		switch p.input[p.pos] {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (int, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return left, nil
		}
		switch p.input[p.pos] {
		case '*':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("expr: division by zero in %q", p.input)
			}
			if left%right != 0 {
				return 0, fmt.Errorf("expr: %d/%d does not divide evenly in %q", left, right, p.input)
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseFactor() (int, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("expr: unexpected end of expression %q", p.input)
	}

	if p.input[p.pos] == '(' {
		p.pos++
		inner, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("expr: missing ')' in %q", p.input)
		}
		p.pos++
		return inner, nil
	}

	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("expr: unexpected %q at position %d in %q", p.input[p.pos], p.pos, p.input)
	}

	n := 0
	for _, c := range p.input[start:p.pos] {
		n = n*10 + int(c-'0')
	}

	if p.remaining[n] == 0 {
		return 0, fmt.Errorf("expr: number %d is not available in the pool", n)
	}
	p.remaining[n]--

	return n, nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}
