// Package calc evaluates arithmetic expressions without executing code.
//
// Only numeric literals, parentheses, unary + and -, and the binary
// operators + - * / // % ** are accepted:
//
//	v, err := calc.Eval("(2 + 3) * 4 % 7")
//
// Precedence follows the usual arithmetic rules: ** binds tightest and
// groups to the right, so -2 ** 2 is -4 and 2 ** 3 ** 2 is 512.
// Identifiers, calls, strings and every other construct are rejected.
package calc

import (
	"errors"
	"fmt"
	"go/scanner"
	"go/token"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ErrDivisionByZero is wrapped by Error when a divisor evaluates to zero.
var ErrDivisionByZero = errors.New("division by zero")

// Error reports an expression that cannot be evaluated.
// Pos is the zero-based byte offset of the offending construct.
type Error struct {
	Expr string
	Pos  int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("calc: %v at offset %d in %q", e.Err, e.Pos, e.Expr)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Eval evaluates expr and returns its value.
func Eval(expr string) (float64, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, &Error{Expr: expr, Err: errors.New("empty expression")}
	}
	if i := strings.Index(expr, "/*"); i >= 0 {
		return 0, &Error{Expr: expr, Pos: i, Err: errors.New("comments are not allowed")}
	}

	items, err := scan(expr)
	if err != nil {
		return 0, err
	}

	p := &parser{expr: expr, items: items}
	v, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	if it := p.peek(); it.tok != token.EOF {
		if it.tok.IsOperator() {
			return 0, p.fail(it.off, "unsupported operator %s", it.text)
		}
		return 0, p.fail(it.off, "unexpected %s", it.text)
	}

	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &Error{Expr: expr, Err: errors.New("result out of range")}
	}
	return v, nil
}

// Format renders v without a trailing fraction when it is integral.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type item struct {
	tok  token.Token
	off  int
	text string
}

// scan tokenizes expr. The Go scanner treats // as a comment, so it is
// rewritten to the same-width &^ before scanning and restored afterwards.
// Adjacent * * tokens are joined into **.
func scan(expr string) ([]item, error) {
	src := []byte(strings.ReplaceAll(expr, "//", "&^"))

	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var scanErr error
	var s scanner.Scanner
	s.Init(file, src, func(pos token.Position, msg string) {
		if scanErr == nil {
			scanErr = &Error{Expr: expr, Pos: pos.Offset, Err: fmt.Errorf("syntax error: %s", msg)}
		}
	}, 0)

	var items []item
	for {
		pos, tok, lit := s.Scan()
		off := file.Offset(pos)

		switch {
		case tok == token.EOF:
			items = append(items, item{tok: tok, off: len(src), text: "end of expression"})
			return items, scanErr
		case tok == token.SEMICOLON && lit == "\n":
			continue
		}

		it := item{tok: tok, off: off, text: lit}
		if lit == "" {
			it.text = tok.String()
		}
		if tok == token.AND_NOT && strings.HasPrefix(expr[off:], "//") {
			it.text = "//"
		}
		if n := len(items); tok == token.MUL && n > 0 {
			if prev := &items[n-1]; prev.text == "*" && prev.off+1 == off {
				prev.text = "**"
				continue
			}
		}
		items = append(items, it)
	}
}

// parser is a recursive descent parser over scanned items:
//
//	expression = term { ("+" | "-") term }
//	term       = unary { ("*" | "/" | "//" | "%") unary }
//	unary      = ("+" | "-") unary | power
//	power      = atom [ "**" unary ]
//	atom       = number | "(" expression ")"
type parser struct {
	expr  string
	items []item
	pos   int
}

func (p *parser) peek() item {
	return p.items[p.pos]
}

func (p *parser) next() item {
	it := p.items[p.pos]
	if it.tok != token.EOF {
		p.pos++
	}
	return it
}

func (p *parser) fail(off int, format string, args ...any) error {
	return &Error{Expr: p.expr, Pos: off, Err: fmt.Errorf(format, args...)}
}

func (p *parser) parseExpression() (float64, error) {
	result, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		op := p.peek()
		if op.text != "+" && op.text != "-" {
			return result, nil
		}
		p.next()

		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op.text == "+" {
			result += right
		} else {
			result -= right
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	result, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		op := p.peek()
		switch op.text {
		case "*", "/", "//", "%":
		default:
			return result, nil
		}
		p.next()

		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}

		if op.text == "*" {
			result *= right
			continue
		}
		if right == 0 {
			return 0, p.fail(op.off, "%w", ErrDivisionByZero)
		}
		switch op.text {
		case "/":
			result /= right
		case "//":
			result = math.Floor(result / right)
		case "%":
			result = floorMod(result, right)
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	switch op := p.peek(); op.text {
	case "+", "-":
		p.next()
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op.text == "-" {
			return -v, nil
		}
		return v, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (float64, error) {
	base, err := p.parseAtom()
	if err != nil {
		return 0, err
	}

	op := p.peek()
	if op.text != "**" {
		return base, nil
	}
	p.next()

	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	switch {
	case base == 0 && exp < 0:
		return 0, p.fail(op.off, "%w", ErrDivisionByZero)
	case base < 0 && exp != math.Trunc(exp):
		return 0, p.fail(op.off, "negative number raised to a fractional power")
	}
	return math.Pow(base, exp), nil
}

func (p *parser) parseAtom() (float64, error) {
	it := p.next()

	switch it.tok {
	case token.INT, token.FLOAT:
		return p.number(it)

	case token.LPAREN:
		v, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing.tok != token.RPAREN {
			return 0, p.fail(closing.off, "missing closing parenthesis")
		}
		return v, nil

	case token.IDENT:
		if p.peek().tok == token.LPAREN {
			return 0, p.fail(it.off, "function calls are not allowed")
		}
		return 0, p.fail(it.off, "unknown name %q", it.text)

	case token.STRING, token.CHAR, token.IMAG:
		return 0, p.fail(it.off, "unsupported literal %s", it.text)

	case token.EOF:
		return 0, p.fail(it.off, "unexpected end of expression")
	}

	return 0, p.fail(it.off, "unexpected %s", it.text)
}

func (p *parser) number(it item) (float64, error) {
	lit := it.text

	if it.tok == token.FLOAT {
		v, err := strconv.ParseFloat(strings.ReplaceAll(lit, "_", ""), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, p.fail(it.off, "invalid number %s", lit)
		}
		return v, nil
	}

	// 010 is octal to Go but a syntax error in ordinary arithmetic.
	if len(lit) > 1 && lit[0] == '0' && lit[1] >= '0' && lit[1] <= '9' && strings.Trim(lit, "0_") != "" {
		return 0, p.fail(it.off, "leading zeros in decimal integer literals are not permitted")
	}

	n, ok := new(big.Int).SetString(lit, 0)
	if !ok {
		return 0, p.fail(it.off, "invalid number %s", lit)
	}
	v, _ := new(big.Float).SetInt(n).Float64()
	return v, nil
}

// floorMod takes the sign of the divisor, so -7 % 3 is 2.
func floorMod(x, y float64) float64 {
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r
}
