package symbolic

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Приоритеты обычные математические: степень связывает сильнее унарного
// минуса (-x^2 == -(x^2)) и правоассоциативна (2^3^2 == 2^9), остальные
// бинарные операции левоассоциативны.
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/" | "%") unary }
//	unary   = ("-" | "+") unary | power
//	power   = primary [ ("**" | "^") unary ]
//	primary = number | ident | ident "(" sum ["," sum] ")" | "(" sum ")"

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
	pos  int
}

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			j = exponent(rs, j)
			toks = append(toks, token{tokNum, string(rs[i:j]), i})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			toks = append(toks, token{tokIdent, string(rs[i:j]), i})
			i = j
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{tokOp, "^", i})
			i += 2
		case strings.ContainsRune("+-*/^%", r):
			toks = append(toks, token{tokOp, string(r), i})
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		default:
			return nil, fmt.Errorf("symbolic: неожиданный символ %q в позиции %d", r, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(rs)}), nil
}

// exponent дочитывает показатель 1e-3; без цифры после e это константа e
func exponent(rs []rune, j int) int {
	if j >= len(rs) || (rs[j] != 'e' && rs[j] != 'E') {
		return j
	}
	k := j + 1
	if k < len(rs) && (rs[k] == '+' || rs[k] == '-') {
		k++
	}
	if k >= len(rs) || !unicode.IsDigit(rs[k]) {
		return j
	}
	for k < len(rs) && unicode.IsDigit(rs[k]) {
		k++
	}
	return k
}

type parser struct {
	toks []token
	pos  int
}

// Parse разбирает выражение от одной или нескольких переменных.
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("symbolic: лишний токен %q в позиции %d", t.text, t.pos)
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops string) (string, bool) {
	t := p.peek()
	if t.kind == tokOp && strings.Contains(ops, t.text) {
		return t.text, true
	}
	return "", false
}

func (p *parser) sum() (Expr, error) {
	l, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("+-")
		if !ok {
			return l, nil
		}
		p.next()
		r, err := p.product()
		if err != nil {
			return nil, err
		}
		l = Bin{op[0], l, r}
	}
}

func (p *parser) product() (Expr, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("*/%")
		if !ok {
			return l, nil
		}
		p.next()
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = Bin{op[0], l, r}
	}
}

func (p *parser) unary() (Expr, error) {
	if op, ok := p.isOp("+-"); ok {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return Neg{x}, nil
		}
		return x, nil
	}
	return p.power()
}

// power: показатель разбирается через unary, отсюда правая ассоциативность и x^-1
func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.isOp("^"); !ok {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return Bin{'^', base, exp}, nil
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("symbolic: некорректное число %q в позиции %d", t.text, t.pos)
		}
		return Num{v}, nil
	case tokIdent:
		if p.peek().kind != tokLParen {
			return Var{t.text}, nil
		}
		return p.call(t)
	case tokLParen:
		e, err := p.sum()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, fmt.Errorf("symbolic: ожидалась ')' в позиции %d", c.pos)
		}
		return e, nil
	case tokEOF:
		return nil, fmt.Errorf("symbolic: неожиданный конец выражения")
	}
	return nil, fmt.Errorf("symbolic: неожиданный токен %q в позиции %d", t.text, t.pos)
}

func (p *parser) call(name token) (Expr, error) {
	p.next() // (
	arg, err := p.sum()
	if err != nil {
		return nil, err
	}
	var second Expr
	if p.peek().kind == tokComma {
		p.next()
		if second, err = p.sum(); err != nil {
			return nil, err
		}
	}
	if c := p.next(); c.kind != tokRParen {
		return nil, fmt.Errorf("symbolic: ожидалась ')' в позиции %d", c.pos)
	}

	if name.text == "pow" {
		if second == nil {
			return nil, fmt.Errorf("symbolic: pow требует два аргумента")
		}
		return Bin{'^', arg, second}, nil
	}
	if second != nil {
		return nil, fmt.Errorf("symbolic: %s принимает один аргумент", name.text)
	}
	if _, ok := derivs[name.text]; !ok {
		return nil, fmt.Errorf("%w: неизвестная функция %s", ErrNotDifferentiable, name.text)
	}
	return Call{Name: name.text, Arg: arg}, nil
}
