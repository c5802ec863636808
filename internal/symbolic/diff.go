package symbolic

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNotDifferentiable — в выражении есть функция без известной производной
// или остаток от деления.
var ErrNotDifferentiable = errors.New("symbolic: not differentiable")

// derivs — производные элементарных функций по аргументу u (без множителя u').
var derivs = map[string]func(u Expr) Expr{
	"sin": func(u Expr) Expr { return call("cos", u) },
	"cos": func(u Expr) Expr { return neg(call("sin", u)) },
	"tan": func(u Expr) Expr { return div(Num{1}, pow(call("cos", u), Num{2})) },
	"exp": func(u Expr) Expr { return call("exp", u) },
	"log": func(u Expr) Expr { return div(Num{1}, u) },
	"ln":  func(u Expr) Expr { return div(Num{1}, u) },
	"log10": func(u Expr) Expr {
		return div(Num{1}, mul(u, Num{math.Ln10}))
	},
	"sqrt": func(u Expr) Expr { return div(Num{1}, mul(Num{2}, call("sqrt", u))) },
	"abs":  func(u Expr) Expr { return call("sign", u) },
	"sign": func(u Expr) Expr { return Num{0} },
	"asin": func(u Expr) Expr {
		return div(Num{1}, call("sqrt", sub(Num{1}, pow(u, Num{2}))))
	},
	"acos": func(u Expr) Expr {
		return neg(div(Num{1}, call("sqrt", sub(Num{1}, pow(u, Num{2})))))
	},
	"atan": func(u Expr) Expr { return div(Num{1}, add(Num{1}, pow(u, Num{2}))) },
	"sinh": func(u Expr) Expr { return call("cosh", u) },
	"cosh": func(u Expr) Expr { return call("sinh", u) },
	"tanh": func(u Expr) Expr { return div(Num{1}, pow(call("cosh", u), Num{2})) },
}

// Functions перечисляет по алфавиту имена функций, которые понимает разборщик.
func Functions() []string {
	names := make([]string, 0, len(derivs)+1)
	for name := range derivs {
		names = append(names, name)
	}
	names = append(names, "pow")
	sort.Strings(names)
	return names
}

func (n Neg) Diff(v string) Expr { return neg(n.X.Diff(v)) }

func (b Bin) Diff(v string) Expr {
	dl, dr := b.L.Diff(v), b.R.Diff(v)
	switch b.Op {
	case '+':
		return add(dl, dr)
	case '-':
		return sub(dl, dr)
	case '*':
		return add(mul(dl, b.R), mul(b.L, dr))
	case '/':
		// (l'r - lr') / r^2
		return div(sub(mul(dl, b.R), mul(b.L, dr)), pow(b.R, Num{2}))
	case '^':
		return diffPow(b.L, b.R, dl, dr, v)
	}
	panic(fmt.Sprintf("symbolic: unknown operator %q", b.Op))
}

func diffPow(base, exp, db, de Expr, v string) Expr {
	switch {
	case !exp.Depends(v):
		// c·u^(c-1)·u'
		return mul(mul(exp, pow(base, sub(exp, Num{1}))), db)
	case !base.Depends(v):
		// a^u·ln(a)·u'
		return mul(mul(pow(base, exp), call("log", base)), de)
	}
	// u^w·(w'·ln(u) + w·u'/u)
	return mul(pow(base, exp), add(mul(de, call("log", base)), div(mul(exp, db), base)))
}

func (c Call) Diff(v string) Expr {
	if !c.Arg.Depends(v) {
		return Num{0}
	}
	d, ok := derivs[c.Name]
	if !ok {
		// разборщик не пропускает неизвестные функции
		panic(fmt.Sprintf("symbolic: no derivative for %s", c.Name))
	}
	return mul(d(c.Arg), c.Arg.Diff(v))
}

// Derivative разбирает src и возвращает производную по v в синтаксисе govaluate.
func Derivative(src, v string) (string, error) {
	e, err := Parse(src)
	if err != nil {
		return "", err
	}
	if hasModulo(e) {
		return "", fmt.Errorf("%w: оператор %%", ErrNotDifferentiable)
	}
	return e.Diff(v).String(), nil
}

func hasModulo(e Expr) bool {
	switch t := e.(type) {
	case Neg:
		return hasModulo(t.X)
	case Bin:
		return t.Op == '%' || hasModulo(t.L) || hasModulo(t.R)
	case Call:
		return hasModulo(t.Arg)
	}
	return false
}
