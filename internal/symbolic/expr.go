// Package symbolic — разбор выражений f(x) и символьное дифференцирование.
//
// Дерево выражения печатается обратно в синтаксисе govaluate, поэтому
// производная вычисляется тем же вычислителем, что и сама функция.
package symbolic

import (
	"math"
	"strconv"
)

// Expr — узел дерева выражения.
type Expr interface {
	// Diff возвращает производную по переменной v (уже упрощённую).
	Diff(v string) Expr
	// String печатает выражение в синтаксисе govaluate.
	String() string
	// Depends сообщает, входит ли переменная v в выражение.
	Depends(v string) bool
}

// Num — числовая константа.
type Num struct{ V float64 }

// Var — переменная или именованная константа (pi, e).
type Var struct{ Name string }

// Neg — унарный минус.
type Neg struct{ X Expr }

// Bin — бинарная операция: + - * / % ^.
type Bin struct {
	Op   byte
	L, R Expr
}

// Call — вызов функции одного аргумента.
type Call struct {
	Name string
	Arg  Expr
}

func (n Num) Diff(string) Expr         { return Num{0} }
func (n Num) Depends(string) bool      { return false }
func (v Var) Depends(name string) bool { return v.Name == name }
func (n Neg) Depends(v string) bool    { return n.X.Depends(v) }
func (b Bin) Depends(v string) bool    { return b.L.Depends(v) || b.R.Depends(v) }
func (c Call) Depends(v string) bool   { return c.Arg.Depends(v) }

func (v Var) Diff(name string) Expr {
	if v.Name == name {
		return Num{1}
	}
	return Num{0}
}

func (n Num) String() string {
	s := strconv.FormatFloat(math.Abs(n.V), 'f', -1, 64)
	if n.V < 0 {
		return "(-" + s + ")"
	}
	return s
}

func (v Var) String() string  { return v.Name }
func (n Neg) String() string  { return "(-" + n.X.String() + ")" }
func (c Call) String() string { return c.Name + "(" + c.Arg.String() + ")" }

func (b Bin) String() string {
	op := string(b.Op)
	if b.Op == '^' {
		op = "**"
	}
	return "(" + b.L.String() + " " + op + " " + b.R.String() + ")"
}

func isNum(e Expr, v float64) bool {
	n, ok := e.(Num)
	return ok && n.V == v
}

// конструкторы ниже выполняют простейшие упрощения: свёртку констант
// и тождества с нулём и единицей

func neg(x Expr) Expr {
	switch t := x.(type) {
	case Num:
		return Num{-t.V}
	case Neg:
		return t.X
	}
	return Neg{x}
}

func add(a, b Expr) Expr {
	na, aok := a.(Num)
	nb, bok := b.(Num)
	switch {
	case aok && bok:
		return Num{na.V + nb.V}
	case isNum(a, 0):
		return b
	case isNum(b, 0):
		return a
	}
	if n, ok := b.(Neg); ok {
		return Bin{'-', a, n.X}
	}
	return Bin{'+', a, b}
}

func sub(a, b Expr) Expr {
	na, aok := a.(Num)
	nb, bok := b.(Num)
	switch {
	case aok && bok:
		return Num{na.V - nb.V}
	case isNum(b, 0):
		return a
	case isNum(a, 0):
		return neg(b)
	}
	return Bin{'-', a, b}
}

func mul(a, b Expr) Expr {
	na, aok := a.(Num)
	nb, bok := b.(Num)
	switch {
	case aok && bok:
		return Num{na.V * nb.V}
	case isNum(a, 0), isNum(b, 0):
		return Num{0}
	case isNum(a, 1):
		return b
	case isNum(b, 1):
		return a
	case isNum(a, -1):
		return neg(b)
	case isNum(b, -1):
		return neg(a)
	}
	if bok {
		// константу — вперёд
		return Bin{'*', b, a}
	}
	return Bin{'*', a, b}
}

func div(a, b Expr) Expr {
	na, aok := a.(Num)
	nb, bok := b.(Num)
	switch {
	case aok && bok && nb.V != 0:
		return Num{na.V / nb.V}
	case isNum(a, 0):
		return Num{0}
	case isNum(b, 1):
		return a
	}
	return Bin{'/', a, b}
}

func pow(a, b Expr) Expr {
	na, aok := a.(Num)
	nb, bok := b.(Num)
	switch {
	case isNum(b, 0):
		return Num{1}
	case isNum(b, 1):
		return a
	case aok && bok:
		return Num{math.Pow(na.V, nb.V)}
	}
	return Bin{'^', a, b}
}

func call(name string, arg Expr) Expr {
	return Call{Name: name, Arg: arg}
}
