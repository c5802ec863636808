package optimizer

import (
	"fmt"
	"strings"
)

// Method — метод поиска корня
type Method string

const (
	MethodBisection     Method = "bisection"
	MethodFalsePosition Method = "false_position"
	MethodNewton        Method = "newton"
	MethodSecant        Method = "secant"
)

// Methods — все методы в порядке показа в форме
var Methods = []Method{MethodBisection, MethodFalsePosition, MethodNewton, MethodSecant}

// ParseMethod принимает имя метода; допускаются дефисы вместо подчёркиваний
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("неизвестный метод %q", s)
}

// Bracketing сообщает, работает ли метод на отрезке с отделённым корнем
func (m Method) Bracketing() bool {
	return m == MethodBisection || m == MethodFalsePosition
}

// Title — название метода для интерфейса
func (m Method) Title() string {
	switch m {
	case MethodBisection:
		return "Метод бисекции"
	case MethodFalsePosition:
		return "Метод хорд (ложного положения)"
	case MethodNewton:
		return "Метод Ньютона-Рафсона"
	case MethodSecant:
		return "Метод секущих"
	}
	return string(m)
}

// Problem — входные данные одной задачи.
// A, B: отрезок [xl, xu] для методов отрезка, x0 и x1 для секущих;
// для Ньютона используется только A. DF необязательна.
type Problem struct {
	F    Func
	DF   Func
	A, B float64
}

// Solve запускает выбранный метод
func Solve(m Method, p Problem, opts Options) (Result, error) {
	switch m {
	case MethodBisection:
		return Bisection(p.F, p.A, p.B, opts)
	case MethodFalsePosition:
		return FalsePosition(p.F, p.A, p.B, opts)
	case MethodNewton:
		if p.DF != nil {
			return Newton(p.F, p.DF, p.A, opts)
		}
		return NewtonAuto(p.F, p.A, opts)
	case MethodSecant:
		return Secant(p.F, p.A, p.B, opts)
	}
	return Result{Method: m, Outcome: Failed}, fmt.Errorf("неизвестный метод %q", m)
}

// NewProblem разбирает выражения задачи. Производная нужна только Ньютону:
// если dsrc пуст, она строится символьно из fsrc.
func NewProblem(m Method, fsrc, dsrc string, a, b float64) (Problem, error) {
	f, err := NewEvalFunc(fsrc)
	if err != nil {
		return Problem{}, fmt.Errorf("ошибка в выражении функции: %w", err)
	}
	p := Problem{F: f, A: a, B: b}
	if m != MethodNewton {
		return p, nil
	}

	if dsrc != "" {
		if p.DF, err = NewEvalFunc(dsrc); err != nil {
			return p, fmt.Errorf("ошибка в выражении производной: %w", err)
		}
		return p, nil
	}
	d, ok := f.(Differentiable)
	if !ok {
		return p, ErrNoDerivative
	}
	if p.DF, err = d.Derivative(); err != nil {
		return p, fmt.Errorf("не удалось найти производную: %w", err)
	}
	return p, nil
}
