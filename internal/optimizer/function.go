package optimizer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"rootfinder/internal/symbolic"
)

// Func — интерфейс для абстрактной функции f(x)
type Func interface {
	Eval(x float64) (float64, error)
}

// Differentiable — функция, умеющая построить свою производную
type Differentiable interface {
	Derivative() (Func, error)
}

// ErrNoDerivative — производная не задана и не может быть получена
var ErrNoDerivative = errors.New("optimizer: derivative unavailable")

// FuncOf оборачивает обычную Go-функцию
func FuncOf(fn func(x float64) float64) Func { return plainFunc(fn) }

type plainFunc func(float64) float64

func (f plainFunc) Eval(x float64) (float64, error) { return f(x), nil }

// evalFunc — реализация Func на основе govaluate
type evalFunc struct {
	src  string
	expr *govaluate.EvaluableExpression
}

var evalFuncs = map[string]govaluate.ExpressionFunction{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"exp":   unary(math.Exp),
	"log":   unary(math.Log),
	"ln":    unary(math.Log),
	"log10": unary(math.Log10),
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"sign":  unary(sign),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow: ожидается 2 аргумента, получено %d", len(args))
		}
		return math.Pow(toFloat(args[0]), toFloat(args[1])), nil
	},
}

// Normalize приводит пользовательскую запись к синтаксису govaluate.
// Запятая между цифрами читается как десятичный разделитель, кроме
// запятой между аргументами pow: pow(2,3) остаётся степенью.
func Normalize(expr string) string {
	expr = strings.TrimSpace(expr)
	b := []byte(expr)
	var powArgs []bool // по одной записи на открытую скобку
	for i, c := range b {
		switch c {
		case '(':
			head := strings.TrimRight(expr[:i], " \t")
			powArgs = append(powArgs, strings.HasSuffix(head, "pow"))
		case ')':
			if len(powArgs) > 0 {
				powArgs = powArgs[:len(powArgs)-1]
			}
		case ',':
			if len(powArgs) > 0 && powArgs[len(powArgs)-1] {
				continue
			}
			if i > 0 && i+1 < len(b) && isDigit(b[i-1]) && isDigit(b[i+1]) {
				b[i] = '.'
			}
		}
	}
	return strings.ReplaceAll(string(b), "^", "**")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// NewEvalFunc создаёт вычислимую функцию по строке f(x).
// Выражение разбирается с обычными приоритетами (-x^2 == -(x^2)),
// govaluate получает уже расставленные скобки.
func NewEvalFunc(expr string) (Func, error) {
	src := Normalize(expr)
	if src == "" {
		return nil, errors.New("пустое выражение")
	}

	tree, err := symbolic.Parse(src)
	if err != nil {
		return nil, err
	}
	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(tree.String(), evalFuncs)
	if err != nil {
		return nil, err
	}
	for _, v := range parsed.Vars() {
		if v != "x" && v != "pi" && v != "e" {
			return nil, fmt.Errorf("неизвестная переменная %q (допустимы x, pi, e)", v)
		}
	}

	return &evalFunc{src: src, expr: parsed}, nil
}

func (f *evalFunc) Eval(x float64) (float64, error) {
	v, err := f.expr.Evaluate(map[string]interface{}{
		"x":  x,
		"pi": math.Pi,
		"e":  math.E,
	})
	if err != nil {
		return math.NaN(), err
	}

	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN(), err
		}
		return parsed, nil
	default:
		return math.NaN(), fmt.Errorf("выражение не вернуло число: %T", v)
	}
}

// Derivative строит f'(x) символьным дифференцированием
func (f *evalFunc) Derivative() (Func, error) {
	d, err := symbolic.Derivative(f.src, "x")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDerivative, err)
	}
	return NewEvalFunc(d)
}

func (f *evalFunc) String() string { return f.src }

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("ожидается 1 аргумент, получено %d", len(args))
		}
		return fn(toFloat(args[0])), nil
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return math.NaN()
	}
}
