package symbolic

import (
	"math"
	"sort"
	"testing"

	"github.com/Knetic/govaluate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalAt вычисляет напечатанное выражение тем же вычислителем, что и сервер.
func evalAt(t *testing.T, src string, x float64) float64 {
	t.Helper()
	unary := func(fn func(float64) float64) govaluate.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			return fn(args[0].(float64)), nil
		}
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"sin":  unary(math.Sin),
		"cos":  unary(math.Cos),
		"exp":  unary(math.Exp),
		"log":  unary(math.Log),
		"sqrt": unary(math.Sqrt),
		"cosh": unary(math.Cosh),
		"sign": unary(func(v float64) float64 {
			switch {
			case v > 0:
				return 1
			case v < 0:
				return -1
			}
			return 0
		}),
	}
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(src, funcs)
	require.NoError(t, err, src)
	v, err := expr.Evaluate(map[string]interface{}{"x": x, "pi": math.Pi, "e": math.E})
	require.NoError(t, err, src)
	return v.(float64)
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * x", "(1 + (2 * x))"},
		{"x - 1 - 2", "((x - 1) - 2)"},
		{"x^2", "(x ** 2)"},
		{"x**2**3", "(x ** (2 ** 3))"},
		{"x^3^2", "(x ** (3 ** 2))"},
		{"-x**2", "(-(x ** 2))"},
		{"-x^2 + 4", "((-(x ** 2)) + 4)"},
		{"(-x)^2", "((-x) ** 2)"},
		{"2^-1", "(2 ** (-1))"},
		{"2 * -x", "(2 * (-x))"},
		{"x % 3", "(x % 3)"},
		{"1e-3 * x", "(0.001 * x)"},
		{"2.5E2 + e", "(250 + e)"},
		{"pow(x, 3)", "(x ** 3)"},
		{"sin(2*x)/x", "(sin((2 * x)) / x)"},
		{"(x + 1) * (x - 1)", "((x + 1) * (x - 1))"},
		{"0.5 * x", "(0.5 * x)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		isErr error
	}{
		{"empty", "", nil},
		{"unbalanced", "(x + 1", nil},
		{"trailing", "x x", nil},
		{"bad char", "x # 2", nil},
		{"unknown func", "gamma(x)", ErrNotDifferentiable},
		{"pow arity", "pow(x)", nil},
		{"sin arity", "sin(x, 2)", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			if tt.isErr != nil {
				assert.ErrorIs(t, err, tt.isErr)
			}
		})
	}
}

func TestDerivative_Strings(t *testing.T) {
	got, err := Derivative("x**3 - x - 2", "x")
	require.NoError(t, err)
	assert.Equal(t, "((3 * (x ** 2)) - 1)", got)

	got, err = Derivative("5", "x")
	require.NoError(t, err)
	assert.Equal(t, "0", got)

	got, err = Derivative("pi * x", "x")
	require.NoError(t, err)
	assert.Equal(t, "pi", got)
}

func TestDerivative_Numeric(t *testing.T) {
	tests := []struct {
		src string
		df  func(x float64) float64
	}{
		{"x^2 - 2", func(x float64) float64 { return 2 * x }},
		{"cos(x) - x", func(x float64) float64 { return -math.Sin(x) - 1 }},
		{"x * exp(x)", func(x float64) float64 { return math.Exp(x) + x*math.Exp(x) }},
		{"log(x) / x", func(x float64) float64 { return (1 - math.Log(x)) / (x * x) }},
		{"sqrt(x + 1)", func(x float64) float64 { return 0.5 / math.Sqrt(x+1) }},
		{"2^x", func(x float64) float64 { return math.Pow(2, x) * math.Ln2 }},
		{"x^x", func(x float64) float64 { return math.Pow(x, x) * (math.Log(x) + 1) }},
		{"sin(x^2)", func(x float64) float64 { return math.Cos(x*x) * 2 * x }},
		{"abs(x - 3)", func(x float64) float64 { return math.Copysign(1, x-3) }},
		{"-x**2", func(x float64) float64 { return -2 * x }},
		{"-x^2 + 4", func(x float64) float64 { return -2 * x }},
		{"x^-1", func(x float64) float64 { return -1 / (x * x) }},
		{"sinh(3*x)", func(x float64) float64 { return 3 * math.Cosh(3*x) }},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			d, err := Derivative(tt.src, "x")
			require.NoError(t, err)
			for _, x := range []float64{0.7, 1.3, 2.1} {
				assert.InDelta(t, tt.df(x), evalAt(t, d, x), 1e-9, "%s at x=%v", d, x)
			}
		})
	}
}

func TestParse_ValuesMatchMath(t *testing.T) {
	tests := []struct {
		src  string
		x    float64
		want float64
	}{
		{"-x^2 + 4", 3, -5},
		{"-2^2", 0, -4},
		{"2^3^2", 0, 512},
		{"x^-1", 4, 0.25},
		{"-x**2 - 1", 2, -5},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, evalAt(t, e.String(), tt.x), 1e-12)
		})
	}
}

func TestDerivative_Modulo(t *testing.T) {
	_, err := Derivative("x % 2", "x")
	assert.ErrorIs(t, err, ErrNotDifferentiable)

	_, err = Derivative("sin(x % 2) + 1", "x")
	assert.ErrorIs(t, err, ErrNotDifferentiable)
}

func TestFunctions(t *testing.T) {
	names := Functions()
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "sin")
	assert.Contains(t, names, "pow")
	for _, name := range names {
		if name == "pow" {
			continue
		}
		_, err := Parse(name + "(x)")
		assert.NoError(t, err, name)
	}
}

func TestNum_StringNegative(t *testing.T) {
	assert.Equal(t, "(-2.5)", Num{-2.5}.String())
	assert.Equal(t, "0.0001", Num{1e-4}.String())
}
