package optimizer

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMaxIter — предел итераций, если он не задан
const DefaultMaxIter = 200

var (
	// ErrStopped — специальная ошибка для принудительной остановки
	ErrStopped = errors.New("optimizer: stopped by callback")
	// ErrIterationLimit — допуск не достигнут за MaxIter итераций
	ErrIterationLimit = errors.New("optimizer: iteration limit reached")
	// ErrNonFinite — функция вернула NaN или ±Inf
	ErrNonFinite = errors.New("optimizer: non-finite function value")
	// ErrTolerance — допуск должен быть положительным
	ErrTolerance = errors.New("optimizer: tolerance must be positive")
)

// Outcome — чем закончился поиск корня
type Outcome string

const (
	Converged      Outcome = "converged"
	Singular       Outcome = "singular"
	NoSignChange   Outcome = "no_sign_change"
	IterationLimit Outcome = "iteration_limit"
	Stopped        Outcome = "stopped"
	Failed         Outcome = "failed"
)

// Message — пояснение исхода для пользователя
func (o Outcome) Message() string {
	switch o {
	case Converged:
		return "Корень найден с заданной точностью."
	case Singular:
		return "Производная (или разность значений функции) обратилась в ноль: итерации прекращены."
	case NoSignChange:
		return "На концах отрезка функция одного знака: корень не отделён."
	case IterationLimit:
		return "Достигнут предел итераций, заданная точность не получена."
	case Stopped:
		return "Вычисление остановлено."
	}
	return "Вычисление завершилось ошибкой."
}

// Iter — одна итерация метода.
// Для методов отрезка A, B — границы после шага; для секущих — пара
// предыдущих приближений; для Ньютона A — текущее приближение.
type Iter struct {
	K   int      `json:"k"`
	A   float64  `json:"a"`
	B   float64  `json:"b"`
	FA  float64  `json:"fa"`
	FB  float64  `json:"fb"`
	X   float64  `json:"x"`
	FX  float64  `json:"fx"`
	DFX float64  `json:"dfx,omitempty"`
	Err *float64 `json:"err"` // относительная ошибка, %; nil на первой итерации
}

// Result — трасса итераций и итог
type Result struct {
	Method  Method  `json:"method"`
	Outcome Outcome `json:"outcome"`
	Root    float64 `json:"root"`
	Iters   []Iter  `json:"iters"`
}

// Options — общие параметры всех методов
type Options struct {
	Tol     float64 // допуск относительной ошибки, %
	MaxIter int
	// OnIter вызывается после каждой итерации; если вернёт ErrStopped — алгоритм прерывается.
	OnIter func(Iter) error
}

func (o Options) normalize() (Options, error) {
	if !(o.Tol > 0) || math.IsInf(o.Tol, 0) {
		return o, fmt.Errorf("%w: %v", ErrTolerance, o.Tol)
	}
	if o.MaxIter <= 0 {
		o.MaxIter = DefaultMaxIter
	}
	return o, nil
}

// RelativeError — |cur - prev| / |cur| * 100.
// При cur == 0 относительная ошибка не определена, берётся абсолютная |cur - prev| * 100.
func RelativeError(cur, prev float64) float64 {
	if cur == 0 {
		return math.Abs(cur-prev) * 100
	}
	return math.Abs((cur-prev)/cur) * 100
}

func (r *Result) emit(it Iter, onIter func(Iter) error) error {
	r.Iters = append(r.Iters, it)
	r.Root = it.X
	if onIter == nil {
		return nil
	}
	if err := onIter(it); err != nil {
		if errors.Is(err, ErrStopped) {
			return ErrStopped
		}
		return err
	}
	return nil
}

// fail проставляет исход по ошибке и возвращает частичный результат
func (r Result) fail(err error) (Result, error) {
	if errors.Is(err, ErrStopped) {
		r.Outcome = Stopped
	} else {
		r.Outcome = Failed
	}
	return r, err
}

func (r Result) limit() (Result, error) {
	r.Outcome = IterationLimit
	return r, ErrIterationLimit
}

// converged — сходимость по допуску или точное попадание в ноль
func converged(it Iter, tol float64) bool {
	return it.FX == 0 || (it.Err != nil && *it.Err <= tol)
}

// relErr заполняет ошибку относительно предыдущей записи трассы
func (r *Result) relErr(x float64) *float64 {
	if len(r.Iters) == 0 {
		return nil
	}
	e := RelativeError(x, r.Iters[len(r.Iters)-1].X)
	return &e
}

func evalAt(f Func, name string, x float64) (float64, error) {
	y, err := f.Eval(x)
	if err != nil {
		return math.NaN(), fmt.Errorf("eval %s(%g): %w", name, x, err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return y, fmt.Errorf("%s(%g) = %v: %w", name, x, y, ErrNonFinite)
	}
	return y, nil
}
