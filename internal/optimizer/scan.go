package optimizer

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrScanSpan — диапазон сканирования слишком широк
	ErrScanSpan = errors.New("optimizer: scan range too wide")
	// ErrScanBounds — граница сканирования не конечна
	ErrScanBounds = errors.New("optimizer: scan bounds must be finite")
)

// ScanSpanLimit — наибольшая ширина сканирования, когда maxSpan не задан.
// Пары перебираются за квадратичное время.
const ScanSpanLimit = 10000

// Bracket — целочисленный отрезок, на концах которого функция меняет знак
type Bracket struct {
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	FLower     float64 `json:"f_lower"`
	FUpper     float64 `json:"f_upper"`
	Iterations int     `json:"iterations"` // оценка числа шагов бисекции до допуска
}

// ScanBrackets перебирает все пары целых lower < upper из [trunc(xl), trunc(xu)]
// и возвращает те, где f(lower)·f(upper) < 0. Точки, в которых f не вычисляется
// или не конечна, пропускаются. maxSpan <= 0 означает ScanSpanLimit.
func ScanBrackets(f Func, xl, xu, tol float64, maxSpan int) ([]Bracket, error) {
	if !(tol > 0) {
		return nil, fmt.Errorf("%w: %v", ErrTolerance, tol)
	}
	if math.IsNaN(xl) || math.IsNaN(xu) || math.IsInf(xl, 0) || math.IsInf(xu, 0) {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrScanBounds, xl, xu)
	}
	if xl > xu {
		xl, xu = xu, xl
	}
	if maxSpan <= 0 || maxSpan > ScanSpanLimit {
		maxSpan = ScanSpanLimit
	}
	// ширина считается во float64: разность больших границ не влезает в int
	flo, fhi := math.Trunc(xl), math.Trunc(xu)
	if span := fhi - flo; span > float64(maxSpan) {
		return nil, fmt.Errorf("%w: %g > %d", ErrScanSpan, span, maxSpan)
	}
	lo, hi := int(flo), int(fhi)

	// значения в целых точках считаются один раз
	vals := make([]float64, hi-lo+1)
	ok := make([]bool, hi-lo+1)
	for i := range vals {
		y, err := evalAt(f, "f", float64(lo+i))
		vals[i], ok[i] = y, err == nil
	}

	var out []Bracket
	for i := 0; i < len(vals)-1; i++ {
		if !ok[i] {
			continue
		}
		for j := i + 1; j < len(vals); j++ {
			if !ok[j] || vals[i]*vals[j] >= 0 {
				continue
			}
			width := float64(j - i)
			out = append(out, Bracket{
				Lower:      float64(lo + i),
				Upper:      float64(lo + j),
				FLower:     vals[i],
				FUpper:     vals[j],
				Iterations: int(math.Ceil(math.Log2(width / (tol / 100)))),
			})
		}
	}
	return out, nil
}
