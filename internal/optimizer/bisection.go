package optimizer

// Bisection — метод половинного деления на отрезке [xl, xu].
// Если на концах функция одного знака, возвращает исход NoSignChange без итераций.
func Bisection(f Func, xl, xu float64, opts Options) (Result, error) {
	return bracketed(MethodBisection, f, xl, xu, opts, func(xl, xu, fl, fu float64) float64 {
		return (xl + xu) / 2
	})
}

// FalsePosition — метод хорд (regula falsi): следующая точка — пересечение
// секущей через (xl, f(xl)) и (xu, f(xu)) с осью абсцисс.
func FalsePosition(f Func, xl, xu float64, opts Options) (Result, error) {
	return bracketed(MethodFalsePosition, f, xl, xu, opts, func(xl, xu, fl, fu float64) float64 {
		return (xu*fl - xl*fu) / (fl - fu)
	})
}

// bracketed — общий цикл методов с отделённым корнем; next выбирает новую точку внутри отрезка
func bracketed(m Method, f Func, xl, xu float64, opts Options, next func(xl, xu, fl, fu float64) float64) (Result, error) {
	res := Result{Method: m}
	opts, err := opts.normalize()
	if err != nil {
		return res.fail(err)
	}
	if xl > xu {
		xl, xu = xu, xl
	}

	fl, err := evalAt(f, "f", xl)
	if err != nil {
		return res.fail(err)
	}
	fu, err := evalAt(f, "f", xu)
	if err != nil {
		return res.fail(err)
	}

	switch {
	case fl == 0:
		res.Outcome, res.Root = Converged, xl
		return res, nil
	case fu == 0:
		res.Outcome, res.Root = Converged, xu
		return res, nil
	case fl*fu > 0:
		res.Outcome = NoSignChange
		return res, nil
	}

	for k := 1; k <= opts.MaxIter; k++ {
		x := next(xl, xu, fl, fu)
		fx, err := evalAt(f, "f", x)
		if err != nil {
			return res.fail(err)
		}

		if fl*fx < 0 {
			xu, fu = x, fx
		} else {
			xl, fl = x, fx
		}

		it := Iter{K: k, A: xl, B: xu, FA: fl, FB: fu, X: x, FX: fx, Err: res.relErr(x)}
		if err := res.emit(it, opts.OnIter); err != nil {
			return res.fail(err)
		}
		if converged(it, opts.Tol) {
			res.Outcome = Converged
			return res, nil
		}
	}

	return res.limit()
}
