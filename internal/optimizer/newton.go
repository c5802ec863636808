package optimizer

import "fmt"

// Newton — метод Ньютона-Рафсона: x_{n+1} = x_n - f(x_n)/f'(x_n).
// Если f'(x_n) == 0, цикл останавливается с исходом Singular до шага.
func Newton(f, df Func, x0 float64, opts Options) (Result, error) {
	res := Result{Method: MethodNewton, Root: x0}
	opts, err := opts.normalize()
	if err != nil {
		return res.fail(err)
	}

	x := x0
	fx, err := evalAt(f, "f", x)
	if err != nil {
		return res.fail(err)
	}
	if fx == 0 {
		res.Outcome = Converged
		return res, nil
	}

	for k := 1; k <= opts.MaxIter; k++ {
		dfx, err := evalAt(df, "df", x)
		if err != nil {
			return res.fail(err)
		}
		if dfx == 0 {
			res.Outcome = Singular
			return res, nil
		}

		xn := x - fx/dfx
		fxn, err := evalAt(f, "f", xn)
		if err != nil {
			return res.fail(err)
		}

		it := Iter{K: k, A: x, FA: fx, DFX: dfx, X: xn, FX: fxn, Err: res.relErr(xn)}
		if err := res.emit(it, opts.OnIter); err != nil {
			return res.fail(err)
		}
		if converged(it, opts.Tol) {
			res.Outcome = Converged
			return res, nil
		}
		x, fx = xn, fxn
	}

	return res.limit()
}

// NewtonAuto берёт производную у самой функции (см. Differentiable)
func NewtonAuto(f Func, x0 float64, opts Options) (Result, error) {
	d, ok := f.(Differentiable)
	if !ok {
		return Result{Method: MethodNewton, Outcome: Failed}, ErrNoDerivative
	}
	df, err := d.Derivative()
	if err != nil {
		return Result{Method: MethodNewton, Outcome: Failed}, fmt.Errorf("производная: %w", err)
	}
	return Newton(f, df, x0, opts)
}
