package optimizer

// Secant — метод секущих по двум начальным приближениям x0, x1.
// Если f(x0) == f(x1), знаменатель обращается в ноль: исход Singular.
func Secant(f Func, x0, x1 float64, opts Options) (Result, error) {
	res := Result{Method: MethodSecant, Root: x1}
	opts, err := opts.normalize()
	if err != nil {
		return res.fail(err)
	}

	f0, err := evalAt(f, "f", x0)
	if err != nil {
		return res.fail(err)
	}
	f1, err := evalAt(f, "f", x1)
	if err != nil {
		return res.fail(err)
	}
	if f1 == 0 {
		res.Outcome = Converged
		return res, nil
	}

	for k := 1; k <= opts.MaxIter; k++ {
		if f1 == f0 {
			res.Outcome = Singular
			return res, nil
		}

		x2 := x1 - f1*(x1-x0)/(f1-f0)
		f2, err := evalAt(f, "f", x2)
		if err != nil {
			return res.fail(err)
		}

		it := Iter{K: k, A: x0, B: x1, FA: f0, FB: f1, X: x2, FX: f2, Err: res.relErr(x2)}
		if err := res.emit(it, opts.OnIter); err != nil {
			return res.fail(err)
		}
		if converged(it, opts.Tol) {
			res.Outcome = Converged
			return res, nil
		}
		x0, f0, x1, f1 = x1, f1, x2, f2
	}

	return res.limit()
}
