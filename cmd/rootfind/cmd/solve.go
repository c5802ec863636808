package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rootfinder/internal/config"
	"rootfinder/internal/optimizer"
)

type solveFlags struct {
	fn, deriv      string
	xl, xu, x0, x1 float64
	tol            float64
	maxIter        int
	scan           bool
	format         string
}

// solveCommands — по команде на каждый метод
func solveCommands(settings func() config.Config) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(optimizer.Methods))
	for _, m := range optimizer.Methods {
		cmds = append(cmds, newSolveCmd(m, settings))
	}
	return cmds
}

func newSolveCmd(m optimizer.Method, settings func() config.Config) *cobra.Command {
	var f solveFlags

	c := &cobra.Command{
		Use:   commandName(m),
		Short: m.Title(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, m, f, settings())
		},
	}

	fl := c.Flags()
	fl.StringVarP(&f.fn, "func", "f", "", "функция f(x)")
	fl.Float64Var(&f.tol, "tol", 0, "допуск относительной ошибки, % (по умолчанию из конфигурации)")
	fl.IntVar(&f.maxIter, "max-iter", 0, "предел итераций (по умолчанию из конфигурации)")
	fl.StringVarP(&f.format, "output", "o", "table", "формат вывода: table, json, yaml, csv")
	_ = c.MarkFlagRequired("func")

	switch m {
	case optimizer.MethodNewton:
		fl.Float64Var(&f.x0, "x0", 0, "начальное приближение")
		fl.StringVar(&f.deriv, "deriv", "", "производная f'(x); пусто — вычислить символьно")
		_ = c.MarkFlagRequired("x0")
		c.Example = "  rootfind newton -f 'x**2 - 2' --x0 1"
	case optimizer.MethodSecant:
		fl.Float64Var(&f.x0, "x0", 0, "первое приближение")
		fl.Float64Var(&f.x1, "x1", 0, "второе приближение")
		_ = c.MarkFlagRequired("x0")
		_ = c.MarkFlagRequired("x1")
		c.Example = "  rootfind secant -f 'cos(x) - x' --x0 0 --x1 1"
	default:
		fl.Float64Var(&f.xl, "xl", 0, "нижняя граница отрезка")
		fl.Float64Var(&f.xu, "xu", 0, "верхняя граница отрезка")
		_ = c.MarkFlagRequired("xl")
		_ = c.MarkFlagRequired("xu")
		c.Example = "  rootfind " + commandName(m) + " -f 'x**3 - x - 2' --xl 1 --xu 2"
		if m == optimizer.MethodBisection {
			fl.BoolVar(&f.scan, "scan", false, "сначала найти целочисленный отрезок со сменой знака и взять первый")
			c.Example += "\n  rootfind bisection -f 'x**2 - 5' --xl -10 --xu 10 --scan"
		}
	}
	return c
}

// commandName — имя метода в стиле CLI: false_position → false-position
func commandName(m optimizer.Method) string {
	return strings.ReplaceAll(string(m), "_", "-")
}

func runSolve(cmd *cobra.Command, m optimizer.Method, f solveFlags, cfg config.Config) error {
	out, err := newPrinter(cmd.OutOrStdout(), f.format)
	if err != nil {
		return err
	}
	if f.tol == 0 {
		f.tol = cfg.Solver.DefaultTolerance
	}
	if f.maxIter <= 0 {
		f.maxIter = cfg.Solver.MaxIter
	}

	a, b := f.xl, f.xu
	switch m {
	case optimizer.MethodNewton:
		a = f.x0
	case optimizer.MethodSecant:
		a, b = f.x0, f.x1
	}

	p, err := optimizer.NewProblem(m, f.fn, f.deriv, a, b)
	if err != nil {
		return err
	}

	if f.scan {
		brackets, err := optimizer.ScanBrackets(p.F, a, b, f.tol, cfg.Solver.MaxScanSpan)
		if err != nil {
			return err
		}
		if len(brackets) == 0 {
			return errors.New("не найдено подходящих границ в заданном диапазоне")
		}
		p.A, p.B = brackets[0].Lower, brackets[0].Upper
		out.note(fmt.Sprintf("отрезок [%g, %g] из %d найденных", p.A, p.B, len(brackets)))
	}
	if p.DF != nil && f.deriv == "" {
		out.note(fmt.Sprintf("f'(x) = %v", p.DF))
	}

	res, err := optimizer.Solve(m, p, optimizer.Options{Tol: f.tol, MaxIter: f.maxIter})
	if err != nil && res.Outcome == optimizer.Failed {
		return err
	}
	return out.result(res)
}
