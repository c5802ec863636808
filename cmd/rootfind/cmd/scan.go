package cmd

import (
	"github.com/spf13/cobra"

	"rootfinder/internal/config"
	"rootfinder/internal/optimizer"
)

func newScanCmd(settings func() config.Config) *cobra.Command {
	var (
		fn, format string
		xl, xu     float64
		tol        float64
	)

	c := &cobra.Command{
		Use:   "scan",
		Short: "Найти целочисленные отрезки, на концах которых f меняет знак",
		Long: `Перебирает все пары целых a < b из [trunc(xl), trunc(xu)] и печатает те,
где f(a)·f(b) < 0, с оценкой числа шагов бисекции до допуска.`,
		Example: "  rootfind scan -f 'x**3 - 6*x**2 + 11*x - 6.1' --xl 0 --xu 4",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := settings()
			out, err := newPrinter(cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			f, err := optimizer.NewEvalFunc(fn)
			if err != nil {
				return err
			}
			if tol == 0 {
				tol = cfg.Solver.DefaultTolerance
			}
			brackets, err := optimizer.ScanBrackets(f, xl, xu, tol, cfg.Solver.MaxScanSpan)
			if err != nil {
				return err
			}
			return out.brackets(brackets)
		},
	}

	fl := c.Flags()
	fl.StringVarP(&fn, "func", "f", "", "функция f(x)")
	fl.Float64Var(&xl, "xl", 0, "нижняя граница")
	fl.Float64Var(&xu, "xu", 0, "верхняя граница")
	fl.Float64Var(&tol, "tol", 0, "допуск, % (для оценки числа итераций)")
	fl.StringVarP(&format, "output", "o", "table", "формат вывода: table, json, yaml, csv")
	_ = c.MarkFlagRequired("func")
	_ = c.MarkFlagRequired("xl")
	_ = c.MarkFlagRequired("xu")
	return c
}
