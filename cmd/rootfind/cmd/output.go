package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"rootfinder/internal/optimizer"
)

// printer печатает результаты в выбранном формате
type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case "table", "json", "yaml", "csv":
		return &printer{w: w, format: format}, nil
	}
	return nil, fmt.Errorf("неизвестный формат вывода %q", format)
}

// note — пояснение; в машиночитаемых форматах не печатается
func (p *printer) note(s string) {
	if p.format == "table" {
		fmt.Fprintf(p.w, "# %s\n", s)
	}
}

func (p *printer) result(res optimizer.Result) error {
	switch p.format {
	case "json":
		return p.json(res)
	case "yaml":
		return p.yaml(res)
	case "csv":
		return optimizer.WriteCSV(p.w, res.Iters)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if len(res.Iters) > 0 {
		fmt.Fprintln(tw, "k\ta\tb\tf(a)\tf(b)\tx\tf(x)\tf'(x)\terr%\t")
		for _, it := range res.Iters {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				it.K, num(it.A), num(it.B), num(it.FA), num(it.FB),
				num(it.X), num(it.FX), num(it.DFX), errPct(it.Err))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(p.w, "%s: %s\n", res.Method.Title(), res.Outcome.Message())
	if res.Outcome != optimizer.NoSignChange {
		fmt.Fprintf(p.w, "x ≈ %s, итераций: %d\n", strconv.FormatFloat(res.Root, 'g', 12, 64), len(res.Iters))
	}
	return nil
}

func (p *printer) brackets(bs []optimizer.Bracket) error {
	switch p.format {
	case "json":
		return p.json(bs)
	case "yaml":
		return p.yaml(bs)
	case "csv":
		cw := csv.NewWriter(p.w)
		_ = cw.Write([]string{"lower", "upper", "f(lower)", "f(upper)", "iterations"})
		for _, b := range bs {
			_ = cw.Write([]string{num(b.Lower), num(b.Upper), num(b.FLower), num(b.FUpper), strconv.Itoa(b.Iterations)})
		}
		cw.Flush()
		return cw.Error()
	}

	if len(bs) == 0 {
		fmt.Fprintln(p.w, "Не найдено подходящих границ в заданном диапазоне.")
		return nil
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "xl\txu\tf(xl)\tf(xu)\tитераций\t")
	for _, b := range bs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t\n", num(b.Lower), num(b.Upper), num(b.FLower), num(b.FUpper), b.Iterations)
	}
	return tw.Flush()
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) yaml(v any) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func errPct(e *float64) string {
	if e == nil {
		return "—"
	}
	return strconv.FormatFloat(*e, 'f', 6, 64)
}
