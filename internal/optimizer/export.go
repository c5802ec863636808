package optimizer

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVHeader — колонки выгрузки трассы
var CSVHeader = []string{"k", "a", "b", "f(a)", "f(b)", "x", "f(x)", "f'(x)", "err%"}

// WriteCSV пишет трассу итераций; ошибка первой итерации — пустая ячейка
func WriteCSV(w io.Writer, iters []Iter) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, it := range iters {
		errPct := ""
		if it.Err != nil {
			errPct = fmtFloat(*it.Err)
		}
		_ = cw.Write([]string{
			strconv.Itoa(it.K),
			fmtFloat(it.A),
			fmtFloat(it.B),
			fmtFloat(it.FA),
			fmtFloat(it.FB),
			fmtFloat(it.X),
			fmtFloat(it.FX),
			fmtFloat(it.DFX),
			errPct,
		})
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}
