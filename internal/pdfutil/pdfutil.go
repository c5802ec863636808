// Package pdfutil — склейка PDF-файлов и извлечение страниц (обёртка над pdfcpu).
package pdfutil

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrPageRange — некорректная запись диапазона страниц
	ErrPageRange = errors.New("pdfutil: bad page range")
	// ErrTooFewFiles — для склейки нужно минимум два файла
	ErrTooFewFiles = errors.New("pdfutil: need at least two files to merge")
)

func init() {
	// pdfcpu не должен создавать каталог настроек в $HOME
	api.DisableConfigDir()
}

func newConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// ParsePageRanges разбирает запись вида "1-3,5,8-" (открытый конец — до
// последней страницы, "-4" — с первой). Возвращает номера страниц по
// возрастанию без повторов.
func ParsePageRanges(ranges string, pageCount int) ([]int, error) {
	ranges = strings.TrimSpace(ranges)
	if ranges == "" {
		return nil, fmt.Errorf("%w: пустой диапазон", ErrPageRange)
	}

	seen := map[int]bool{}
	for _, part := range strings.Split(ranges, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: пустой элемент в %q", ErrPageRange, ranges)
		}

		from, to, err := parseRange(part, pageCount)
		if err != nil {
			return nil, err
		}
		for p := from; p <= to; p++ {
			seen[p] = true
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

func parseRange(part string, pageCount int) (int, int, error) {
	lo, hi, isRange := strings.Cut(part, "-")
	from, err := pageNum(lo, 1)
	if err != nil {
		return 0, 0, err
	}
	to := from
	if isRange {
		if to, err = pageNum(hi, pageCount); err != nil {
			return 0, 0, err
		}
	}

	switch {
	case from < 1 || to < 1:
		return 0, 0, fmt.Errorf("%w: страницы нумеруются с 1 (%q)", ErrPageRange, part)
	case from > to:
		return 0, 0, fmt.Errorf("%w: начало больше конца (%q)", ErrPageRange, part)
	case to > pageCount:
		return 0, 0, fmt.Errorf("%w: в документе %d стр. (%q)", ErrPageRange, pageCount, part)
	}
	return from, to, nil
}

// pageNum — номер страницы; пустая строка означает значение по умолчанию
func pageNum(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q не число", ErrPageRange, s)
	}
	return n, nil
}

// PageCount возвращает число страниц документа
func PageCount(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := api.PageCount(rs, newConf())
	if err != nil {
		return 0, fmt.Errorf("чтение PDF: %w", err)
	}
	return n, nil
}

// Extract записывает в w документ только из выбранных страниц (в порядке документа).
func Extract(rs io.ReadSeeker, ranges string, w io.Writer) ([]int, error) {
	n, err := PageCount(rs)
	if err != nil {
		return nil, err
	}
	pages, err := ParsePageRanges(ranges, n)
	if err != nil {
		return nil, err
	}

	selected := make([]string, len(pages))
	for i, p := range pages {
		selected[i] = strconv.Itoa(p)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if err := api.Trim(rs, w, selected, newConf()); err != nil {
		return nil, fmt.Errorf("извлечение страниц: %w", err)
	}
	return pages, nil
}

// Merge склеивает документы в порядке перечисления.
func Merge(inputs []io.ReadSeeker, w io.Writer) error {
	if len(inputs) < 2 {
		return ErrTooFewFiles
	}
	for _, rs := range inputs {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}
	if err := api.MergeRaw(inputs, w, false, newConf()); err != nil {
		return fmt.Errorf("склейка PDF: %w", err)
	}
	return nil
}
