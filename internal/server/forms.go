package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rootfinder/internal/metrics"
	"rootfinder/internal/optimizer"
	"rootfinder/internal/symbolic"
)

// значения полей формы в том виде, как их ввёл пользователь
type formValues struct {
	Method     string
	Function   string
	Derivative string
	Tolerance  string
	XL, XU     string
	X0, X1     string
	MaxIter    string
}

type pageData struct {
	Methods    []optimizer.Method
	Functions  []string // функции, доступные в выражениях
	Form       formValues
	Error      string
	Message    string
	Derivative string              // производная, которой пользовался Ньютон
	Brackets   []optimizer.Bracket // найденные сканированием отрезки (бисекция)
	Selected   *optimizer.Bracket
	Result     *optimizer.Result
}

// Index — главная страница: GET показывает форму, POST решает задачу
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := pageData{
		Methods:   optimizer.Methods,
		Functions: symbolic.Functions(),
		Form: formValues{
			Method:    string(optimizer.MethodBisection),
			Tolerance: fmtFloat(s.cfg.Solver.DefaultTolerance),
			MaxIter:   strconv.Itoa(s.cfg.Solver.MaxIter),
		},
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "ошибка формы: "+err.Error(), http.StatusBadRequest)
			return
		}
		data.Form = formValues{
			Method:     r.PostFormValue("method"),
			Function:   strings.TrimSpace(r.PostFormValue("function")),
			Derivative: strings.TrimSpace(r.PostFormValue("derivative")),
			Tolerance:  strings.TrimSpace(r.PostFormValue("tolerance")),
			XL:         strings.TrimSpace(r.PostFormValue("x_l")),
			XU:         strings.TrimSpace(r.PostFormValue("x_u")),
			X0:         strings.TrimSpace(r.PostFormValue("x0")),
			X1:         strings.TrimSpace(r.PostFormValue("x1")),
			MaxIter:    strings.TrimSpace(r.PostFormValue("max_iter")),
		}
		if err := s.solveForm(&data); err != nil {
			data.Error = err.Error()
		}
	default:
		http.Error(w, "только GET или POST", http.StatusMethodNotAllowed)
		return
	}

	s.render(w, "index.html", data)
}

// errNoBrackets — сканирование не нашло ни одного отрезка со сменой знака
var errNoBrackets = errors.New("Не найдено подходящих границ в заданном диапазоне.")

func (s *Server) solveForm(d *pageData) error {
	m, err := optimizer.ParseMethod(d.Form.Method)
	if err != nil {
		return err
	}
	if d.Form.Function == "" {
		return errors.New("введите функцию f(x)")
	}

	tol := s.cfg.Solver.DefaultTolerance
	if d.Form.Tolerance != "" {
		if tol, err = parseNumber("допуск", d.Form.Tolerance); err != nil {
			return err
		}
		if tol <= 0 {
			return errors.New("допуск должен быть положительным")
		}
	}
	maxIter := s.cfg.Solver.MaxIter
	if d.Form.MaxIter != "" {
		n, err := strconv.Atoi(d.Form.MaxIter)
		if err != nil || n <= 0 {
			return fmt.Errorf("предел итераций: ожидается целое > 0, получено %q", d.Form.MaxIter)
		}
		maxIter = min(n, s.cfg.Solver.MaxIter)
	}

	var a, b float64
	switch m {
	case optimizer.MethodNewton:
		if a, err = parseNumber("x0", d.Form.X0); err != nil {
			return err
		}
	case optimizer.MethodSecant:
		if a, err = parseNumber("x0", d.Form.X0); err != nil {
			return err
		}
		if b, err = parseNumber("x1", d.Form.X1); err != nil {
			return err
		}
	default:
		if a, err = parseNumber("x_l", d.Form.XL); err != nil {
			return err
		}
		if b, err = parseNumber("x_u", d.Form.XU); err != nil {
			return err
		}
	}

	prob, deriv, err := buildProblem(m, d.Form.Function, d.Form.Derivative, a, b)
	if err != nil {
		return err
	}
	d.Derivative = deriv

	// для бисекции начальный отрезок подбирается сканированием целых точек
	if m == optimizer.MethodBisection {
		brackets, err := optimizer.ScanBrackets(prob.F, a, b, tol, s.cfg.Solver.MaxScanSpan)
		if err != nil {
			return err
		}
		if len(brackets) == 0 {
			return errNoBrackets
		}
		d.Brackets = brackets
		d.Selected = &d.Brackets[0]
		prob.A, prob.B = d.Selected.Lower, d.Selected.Upper
	}

	start := time.Now()
	res, err := optimizer.Solve(m, prob, optimizer.Options{Tol: tol, MaxIter: maxIter})
	metrics.ObserveSolve(string(m), string(res.Outcome), len(res.Iters), time.Since(start))
	s.log.Info("решение формы",
		"method", m,
		"func", d.Form.Function,
		"outcome", res.Outcome,
		"iterations", len(res.Iters),
	)

	d.Result = &res
	d.Message = res.Outcome.Message()
	if err != nil && res.Outcome == optimizer.Failed {
		return fmt.Errorf("ошибка при вычислении: %w", err)
	}
	return nil
}

// parseNumber принимает и десятичную запятую
func parseNumber(name, s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("поле %s не заполнено", name)
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("поле %s: %q не число", name, s)
	}
	return v, nil
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("шаблон", "name", name, "err", err)
	}
}
