package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"rootfinder/internal/metrics"
	"rootfinder/internal/optimizer"
)

// StartRun запускает метод асинхронно; итерации уходят в SSE-стрим
func (s *Server) StartRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}

	var p RunParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "ошибка JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(p); err != nil {
		http.Error(w, "неверные параметры: "+err.Error(), http.StatusBadRequest)
		return
	}

	m, err := optimizer.ParseMethod(p.Method)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p.Tol <= 0 {
		p.Tol = s.cfg.Solver.DefaultTolerance
	}
	if p.MaxIter <= 0 || p.MaxIter > s.cfg.Solver.MaxIter {
		p.MaxIter = s.cfg.Solver.MaxIter
	}
	if m.Bracketing() && !(p.A < p.B) {
		http.Error(w, "требуется a < b", http.StatusBadRequest)
		return
	}

	prob, deriv, err := buildProblem(m, p.Func, p.Deriv, p.A, p.B)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// предварительно считаем значения функции для графика
	lo, hi := plotRange(m, p.A, p.B)
	xs, ys := sample(prob.F, lo, hi, s.cfg.Solver.PlotSamples)

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	rs := &RunState{
		ID:        id,
		Method:    m,
		Params:    p,
		CreatedAt: time.Now(),
		Cancel:    cancel,
	}
	s.runs.save(rs)

	go s.run(ctx, rs, prob)

	resp := map[string]any{
		"id":     id,
		"method": m,
		"xs":     xs,
		"ys":     ys,
	}
	if deriv != "" {
		resp["deriv"] = deriv
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// run выполняет метод и публикует события start/iter/(done|stopped|error)
func (s *Server) run(ctx context.Context, rs *RunState, prob optimizer.Problem) {
	defer rs.Cancel()

	startMsg, _ := json.Marshal(map[string]any{
		"type":   "start",
		"id":     rs.ID,
		"method": rs.Method,
	})
	s.hub.Publish(rs.ID, string(startMsg))

	onIter := func(it optimizer.Iter) error {
		select {
		case <-ctx.Done():
			return optimizer.ErrStopped
		default:
		}

		rs.addIter(it)
		msg, _ := json.Marshal(map[string]any{
			"type": "iter",
			"iter": it,
		})
		s.hub.Publish(rs.ID, string(msg))
		return nil
	}

	start := time.Now()
	res, err := optimizer.Solve(rs.Method, prob, optimizer.Options{
		Tol:     rs.Params.Tol,
		MaxIter: rs.Params.MaxIter,
		OnIter:  onIter,
	})
	metrics.ObserveSolve(string(rs.Method), string(res.Outcome), len(res.Iters), time.Since(start))

	var final []byte
	switch {
	case errors.Is(err, optimizer.ErrStopped):
		final, _ = json.Marshal(map[string]any{"type": "stopped"})
		rs.finish(&res, "", string(final))
		s.log.Info("запуск остановлен", "id", rs.ID, "iterations", len(res.Iters))
	case err != nil && res.Outcome == optimizer.Failed:
		msg := "ошибка при вычислении: " + err.Error()
		final, _ = json.Marshal(map[string]any{"type": "error", "err": msg})
		rs.finish(nil, msg, string(final))
		s.log.Warn("запуск завершился ошибкой", "id", rs.ID, "err", err)
	default:
		final, _ = json.Marshal(map[string]any{
			"type":       "done",
			"outcome":    res.Outcome,
			"message":    res.Outcome.Message(),
			"root":       res.Root,
			"iterations": len(res.Iters),
		})
		rs.finish(&res, "", string(final))
		s.log.Info("запуск завершён",
			"id", rs.ID,
			"method", rs.Method,
			"outcome", res.Outcome,
			"root", res.Root,
			"iterations", len(res.Iters),
		)
	}
	s.hub.Publish(rs.ID, string(final))
}

// StopRun — прерывание запуска
func (s *Server) StopRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return
	}

	rs := s.runs.get(id)
	if rs == nil {
		http.Error(w, "неизвестный id", http.StatusNotFound)
		return
	}

	if rs.Cancel != nil {
		rs.Cancel()
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV — экспорт итераций в CSV
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return
	}

	rs := s.runs.get(id)
	if rs == nil {
		http.Error(w, "неизвестный id", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=iterations_"+id+".csv")
	if err := optimizer.WriteCSV(w, rs.Iters()); err != nil {
		s.log.Warn("экспорт CSV", "id", id, "err", err)
	}
}

// Stream — SSE-стрим итераций
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return
	}
	rs := s.runs.get(id)
	if rs == nil {
		http.Error(w, "неизвестный id", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.hub.Subscribe(id)
	defer cancel()

	// запуск уже закончился: отдаём итог и закрываем стрим
	if final := rs.Final(); final != "" {
		writeEvent(w, final)
		flusher.Flush()
		return
	}

	// итог берётся из состояния запуска: Hub отбрасывает сообщения,
	// когда буфер подписчика полон, и завершающее событие может не дойти
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			writeEvent(w, msg)
			flusher.Flush()
			if msg == rs.Final() {
				return
			}
		case <-rs.Done():
			final := rs.Final()
			for pending := true; pending; {
				select {
				case msg := <-ch:
					if msg != final {
						writeEvent(w, msg)
					}
				default:
					pending = false
				}
			}
			writeEvent(w, final)
			flusher.Flush()
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, msg string) {
	fmt.Fprintf(w, "event: msg\n")
	fmt.Fprintf(w, "data: %s\n\n", msg)
}

// buildProblem разбирает выражения; вторым значением идёт производная
// для показа (пусто для всех методов, кроме Ньютона)
func buildProblem(m optimizer.Method, fsrc, dsrc string, a, b float64) (optimizer.Problem, string, error) {
	p, err := optimizer.NewProblem(m, fsrc, dsrc, a, b)
	if err != nil || p.DF == nil {
		return p, "", err
	}
	return p, fmt.Sprint(p.DF), nil
}

// plotRange — отрезок для графика: границы для методов отрезка и секущих,
// окрестность x0 для Ньютона
func plotRange(m optimizer.Method, a, b float64) (float64, float64) {
	if m == optimizer.MethodNewton {
		span := math.Max(1, math.Abs(a))
		return a - span, a + span
	}
	if a > b {
		a, b = b, a
	}
	if a == b {
		return a - 1, b + 1
	}
	return a, b
}

// sample вычисляет n точек графика; точки вне области определения — null
func sample(f optimizer.Func, lo, hi float64, n int) ([]float64, []*float64) {
	xs := make([]float64, n)
	ys := make([]*float64, n)
	h := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		x := lo + float64(i)*h
		xs[i] = x
		y, err := f.Eval(x)
		if err != nil || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		ys[i] = &y
	}
	return xs, ys
}
