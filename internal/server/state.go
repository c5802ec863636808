package server

import (
	"context"
	"sync"
	"time"

	"rootfinder/internal/optimizer"
)

// параметры запуска метода
type RunParams struct {
	Method  string  `json:"method" validate:"required"`
	Func    string  `json:"func" validate:"required"`
	Deriv   string  `json:"deriv"`
	A       float64 `json:"a"`
	B       float64 `json:"b"`
	Tol     float64 `json:"tol" validate:"gte=0"`
	MaxIter int     `json:"maxIter" validate:"gte=0"`
}

// состояние одного запуска
type RunState struct {
	ID        string
	Method    optimizer.Method
	Params    RunParams
	CreatedAt time.Time
	Cancel    context.CancelFunc

	mu     sync.Mutex
	iters  []optimizer.Iter
	result *optimizer.Result
	err    string
	final  string // последнее событие SSE (done/stopped/error)
	done   chan struct{}
}

func (rs *RunState) addIter(it optimizer.Iter) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.iters = append(rs.iters, it)
}

// Iters — копия накопленной трассы
func (rs *RunState) Iters() []optimizer.Iter {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]optimizer.Iter(nil), rs.iters...)
}

func (rs *RunState) finish(res *optimizer.Result, errMsg, final string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.final != "" {
		return
	}
	rs.result, rs.err, rs.final = res, errMsg, final
	if rs.done == nil {
		rs.done = make(chan struct{})
	}
	close(rs.done)
}

// Done закрывается, когда запуск завершён и Final уже заполнен
func (rs *RunState) Done() <-chan struct{} {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.done == nil {
		rs.done = make(chan struct{})
	}
	return rs.done
}

// Final возвращает завершающее событие; пустая строка — запуск ещё идёт
func (rs *RunState) Final() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.final
}

// Result — итог запуска (nil, пока не завершён или при ошибке)
func (rs *RunState) Result() *optimizer.Result {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.result
}

// registry хранит запуски по id
type registry struct {
	mu   sync.Mutex
	runs map[string]*RunState
	ttl  time.Duration
}

func newRegistry(ttl time.Duration) *registry {
	return &registry{runs: map[string]*RunState{}, ttl: ttl}
}

// save сохраняет запуск и заодно вычищает завершённые запуски старше ttl
func (r *registry) save(rs *RunState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, old := range r.runs {
		if time.Since(old.CreatedAt) > r.ttl && old.Final() != "" {
			delete(r.runs, id)
		}
	}
	r.runs[rs.ID] = rs
}

func (r *registry) get(id string) *RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[id]
}
