package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rootfinder/internal/metrics"
)

// Handler собирает маршруты и промежуточные обработчики
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// формы
	mux.HandleFunc("/", s.Index)
	mux.HandleFunc("/pdf", s.PDFForm)
	mux.HandleFunc("/pdf/merge", s.MergePDF)
	mux.HandleFunc("/pdf/extract", s.ExtractPDF)

	// API эндпоинты
	mux.HandleFunc("/start", s.StartRun)
	mux.HandleFunc("/stop", s.StopRun)
	mux.HandleFunc("/stream", s.Stream)
	mux.HandleFunc("/export", s.ExportCSV)

	// служебное
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	var h http.Handler = mux
	if s.cfg.Server.RateLimit > 0 {
		h = newIPLimiter(s.cfg.Server.RateLimit, s.cfg.Server.RateBurst, s.proxies).middleware(h)
	}
	return s.logRequests(h)
}

var knownRoutes = map[string]bool{
	"/": true, "/pdf": true, "/pdf/merge": true, "/pdf/extract": true,
	"/start": true, "/stop": true, "/stream": true, "/export": true,
	"/healthz": true, "/metrics": true,
}

// statusRecorder запоминает код ответа; Flush нужен для SSE
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if !knownRoutes[route] {
			route = "other"
		}
		d := time.Since(start)
		metrics.ObserveHTTP(route, r.Method, rec.code, d)
		s.log.Debug("запрос",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"duration", d,
		)
	})
}
