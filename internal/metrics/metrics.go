// Package metrics — Prometheus-метрики решателя, PDF-утилиты и HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// solvesTotal — число запусков по методу и исходу
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rootfinder",
		Subsystem: "solver",
		Name:      "runs_total",
		Help:      "Root-finding runs by method and outcome",
	}, []string{"method", "outcome"})

	solveIterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rootfinder",
		Subsystem: "solver",
		Name:      "iterations",
		Help:      "Iterations per root-finding run",
		Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
	}, []string{"method"})

	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rootfinder",
		Subsystem: "solver",
		Name:      "duration_seconds",
		Help:      "Root-finding run duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"method"})

	// pdfOps — операции с PDF; status: ok, error
	pdfOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rootfinder",
		Subsystem: "pdf",
		Name:      "operations_total",
		Help:      "PDF merge/extract operations by status",
	}, []string{"op", "status"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rootfinder",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rootfinder",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// ObserveSolve учитывает один запуск метода
func ObserveSolve(method, outcome string, iterations int, d time.Duration) {
	solvesTotal.WithLabelValues(method, outcome).Inc()
	solveIterations.WithLabelValues(method).Observe(float64(iterations))
	solveDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObservePDF учитывает операцию с PDF
func ObservePDF(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	pdfOps.WithLabelValues(op, status).Inc()
}

// ObserveHTTP учитывает HTTP-запрос
func ObserveHTTP(route, method string, code int, d time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
