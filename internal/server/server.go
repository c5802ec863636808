// Package server — HTTP-интерфейс: формы методов, запуск со стримингом
// итераций по SSE, экспорт в CSV и PDF-утилита.
package server

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/netip"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"rootfinder/internal/config"
	"rootfinder/internal/optimizer"
	"rootfinder/internal/sse"
)

//go:embed templates/*.html
var templateFS embed.FS

// завершённые запуски хранятся не меньше часа
const runTTL = time.Hour

// Server держит зависимости обработчиков
type Server struct {
	cfg      config.Config
	log      *slog.Logger
	runs     *registry
	hub      *sse.Hub
	tmpl     *template.Template
	validate *validator.Validate
	proxies  []netip.Prefix
}

// New создаёт сервер и разбирает шаблоны
func New(cfg config.Config, log *slog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"num":   fmtNum,
		"errp":  fmtErrPercent,
		"title": func(m optimizer.Method) string { return m.Title() },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("шаблоны: %w", err)
	}
	proxies, err := parseProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		log:      log,
		runs:     newRegistry(runTTL),
		hub:      sse.NewHub(),
		tmpl:     tmpl,
		validate: validator.New(),
		proxies:  proxies,
	}, nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}

func fmtNum(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	return strconv.FormatFloat(v, 'g', 8, 64)
}

func fmtErrPercent(e *float64) string {
	if e == nil {
		return "—"
	}
	return strconv.FormatFloat(*e, 'f', 6, 64)
}
