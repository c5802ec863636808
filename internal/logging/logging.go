// Package logging настраивает slog-логгер сервиса.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel разбирает уровень: debug, info, warn, error
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("уровень логирования %q: %w", s, err)
	}
	return l, nil
}

// New создаёт логгер с текстовым или JSON-выводом.
// Неизвестный уровень заменяется на info.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl, _ := ParseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("service", "rootfinder")
}
