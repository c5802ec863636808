// Package config загружает настройки сервиса из YAML-файла и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config — полная конфигурация
type Config struct {
	Server ServerConfig `yaml:"server"`
	Solver SolverConfig `yaml:"solver"`
	PDF    PDFConfig    `yaml:"pdf"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig — HTTP-сервер
type ServerConfig struct {
	Addr            string   `yaml:"addr" validate:"required"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"` // 0 — без ограничения (нужно для SSE)
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	RateLimit       float64  `yaml:"rate_limit" validate:"gte=0"` // POST-запросов в секунду на IP; 0 — без ограничения
	RateBurst       int      `yaml:"rate_burst" validate:"gte=0"`
	// адреса обратных прокси (IP или CIDR), которым доверяется X-Forwarded-For
	TrustedProxies  []string `yaml:"trusted_proxies" validate:"dive,cidr|ip"`
}

// SolverConfig — параметры методов по умолчанию
type SolverConfig struct {
	MaxIter          int     `yaml:"max_iter" validate:"gte=1,lte=100000"`
	DefaultTolerance float64 `yaml:"default_tolerance" validate:"gt=0"`
	MaxScanSpan      int     `yaml:"max_scan_span" validate:"gte=1,lte=10000"`
	PlotSamples      int     `yaml:"plot_samples" validate:"gte=2,lte=10000"`
}

// PDFConfig — ограничения для загрузки PDF
type PDFConfig struct {
	MaxUploadMB int64 `yaml:"max_upload_mb" validate:"gte=1"`
	MaxFiles    int   `yaml:"max_files" validate:"gte=2"`
}

// LogConfig — логирование
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Duration — time.Duration, записанная в YAML строкой ("30s", "1m")
type Duration struct {
	time.Duration
}

// UnmarshalYAML разбирает строку длительности
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalYAML печатает длительность строкой
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default возвращает конфигурацию по умолчанию
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load читает YAML-файл (если path не пуст), заполняет пропуски значениями
// по умолчанию, применяет переменные окружения и проверяет результат.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("чтение конфигурации: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("разбор конфигурации %s: %w", path, err)
		}
	}
	c.applyDefaults()
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

var validate = validator.New()

// Validate проверяет значения по тегам validate
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("конфигурация: поле %s не прошло проверку %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("конфигурация: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = 10
	}

	if c.Solver.MaxIter == 0 {
		c.Solver.MaxIter = 200
	}
	if c.Solver.DefaultTolerance == 0 {
		c.Solver.DefaultTolerance = 1e-3
	}
	if c.Solver.MaxScanSpan == 0 {
		c.Solver.MaxScanSpan = 1000
	}
	if c.Solver.PlotSamples == 0 {
		c.Solver.PlotSamples = 400
	}

	if c.PDF.MaxUploadMB == 0 {
		c.PDF.MaxUploadMB = 32
	}
	if c.PDF.MaxFiles == 0 {
		c.PDF.MaxFiles = 20
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ROOTFINDER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ROOTFINDER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ROOTFINDER_MAX_ITER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROOTFINDER_MAX_ITER: %w", err)
		}
		c.Solver.MaxIter = n
	}
	return nil
}
