package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 30*time.Second, c.Server.ReadTimeout.Duration)
	assert.Zero(t, c.Server.WriteTimeout.Duration)
	assert.Equal(t, 200, c.Solver.MaxIter)
	assert.Equal(t, 1000, c.Solver.MaxScanSpan)
	assert.NoError(t, c.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
  read_timeout: 5s
  rate_limit: 2.5
  trusted_proxies: ["10.0.0.0/8", "127.0.0.1"]
solver:
  max_iter: 50
  default_tolerance: 0.5
log:
  format: json
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", c.Server.Addr)
	assert.Equal(t, 5*time.Second, c.Server.ReadTimeout.Duration)
	assert.Equal(t, 2.5, c.Server.RateLimit)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, c.Server.TrustedProxies)
	assert.Equal(t, 50, c.Solver.MaxIter)
	assert.Equal(t, 0.5, c.Solver.DefaultTolerance)
	assert.Equal(t, "json", c.Log.Format)
	// не указанное — по умолчанию
	assert.Equal(t, 400, c.Solver.PlotSamples)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ROOTFINDER_ADDR", ":7070")
	t.Setenv("ROOTFINDER_MAX_ITER", "77")
	t.Setenv("ROOTFINDER_LOG_LEVEL", "debug")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.Server.Addr)
	assert.Equal(t, 77, c.Solver.MaxIter)
	assert.Equal(t, "debug", c.Log.Level)

	t.Setenv("ROOTFINDER_MAX_ITER", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad duration", "server:\n  read_timeout: soon\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"negative tolerance", "solver:\n  default_tolerance: -1\n"},
		{"too many iterations", "solver:\n  max_iter: 1000000\n"},
		{"not yaml", "server: [\n"},
		{"bad proxy", "server:\n  trusted_proxies: [\"proxy.local\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDuration_RoundTrip(t *testing.T) {
	out, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{Duration{90 * time.Second}})
	require.NoError(t, err)
	assert.Equal(t, "d: 1m30s\n", string(out))
}
