package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"rootfinder/internal/optimizer"
	"rootfinder/internal/pdfutil"
	"rootfinder/internal/pdfutil/pdftest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHelp_ListsFunctions(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Функции: abs, acos,")
	assert.Contains(t, out, "sqrt")
}

func TestScan_HugeRange(t *testing.T) {
	_, err := run(t, "scan", "-f", "x - 3", "--xl", "0", "--xu", "1e19")
	assert.ErrorIs(t, err, optimizer.ErrScanSpan)
}

func TestBisection_Table(t *testing.T) {
	out, err := run(t, "bisection", "-f", "x**3 - x - 2", "--xl", "1", "--xu", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "err%")
	assert.Contains(t, out, optimizer.Converged.Message())
	assert.Contains(t, out, "x ≈ 1.5213")
}

func TestBisection_Scan(t *testing.T) {
	out, err := run(t, "bisection", "-f", "x**2 - 5", "--xl", "-10", "--xu", "10", "--scan")
	require.NoError(t, err)
	assert.Contains(t, out, "# отрезок [-10, -2]")
	assert.Contains(t, out, "x ≈ -2.236")
}

func TestBisection_ScanNothing(t *testing.T) {
	_, err := run(t, "bisection", "-f", "x**2 + 1", "--xl", "-3", "--xu", "3", "--scan")
	assert.ErrorContains(t, err, "не найдено подходящих границ")
}

func TestFalsePosition_NoSignChange(t *testing.T) {
	out, err := run(t, "false-position", "-f", "x**2 + 1", "--xl", "-1", "--xu", "1")
	require.NoError(t, err)
	assert.Contains(t, out, optimizer.NoSignChange.Message())
	assert.NotContains(t, out, "x ≈")
}

func TestNewton_JSON(t *testing.T) {
	out, err := run(t, "newton", "-f", "x**2 - 2", "--x0", "1", "-o", "json")
	require.NoError(t, err)

	var res optimizer.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, optimizer.MethodNewton, res.Method)
	assert.Equal(t, optimizer.Converged, res.Outcome)
	assert.InDelta(t, 1.41421356, res.Root, 1e-6)
	require.NotEmpty(t, res.Iters)
	assert.Nil(t, res.Iters[0].Err)
}

func TestNewton_ShowsDerivedFunction(t *testing.T) {
	out, err := run(t, "newton", "-f", "x**2 - 2", "--x0", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "# f'(x) = (2 * x)")
}

func TestSecant_YAML(t *testing.T) {
	out, err := run(t, "secant", "-f", "cos(x) - x", "--x0", "0", "--x1", "1", "-o", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "secant", doc["method"])
	assert.Equal(t, "converged", doc["outcome"])
	assert.InDelta(t, 0.7390851, doc["root"], 1e-6)
}

func TestSecant_CSV(t *testing.T) {
	out, err := run(t, "secant", "-f", "cos(x) - x", "--x0", "0", "--x1", "1", "-o", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, strings.Join(optimizer.CSVHeader, ","), lines[0])
	assert.Greater(t, len(lines), 2)
}

func TestSolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing func", []string{"newton", "--x0", "1"}, "func"},
		{"bad expression", []string{"secant", "-f", "(x", "--x0", "0", "--x1", "1"}, "ошибка в выражении функции"},
		{"bad format", []string{"newton", "-f", "x", "--x0", "1", "-o", "xml"}, "неизвестный формат"},
		{"unknown derivative", []string{"newton", "-f", "foo(x)", "--x0", "1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScan(t *testing.T) {
	out, err := run(t, "scan", "-f", "x**3 - x - 2", "--xl", "0", "--xu", "3", "-o", "json")
	require.NoError(t, err)

	var bs []optimizer.Bracket
	require.NoError(t, json.Unmarshal([]byte(out), &bs))
	require.NotEmpty(t, bs)
	for _, b := range bs {
		assert.Less(t, b.FLower*b.FUpper, 0.0)
	}
}

func TestScan_Table(t *testing.T) {
	out, err := run(t, "scan", "-f", "x**2 + 1", "--xl", "-3", "--xu", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Не найдено подходящих границ")
}

func TestPDFMergeAndExtract(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	require.NoError(t, os.WriteFile(a, pdftest.Blank(2), 0o644))
	require.NoError(t, os.WriteFile(b, pdftest.Blank(3), 0o644))

	merged := filepath.Join(dir, "merged.pdf")
	out, err := run(t, "pdf", "merge", "-o", merged, a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "2 файлов объединено")
	assert.Equal(t, 5, pageCount(t, merged))

	part := filepath.Join(dir, "part.pdf")
	out, err = run(t, "pdf", "extract", "-p", "4-,1", "-o", part, merged)
	require.NoError(t, err)
	assert.Contains(t, out, "[1 4 5]")
	assert.Equal(t, 3, pageCount(t, part))
}

func TestPDFMerge_NeedsTwoFiles(t *testing.T) {
	_, err := run(t, "pdf", "merge", "only.pdf")
	assert.Error(t, err)
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	n, err := pdfutil.PageCount(bytes.NewReader(b))
	require.NoError(t, err)
	return n
}
