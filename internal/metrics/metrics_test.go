package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSolve(t *testing.T) {
	c := solvesTotal.WithLabelValues("secant", "converged")
	before := testutil.ToFloat64(c)

	ObserveSolve("secant", "converged", 5, 3*time.Millisecond)
	ObserveSolve("secant", "converged", 7, time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(c))
}

func TestObservePDF(t *testing.T) {
	ok := pdfOps.WithLabelValues("merge", "ok")
	bad := pdfOps.WithLabelValues("merge", "error")
	okBefore, badBefore := testutil.ToFloat64(ok), testutil.ToFloat64(bad)

	ObservePDF("merge", nil)
	ObservePDF("merge", errors.New("broken"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, badBefore+1, testutil.ToFloat64(bad))
}

func TestObserveHTTP(t *testing.T) {
	c := httpRequests.WithLabelValues("/start", "POST", "400")
	before := testutil.ToFloat64(c)
	ObserveHTTP("/start", "POST", 400, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
