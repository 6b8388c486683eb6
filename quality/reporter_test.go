package quality

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorAndTee(t *testing.T) {
	var c Collector
	calls := 0
	r := Tee(&c, nil, ReporterFunc(func(_, _ []int64, _ time.Duration) { calls++ }))

	_, ok := c.Last()
	require.False(t, ok)

	r.Report([]int64{1, 2, 3}, []int64{1, 2, 4}, time.Second)
	r.Report([]int64{5, 5, 5}, []int64{5, 5, 5}, 2*time.Second)

	require.Equal(t, 2, calls)
	reports := c.Reports()
	require.Len(t, reports, 2)
	require.Greater(t, reports[0].PRD, 0.0)
	last, ok := c.Last()
	require.True(t, ok)
	require.Equal(t, 2*time.Second, last.Elapsed)
	require.Zero(t, last.PRD)
}

func TestPromReporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPromMetrics(reg)
	thr := m.Reporter("threshold")
	mir := m.Reporter("mirror")

	orig := []int64{100, 102, 98, 101}
	wm := []int64{100, 104, 98, 101}
	thr.Report(orig, wm, 3*time.Millisecond)
	thr.Report(orig, wm, 3*time.Millisecond)
	mir.Report(orig, orig, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.embeds.WithLabelValues("threshold")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.embeds.WithLabelValues("mirror")))
	require.InDelta(t, PRD(orig, wm), testutil.ToFloat64(m.prd.WithLabelValues("threshold")), 1e-9)
	// infinite SNR of an untouched signal leaves the gauge at zero
	require.Zero(t, testutil.ToFloat64(m.snr.WithLabelValues("mirror")))
	require.Equal(t, float64(PerfectPSNR), testutil.ToFloat64(m.psnr.WithLabelValues("mirror")))

	n, err := testutil.GatherAndCount(reg, "pee_embed_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
