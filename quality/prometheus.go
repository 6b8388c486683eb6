package quality

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromReporter exports embed distortion and timing as Prometheus metrics,
// labelled by scheme.
type PromReporter struct {
	scheme string
	m      *PromMetrics
}

// PromMetrics is the shared set of collectors behind every PromReporter
// registered on the same registry.
type PromMetrics struct {
	embeds   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	prd      *prometheus.GaugeVec
	ncc      *prometheus.GaugeVec
	snr      *prometheus.GaugeVec
	psnr     *prometheus.GaugeVec
}

// NewPromMetrics registers the collectors on reg.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	f := promauto.With(reg)
	labels := []string{"scheme"}
	return &PromMetrics{
		embeds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pee", Name: "embeds_total",
			Help: "Completed embed operations.",
		}, labels),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pee", Name: "embed_duration_seconds",
			Help:    "Wall time of embed operations.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, labels),
		prd: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pee", Name: "last_prd_percent",
			Help: "Percentage residual difference of the last embed.",
		}, labels),
		ncc: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pee", Name: "last_ncc",
			Help: "Normalized cross-correlation of the last embed.",
		}, labels),
		snr: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pee", Name: "last_snr_db",
			Help: "Signal-to-noise ratio of the last embed.",
		}, labels),
		psnr: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pee", Name: "last_psnr_db",
			Help: "Peak signal-to-noise ratio of the last embed.",
		}, labels),
	}
}

// Reporter returns a Reporter publishing under the given scheme label.
func (m *PromMetrics) Reporter(scheme string) *PromReporter {
	return &PromReporter{scheme: scheme, m: m}
}

func (p *PromReporter) Report(original, watermarked []int64, elapsed time.Duration) {
	r := Compute(original, watermarked, elapsed)
	p.m.embeds.WithLabelValues(p.scheme).Inc()
	p.m.duration.WithLabelValues(p.scheme).Observe(elapsed.Seconds())
	setFinite(p.m.prd.WithLabelValues(p.scheme), r.PRD)
	setFinite(p.m.ncc.WithLabelValues(p.scheme), r.NCC)
	setFinite(p.m.snr.WithLabelValues(p.scheme), r.SNR)
	setFinite(p.m.psnr.WithLabelValues(p.scheme), r.PSNR)
}

// setFinite skips NaN and infinities, which arise for flat or untouched signals.
func setFinite(g prometheus.Gauge, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	g.Set(v)
}
