package quality

import (
	"math"
	"time"
)

// Sample is any numeric sample type the measures accept.
type Sample interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// PerfectPSNR is reported when the two signals are identical.
const PerfectPSNR = 100

// Report holds the distortion figures for one embed.
type Report struct {
	PRD     float64
	NCC     float64
	SNR     float64
	PSNR    float64
	Elapsed time.Duration
}

// Compute evaluates every measure for original against reconstructed.
func Compute[T Sample](original, reconstructed []T, elapsed time.Duration) Report {
	return Report{
		PRD:     PRD(original, reconstructed),
		NCC:     NCC(original, reconstructed),
		SNR:     SNR(original, reconstructed),
		PSNR:    PSNR(original, reconstructed),
		Elapsed: elapsed,
	}
}

func pairs[T Sample](a, b []T) int {
	if len(b) < len(a) {
		return len(b)
	}
	return len(a)
}

// PRD returns 100 * ||a-b|| / ||a||.
func PRD[T Sample](a, b []T) float64 {
	var num, den float64
	for i := 0; i < pairs(a, b); i++ {
		d := float64(a[i]) - float64(b[i])
		num += d * d
		den += float64(a[i]) * float64(a[i])
	}
	return math.Sqrt(num) / math.Sqrt(den) * 100
}

func mean[T Sample](s []T, n int) float64 {
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(s[i])
	}
	return sum / float64(n)
}

// NCC returns the normalized cross-correlation of a and b.
func NCC[T Sample](a, b []T) float64 {
	n := pairs(a, b)
	ma, mb := mean(a, n), mean(b, n)
	var num, va, vb float64
	for i := 0; i < n; i++ {
		da := float64(a[i]) - ma
		db := float64(b[i]) - mb
		num += da * db
		va += da * da
		vb += db * db
	}
	return num / math.Sqrt(va*vb)
}

// SNR returns 10*log10(sum(a^2) / sum((a-b)^2)) in decibels. It is +Inf
// for identical signals.
func SNR[T Sample](a, b []T) float64 {
	var sig, noise float64
	for i := 0; i < pairs(a, b); i++ {
		d := float64(a[i]) - float64(b[i])
		sig += float64(a[i]) * float64(a[i])
		noise += d * d
	}
	return 10 * math.Log10(sig/noise)
}

// PSNR returns 10*log10(peak^2 / mse) in decibels, where peak is the largest
// sample of either signal. Identical signals report PerfectPSNR.
func PSNR[T Sample](a, b []T) float64 {
	n := pairs(a, b)
	if n == 0 {
		return PerfectPSNR
	}
	peak := math.Inf(-1)
	var mse float64
	for i := 0; i < n; i++ {
		peak = math.Max(peak, math.Max(float64(a[i]), float64(b[i])))
		d := float64(a[i]) - float64(b[i])
		mse += d * d
	}
	if mse == 0 {
		return PerfectPSNR
	}
	mse /= float64(n)
	return 10 * math.Log10(peak*peak/mse)
}
