package pee

import (
	"math"
	"math/rand"
)

var scenario = []int64{10, 12, 11, 13, 15, 14, 16, 18, 17, 19, 21, 20}

// randomSignal returns an ECG-like or noisy signal of n samples.
func randomSignal(rng *rand.Rand, n int) []int64 {
	s := make([]int64, n)
	switch rng.Intn(3) {
	case 0:
		base := rng.Int63n(2000) - 1000
		amp := []float64{2, 5, 20, 200, 3000}[rng.Intn(5)]
		for i := range s {
			s[i] = base + int64(rng.NormFloat64()*amp)
		}
	case 1:
		period := 5 + rng.Float64()*40
		for i := range s {
			s[i] = int64(500*math.Sin(float64(i)/period) + rng.NormFloat64()*3)
		}
	default:
		// sparse spikes over a flat baseline
		for i := range s {
			if rng.Intn(40) == 0 {
				s[i] = 1200 + rng.Int63n(300)
			} else {
				s[i] = rng.Int63n(4)
			}
		}
	}
	return s
}

func randomBits(rng *rand.Rand, n int) Bits {
	b := make(Bits, n)
	for i := range b {
		b[i] = byte(rng.Intn(2))
	}
	return b
}

// repeated returns k back-to-back copies of s.
func repeated(s []int64, k int) []int64 {
	out := make([]int64, 0, len(s)*k)
	for j := 0; j < k; j++ {
		out = append(out, s...)
	}
	return out
}

func untouchedEnds(orig, wm []int64) bool {
	n := len(orig)
	if n < 4 {
		return true
	}
	return orig[0] == wm[0] && orig[1] == wm[1] && orig[n-2] == wm[n-2] && orig[n-1] == wm[n-1]
}
