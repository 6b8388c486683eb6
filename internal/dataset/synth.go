package dataset

import (
	"math"
	"math/rand"

	"github.com/Observe-l/rdh-pee/pee"
)

// wave is one Gaussian component of a heartbeat, relative to the beat start.
type wave struct {
	at, width, amp float64 // seconds, seconds, millivolts
}

var beat = []wave{
	{0.16, 0.025, 0.12},  // P
	{0.27, 0.008, -0.10}, // Q
	{0.30, 0.010, 1.10},  // R
	{0.33, 0.010, -0.25}, // S
	{0.55, 0.045, 0.30},  // T
}

// SynthOptions describes a synthetic ECG-like recording.
type SynthOptions struct {
	Samples int
	FS      float64 // sampling frequency, Hz; 0 means 360
	BPM     float64 // 0 means 72
	Noise   float64 // gaussian noise sd in millivolts
	Scale   float64 // 0 means DefaultScale
	Seed    int64
}

// Synthesize generates a deterministic ECG-like integer signal.
func Synthesize(o SynthOptions) []int64 {
	if o.FS == 0 {
		o.FS = 360
	}
	if o.BPM == 0 {
		o.BPM = 72
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	rng := rand.New(rand.NewSource(o.Seed))
	period := 60 / o.BPM
	out := make([]int64, max(o.Samples, 0))
	for i := range out {
		t := math.Mod(float64(i)/o.FS, period)
		v := -0.05 * math.Sin(2*math.Pi*0.3*float64(i)/o.FS) // baseline wander
		for _, w := range beat {
			d := (t - w.at) / w.width
			v += w.amp * math.Exp(-0.5*d*d)
		}
		v += o.Noise * rng.NormFloat64()
		out[i] = int64(v * o.Scale)
	}
	return out
}

// RandomSecret returns n pseudo-random bits.
func RandomSecret(n int, seed int64) pee.Bits {
	rng := rand.New(rand.NewSource(seed))
	b := make(pee.Bits, n)
	for i := range b {
		b[i] = byte(rng.Intn(2))
	}
	return b
}
