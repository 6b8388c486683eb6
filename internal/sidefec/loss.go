package sidefec

import "math/rand"

// Bernoulli drops each frame independently with probability p.
type Bernoulli struct {
	p   float64
	rng *rand.Rand
}

func NewBernoulli(p float64, rng *rand.Rand) *Bernoulli { return &Bernoulli{p: p, rng: rng} }

func (b *Bernoulli) Drop() bool {
	if b.p <= 0 {
		return false
	}
	if b.p >= 1 {
		return true
	}
	return b.rng.Float64() < b.p
}

// Filter returns the frames that survive the channel.
func (b *Bernoulli) Filter(frames [][]byte) [][]byte {
	out := make([][]byte, 0, len(frames))
	for _, f := range frames {
		if !b.Drop() {
			out = append(out, f)
		}
	}
	return out
}
