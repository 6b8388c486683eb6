package pee

import (
	"time"

	"github.com/Observe-l/rdh-pee/quality"
)

// Embedding is the outcome of a threshold-scheme embed.
type Embedding struct {
	Watermarked []int64
	// Embedded is the number of secret bits consumed.
	Embedded int
	// Unhidden is the number of secret bits that did not fit.
	Unhidden int
	// Errors holds every prediction error computed by the main pass, in
	// traversal order. The mirror engine stores magnitudes.
	Errors  []int64
	Elapsed time.Duration
}

func unhidden(secretLen, consumed int) int {
	if consumed >= secretLen {
		return 0
	}
	return secretLen - consumed
}

func report(r quality.Reporter, original, watermarked []int64, elapsed time.Duration) {
	if r != nil {
		r.Report(original, watermarked, elapsed)
	}
}

func clone(s []int64) []int64 {
	out := make([]int64, len(s))
	copy(out, s)
	return out
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
