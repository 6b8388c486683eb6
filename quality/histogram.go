package quality

import "sort"

// Bucket is one distinct prediction error and how often it occurred.
type Bucket struct {
	Error int64
	Count int
}

// Frequency counts each distinct prediction error, ordered by error value.
func Frequency(errors []int64) []Bucket {
	counts := make(map[int64]int)
	for _, e := range errors {
		counts[e]++
	}
	out := make([]Bucket, 0, len(counts))
	for e, c := range counts {
		out = append(out, Bucket{Error: e, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Error < out[j].Error })
	return out
}

// CountAbove returns how many errors have a magnitude strictly above t.
func CountAbove(errors []int64, t int64) int {
	n := 0
	for _, e := range errors {
		if e > t || e < -t {
			n++
		}
	}
	return n
}

// CountAtMost returns how many errors have a magnitude of at most t.
func CountAtMost(errors []int64, t int64) int {
	return len(errors) - CountAbove(errors, t)
}
