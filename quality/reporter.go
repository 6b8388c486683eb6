package quality

import (
	"sync"
	"time"
)

// Reporter observes an embed once it completes. It never influences the
// watermarked output.
type Reporter interface {
	Report(original, watermarked []int64, elapsed time.Duration)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(original, watermarked []int64, elapsed time.Duration)

func (f ReporterFunc) Report(original, watermarked []int64, elapsed time.Duration) {
	f(original, watermarked, elapsed)
}

// Collector computes a Report for every embed and keeps them in order.
type Collector struct {
	mu      sync.Mutex
	reports []Report
}

func (c *Collector) Report(original, watermarked []int64, elapsed time.Duration) {
	r := Compute(original, watermarked, elapsed)
	c.mu.Lock()
	c.reports = append(c.reports, r)
	c.mu.Unlock()
}

// Reports returns a copy of every collected report.
func (c *Collector) Reports() []Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Report(nil), c.reports...)
}

// Last returns the most recent report.
func (c *Collector) Last() (Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.reports) == 0 {
		return Report{}, false
	}
	return c.reports[len(c.reports)-1], true
}

type tee []Reporter

func (t tee) Report(original, watermarked []int64, elapsed time.Duration) {
	for _, r := range t {
		r.Report(original, watermarked, elapsed)
	}
}

// Tee fans every report out to rs, skipping nil entries.
func Tee(rs ...Reporter) Reporter {
	out := make(tee, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
