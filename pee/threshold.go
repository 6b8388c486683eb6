package pee

import (
	"fmt"
	"time"

	"github.com/Observe-l/rdh-pee/quality"
)

// DefaultThreshold is the expansion threshold used when none is configured.
const DefaultThreshold = 4

// ThresholdOptions configures ThresholdEngine and CapacityEngine.
type ThresholdOptions struct {
	// Threshold bounds the prediction errors that are expanded (|e| < Threshold).
	Threshold int64
	// Key selects the phases carrying the secret. Zero selects the engine default.
	Key       Key
	Predictor Predictor
	// Reporter, if set, is called once after every embed.
	Reporter quality.Reporter
}

func (o *ThresholdOptions) setDefaults(key Key) {
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Key == 0 {
		o.Key = key
	}
	if o.Predictor == nil {
		o.Predictor = MeanPredictor{}
	}
}

func (o *ThresholdOptions) validate() error {
	if o.Threshold < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, o.Threshold)
	}
	if o.Key&^AllPhases != 0 {
		return fmt.Errorf("%w: %#x", ErrInvalidKey, uint8(o.Key))
	}
	return nil
}

// expander is the single-sample threshold expansion rule shared by the
// threshold and capacity engines.
type expander struct {
	pr Predictor
	t  int64
}

// embedAt rewrites sample i+2. It returns the prediction error and whether
// bit was hidden; shifted samples carry no bit.
func (x expander) embedAt(s []int64, i int, bit byte) (int64, bool) {
	pred := predictAt(x.pr, s, i)
	e := s[i+2] - pred
	var ex int64
	hidden := false
	switch {
	case abs64(e) < x.t:
		ex = 2*e + int64(bit&1)
		hidden = true
	case e > 0:
		ex = e + x.t
	default:
		// the +1 keeps the negative shift clear of 2e+1 for e = -(t-1)
		ex = e - x.t + 1
	}
	s[i+2] = pred + ex
	return e, hidden
}

// extractAt restores sample i+2 and returns the bit it carried, if any.
func (x expander) extractAt(s []int64, i int) (byte, bool) {
	pred := predictAt(x.pr, s, i)
	w := s[i+2]
	e := w - pred
	switch {
	case e >= 2*x.t:
		s[i+2] = w - x.t
		return 0, false
	case e <= -2*x.t+1:
		s[i+2] = w + x.t - 1
		return 0, false
	}
	// arithmetic shift and mask give floor division and a non-negative
	// remainder for negative e as well
	bit := byte(e & 1)
	s[i+2] = w - e>>1 - int64(bit)
	return bit, true
}

// ThresholdEngine hides one bit in every sample of the enabled phases whose
// prediction error is below the threshold and shifts every other sample.
type ThresholdEngine struct {
	x   expander
	key Key
	rep quality.Reporter
}

// NewThresholdEngine validates opts and builds an engine. The default key
// enables all phases.
func NewThresholdEngine(opts ThresholdOptions) (*ThresholdEngine, error) {
	opts.setDefaults(AllPhases)
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &ThresholdEngine{
		x:   expander{pr: opts.Predictor, t: opts.Threshold},
		key: opts.Key,
		rep: opts.Reporter,
	}, nil
}

// Embed returns a watermarked copy of signal. Every usable sample of the
// enabled phases is rewritten; once secret is exhausted the remaining
// expandable samples carry 0 bits.
func (e *ThresholdEngine) Embed(signal []int64, secret Bits) *Embedding {
	start := time.Now()
	out := clone(signal)
	var errs []int64
	consumed := 0
	forward(len(out), e.key, func(_ Phase, i int) bool {
		pe, hidden := e.x.embedAt(out, i, secret.at(consumed))
		errs = append(errs, pe)
		if hidden {
			consumed++
		}
		return true
	})
	if consumed > len(secret) {
		consumed = len(secret)
	}
	elapsed := time.Since(start)
	report(e.rep, signal, out, elapsed)
	return &Embedding{
		Watermarked: out,
		Embedded:    consumed,
		Unhidden:    unhidden(len(secret), consumed),
		Errors:      errs,
		Elapsed:     elapsed,
	}
}

// Extract restores the original signal and returns every bit carried by an
// expanded sample, including the zero padding written past the secret.
func (e *ThresholdEngine) Extract(watermarked []int64) ([]int64, Bits) {
	out := clone(watermarked)
	var rev Bits
	backward(len(out), e.key, func(_ Phase, i int) bool {
		if bit, ok := e.x.extractAt(out, i); ok {
			rev = append(rev, bit)
		}
		return true
	})
	return out, reverseBits(rev)
}

// Capacity returns how many expandable samples Embed finds when hiding an
// all-zero secret. Payload bits move later predictions by at most one, so a
// real secret can see a slightly different figure.
func (e *ThresholdEngine) Capacity(signal []int64) int {
	work := clone(signal)
	n := 0
	forward(len(work), e.key, func(_ Phase, i int) bool {
		if _, hidden := e.x.embedAt(work, i, 0); hidden {
			n++
		}
		return true
	})
	return n
}

func reverseBits(b Bits) Bits {
	if b == nil {
		return Bits{}
	}
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
	return b
}
