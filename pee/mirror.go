package pee

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/Observe-l/rdh-pee/quality"
)

// maxMirrorWidth bounds payloadRate+threshold so 2^width fits a sample.
const maxMirrorWidth = 62

// MirrorOptions configures MirrorEngine.
type MirrorOptions struct {
	// PayloadRate is the base number of bits per sample.
	PayloadRate int
	// Threshold is the extra bit width allowed on top of PayloadRate.
	Threshold int
	Predictor Predictor
	// Reporter, if set, is called once after every embed.
	Reporter quality.Reporter
}

func (o *MirrorOptions) setDefaults() {
	if o.PayloadRate == 0 {
		o.PayloadRate = 1
	}
	if o.Predictor == nil {
		o.Predictor = MeanPredictor{}
	}
}

// ResumeHeader identifies the final sample written by MirrorEngine.Embed.
// A zero Phase means nothing was embedded.
type ResumeHeader struct {
	Phase    Phase
	Index    int
	BitWidth int
}

// DiffLog records watermarked-minus-original for every embedded sample in
// embedding order. Extraction consumes it from the tail.
type DiffLog []int64

// Push appends d.
func (l *DiffLog) Push(d int64) { *l = append(*l, d) }

// Peek returns the tail entry.
func (l DiffLog) Peek() (int64, bool) {
	if len(l) == 0 {
		return 0, false
	}
	return l[len(l)-1], true
}

// Pop removes and returns the tail entry.
func (l *DiffLog) Pop() (int64, bool) {
	d, ok := l.Peek()
	if ok {
		*l = (*l)[:len(*l)-1]
	}
	return d, ok
}

// MirrorEmbedding is the outcome of MirrorEngine.Embed. Log and Header must
// travel with the watermarked signal.
type MirrorEmbedding struct {
	Embedding
	Log    DiffLog
	Header ResumeHeader
	// Skipped counts visited samples whose error magnitude was at most 1.
	Skipped int
}

// MirrorEngine hides a variable number of bits per sample by moving it to a
// mirrored offset around its own value.
type MirrorEngine struct {
	pr    Predictor
	width int64
	rep   quality.Reporter
}

// NewMirrorEngine validates opts and builds an engine.
func NewMirrorEngine(opts MirrorOptions) (*MirrorEngine, error) {
	opts.setDefaults()
	if opts.PayloadRate < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPayloadRate, opts.PayloadRate)
	}
	if opts.Threshold < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, opts.Threshold)
	}
	if opts.PayloadRate+opts.Threshold > maxMirrorWidth {
		return nil, fmt.Errorf("%w: %d+%d exceeds %d bits", ErrInvalidPayloadRate, opts.PayloadRate, opts.Threshold, maxMirrorWidth)
	}
	return &MirrorEngine{
		pr:    opts.Predictor,
		width: int64(opts.PayloadRate + opts.Threshold),
		rep:   opts.Reporter,
	}, nil
}

// floorLog2 returns floor(log2(v)) for v >= 1.
func floorLog2(v int64) int64 { return int64(bits.Len64(uint64(v))) - 1 }

// lobe describes the mirror geometry for an error magnitude and bit width.
type lobe struct {
	limit int64 // 2^width
	half  int64 // limit/2 - 1
	odd   bool  // offsets run forward in odd lobes and backward in even ones
}

func lobeOf(err, width int64) lobe {
	limit := int64(1) << uint(width)
	half := limit/2 - 1
	count := (err-half)/limit + 1
	return lobe{limit: limit, half: half, odd: count%2 != 0}
}

// offset maps a payload value to its distance from the anchor and back; the
// map is its own inverse.
func (l lobe) offset(v int64) int64 {
	if l.odd {
		return v
	}
	return (l.limit - v) % l.limit
}

// Embed returns a watermarked copy of signal. It stops at the first sample
// after the secret is exhausted.
func (m *MirrorEngine) Embed(signal []int64, secret Bits) *MirrorEmbedding {
	start := time.Now()
	out := clone(signal)
	res := &MirrorEmbedding{}
	consumed := 0
	forward(len(out), AllPhases, func(p Phase, i int) bool {
		remain := int64(len(secret) - consumed)
		if remain <= 0 {
			return false
		}
		o := out[i+2]
		pred := predictAt(m.pr, out, i)
		err := abs64(o - pred)
		res.Errors = append(res.Errors, err)
		if err <= 1 {
			res.Skipped++
			return true
		}
		width := min(floorLog2(err), remain, m.width)
		l := lobeOf(err, width)
		off := l.offset(secret.uint(consumed, int(width)))
		var w int64
		if pred <= o {
			w = o - l.half + off
		} else {
			w = o + l.half - off
		}
		res.Log.Push(w - o)
		out[i+2] = w
		consumed += int(width)
		res.Header = ResumeHeader{Phase: p, Index: i, BitWidth: int(width)}
		return true
	})
	res.Watermarked = out
	res.Embedded = consumed
	res.Unhidden = unhidden(len(secret), consumed)
	res.Elapsed = time.Since(start)
	report(m.rep, signal, out, res.Elapsed)
	return res
}

func (m *MirrorEngine) checkHeader(h ResumeHeader, n int) error {
	if h.Phase < 1 || h.Phase > NumPhases || h.Index < 0 || h.Index%NumPhases != int(h.Phase)-1 || !usable(h.Index, n) {
		return fmt.Errorf("%w: resume point phase %d index %d", ErrInvalidSideInfo, h.Phase, h.Index)
	}
	if h.BitWidth < 1 || int64(h.BitWidth) > m.width {
		return fmt.Errorf("%w: bit width %d", ErrInvalidSideInfo, h.BitWidth)
	}
	return nil
}

type chunk struct {
	v     int64
	width int64
}

// Extract restores the original signal from a watermarked one, its difference
// log and resume header, and returns the hidden bits. log is not modified.
func (m *MirrorEngine) Extract(watermarked []int64, log DiffLog, h ResumeHeader) ([]int64, Bits, error) {
	out := clone(watermarked)
	if h.Phase == 0 {
		if len(log) != 0 {
			return nil, nil, fmt.Errorf("%w: %d log entries without a resume point", ErrInvalidSideInfo, len(log))
		}
		return out, Bits{}, nil
	}
	if err := m.checkHeader(h, len(out)); err != nil {
		return nil, nil, err
	}
	stack := append(DiffLog(nil), log...)
	var chunks []chunk
	var failure error
	active, first := false, true
	backward(len(out), AllPhases, func(p Phase, i int) bool {
		if !active {
			if p != h.Phase || i != h.Index {
				return true
			}
			active = true
		}
		md, ok := stack.Peek()
		if !ok {
			return true
		}
		w := out[i+2]
		pred := predictAt(m.pr, out, i)
		dist := abs64(w - pred)
		if dist <= 1 {
			return true
		}
		o := w - md
		err := dist + md
		if pred <= w {
			err = dist - md
		}
		if err < 2 {
			failure = fmt.Errorf("%w: error %d at anchor %d", ErrInvalidSideInfo, err, i)
			return false
		}
		width := int64(h.BitWidth)
		if !first {
			width = min(floorLog2(err), m.width)
		}
		first = false
		l := lobeOf(err, width)
		anchor := o + l.half
		if pred <= w {
			anchor = o - l.half
		}
		v := l.offset(abs64(w - anchor))
		if v < 0 || v >= l.limit {
			failure = fmt.Errorf("%w: offset %d outside %d-bit lobe at anchor %d", ErrInvalidSideInfo, v, width, i)
			return false
		}
		chunks = append(chunks, chunk{v: v, width: width})
		out[i+2] = o
		stack.Pop()
		return true
	})
	if failure != nil {
		return nil, nil, failure
	}
	if len(stack) != 0 {
		return nil, nil, fmt.Errorf("%w: %d log entries left over", ErrInvalidSideInfo, len(stack))
	}
	secret := Bits{}
	for k := len(chunks) - 1; k >= 0; k-- {
		secret = appendUint(secret, chunks[k].v, int(chunks[k].width))
	}
	return out, secret, nil
}
