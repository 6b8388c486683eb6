package pee

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/Observe-l/rdh-pee/quality"
)

// DefaultCapacityKey enables phase 1 for the secret and leaves phase 2 for
// the capacity header.
const DefaultCapacityKey Key = 0b001

// HeaderWidth is the width ceil(log2(n)) of the capacity header for a signal of n samples.
func HeaderWidth(n int) int {
	if n < 2 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// CapacityEmbedding is the outcome of CapacityEngine.Embed.
type CapacityEmbedding struct {
	Embedding
	// LastIndex is the anchor of the final sample written by the main pass,
	// or -1 when the secret was empty.
	LastIndex int
	// Header is the fixed-width field hidden in the header phase.
	Header Bits
}

// CapacityEngine is a ThresholdEngine that hides where its main pass stopped
// inside the lowest disabled phase, so extraction needs only the threshold and
// the key.
type CapacityEngine struct {
	x      expander
	key    Key
	header Phase
	rep    quality.Reporter
}

// NewCapacityEngine validates opts and builds an engine. The key must leave at
// least one phase disabled; the default key is DefaultCapacityKey.
func NewCapacityEngine(opts ThresholdOptions) (*CapacityEngine, error) {
	opts.setDefaults(DefaultCapacityKey)
	if err := opts.validate(); err != nil {
		return nil, err
	}
	hp := opts.Key.Complement().First()
	if hp == 0 {
		return nil, ErrNoHeaderPhase
	}
	return &CapacityEngine{
		x:      expander{pr: opts.Predictor, t: opts.Threshold},
		key:    opts.Key,
		header: hp,
		rep:    opts.Reporter,
	}, nil
}

// HeaderPhase is the phase that carries the capacity header.
func (c *CapacityEngine) HeaderPhase() Phase { return c.header }

func (c *CapacityEngine) headerKey() Key { return 1 << (c.header - 1) }

// noIndex is the header value stored when the main pass wrote nothing. It
// never collides with a real anchor, which is at most n-5.
func noIndex(width int) int64 { return int64(1)<<uint(width) - 1 }

// Embed hides secret in the enabled phases, stopping as soon as it is
// exhausted, then hides the main pass's final anchor in the header phase.
func (c *CapacityEngine) Embed(signal []int64, secret Bits) (*CapacityEmbedding, error) {
	start := time.Now()
	out := clone(signal)
	n := len(out)
	var errs []int64
	consumed, last := 0, -1
	forward(n, c.key, func(_ Phase, i int) bool {
		if consumed >= len(secret) {
			return false
		}
		pe, hidden := c.x.embedAt(out, i, secret.at(consumed))
		errs = append(errs, pe)
		if hidden {
			consumed++
		}
		last = i
		return true
	})

	width := HeaderWidth(n)
	value := noIndex(width)
	if last >= 0 {
		value = int64(last)
	}
	hdr := appendUint(nil, value, width)
	written := 0
	forward(n, c.headerKey(), func(_ Phase, i int) bool {
		if written >= width {
			return false
		}
		if _, hidden := c.x.embedAt(out, i, hdr[written]); hidden {
			written++
		}
		return true
	})
	if written < width {
		return nil, fmt.Errorf("%w: phase %d held %d of %d bits", ErrHeaderCapacity, c.header, written, width)
	}

	elapsed := time.Since(start)
	report(c.rep, signal, out, elapsed)
	return &CapacityEmbedding{
		Embedding: Embedding{
			Watermarked: out,
			Embedded:    consumed,
			Unhidden:    unhidden(len(secret), consumed),
			Errors:      errs,
			Elapsed:     elapsed,
		},
		LastIndex: last,
		Header:    hdr,
	}, nil
}

// DecodeHeader reads the capacity header from a watermarked signal without
// touching the main phases. It returns the recorded anchor, or -1 when the
// embedder wrote nothing.
func (c *CapacityEngine) DecodeHeader(watermarked []int64) (int, error) {
	_, last, err := c.restoreHeader(clone(watermarked))
	return last, err
}

// restoreHeader undoes the header pass in place and returns the header bits
// and the anchor they encode.
func (c *CapacityEngine) restoreHeader(s []int64) (Bits, int, error) {
	n := len(s)
	width := HeaderWidth(n)
	hdr := make(Bits, 0, width)
	forward(n, c.headerKey(), func(_ Phase, i int) bool {
		if len(hdr) >= width {
			return false
		}
		if bit, ok := c.x.extractAt(s, i); ok {
			hdr = append(hdr, bit)
		}
		return true
	})
	if len(hdr) < width {
		return hdr, 0, fmt.Errorf("%w: found %d of %d bits", ErrInvalidHeader, len(hdr), width)
	}
	v := hdr.uint(0, width)
	if v == noIndex(width) {
		return hdr, -1, nil
	}
	last := int(v)
	if !usable(last, n) || !c.key.Enabled(Phase(last%NumPhases+1)) {
		return hdr, 0, fmt.Errorf("%w: anchor %d", ErrInvalidHeader, last)
	}
	return hdr, last, nil
}

// Extract restores the original signal and returns exactly the bits the
// embedder consumed.
func (c *CapacityEngine) Extract(watermarked []int64) ([]int64, Bits, error) {
	out := clone(watermarked)
	_, last, err := c.restoreHeader(out)
	if err != nil {
		return nil, nil, err
	}
	if last < 0 {
		return out, Bits{}, nil
	}
	var rev Bits
	active := false
	backward(len(out), c.key, func(_ Phase, i int) bool {
		if !active {
			if i != last {
				return true
			}
			active = true
		}
		if bit, ok := c.x.extractAt(out, i); ok {
			rev = append(rev, bit)
		}
		return true
	})
	return out, reverseBits(rev), nil
}
