package pee

import (
	"fmt"
	"strings"
)

// NumPhases is the number of interleaved phases a signal is split into.
const NumPhases = 3

// Phase is one of the three stride-3 position sets, numbered 1..3.
type Phase int

// Indexes returns phase-1, phase-1+3, ... below n in ascending order.
func (p Phase) Indexes(n int) []int {
	if p < 1 || p > NumPhases || n <= int(p)-1 {
		return nil
	}
	out := make([]int, 0, (n-int(p)+1+NumPhases-1)/NumPhases)
	for i := int(p) - 1; i < n; i += NumPhases {
		out = append(out, i)
	}
	return out
}

// Reversed returns the same indexes as Indexes in descending order.
func (p Phase) Reversed(n int) []int {
	idx := p.Indexes(n)
	for l, r := 0, len(idx)-1; l < r; l, r = l+1, r-1 {
		idx[l], idx[r] = idx[r], idx[l]
	}
	return idx
}

// Key is a 3-bit phase-enable mask: bit p-1 enables phase p.
type Key uint8

// AllPhases enables every phase.
const AllPhases Key = 1<<NumPhases - 1

// ParseKey parses the textual form "101", where character p-1 enables phase p.
func ParseKey(s string) (Key, error) {
	if len(s) != NumPhases {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	var k Key
	for i := 0; i < NumPhases; i++ {
		switch s[i] {
		case '1':
			k |= 1 << i
		case '0':
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidKey, s)
		}
	}
	return k, nil
}

// MustParseKey is like ParseKey but panics on error.
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Enabled reports whether phase p is enabled.
func (k Key) Enabled(p Phase) bool {
	return p >= 1 && p <= NumPhases && k&(1<<(p-1)) != 0
}

// Complement returns the key enabling exactly the phases k disables.
func (k Key) Complement() Key { return ^k & AllPhases }

// First returns the lowest enabled phase, or 0 if none is enabled.
func (k Key) First() Phase {
	for p := Phase(1); p <= NumPhases; p++ {
		if k.Enabled(p) {
			return p
		}
	}
	return 0
}

func (k Key) String() string {
	var b strings.Builder
	for p := Phase(1); p <= NumPhases; p++ {
		if k.Enabled(p) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// usable reports whether i anchors a full context window: i, i+1, i+3, i+4 < n.
func usable(i, n int) bool { return i+4 < n }

// forward calls fn for every usable anchor of the enabled phases in embedding
// order: phases ascending, indexes ascending. It stops when fn returns false.
func forward(n int, k Key, fn func(p Phase, i int) bool) {
	for p := Phase(1); p <= NumPhases; p++ {
		if !k.Enabled(p) {
			continue
		}
		for _, i := range p.Indexes(n) {
			if !usable(i, n) {
				break
			}
			if !fn(p, i) {
				return
			}
		}
	}
}

// backward is the exact mirror of forward: phases descending, indexes
// descending, boundary anchors skipped.
func backward(n int, k Key, fn func(p Phase, i int) bool) {
	for p := Phase(NumPhases); p >= 1; p-- {
		if !k.Enabled(p) {
			continue
		}
		for _, i := range p.Reversed(n) {
			if !usable(i, n) {
				continue
			}
			if !fn(p, i) {
				return
			}
		}
	}
}
