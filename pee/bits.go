package pee

import (
	"fmt"
	"strings"
)

// Bits is a secret bitstream, one 0/1 value per element, consumed left to right.
type Bits []byte

// ParseBits parses a string such as "1011".
func ParseBits(s string) (Bits, error) {
	b := make(Bits, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			b[i] = 1
		default:
			return nil, fmt.Errorf("%w at %d: %q", ErrInvalidBits, i, s[i])
		}
	}
	return b, nil
}

// MustParseBits is like ParseBits but panics on error.
func MustParseBits(s string) Bits {
	b, err := ParseBits(s)
	if err != nil {
		panic(err)
	}
	return b
}

func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, v := range b {
		sb.WriteByte('0' + v&1)
	}
	return sb.String()
}

// BitsFromBytes expands data MSB first.
func BitsFromBytes(data []byte) Bits {
	out := make(Bits, 0, len(data)*8)
	for _, c := range data {
		for s := 7; s >= 0; s-- {
			out = append(out, (c>>uint(s))&1)
		}
	}
	return out
}

// Bytes packs b MSB first. A trailing partial byte is zero-padded.
func (b Bits) Bytes() []byte {
	out := make([]byte, (len(b)+7)/8)
	for i, v := range b {
		if v&1 != 0 {
			out[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return out
}

// at returns bit i, or 0 once the stream is exhausted.
func (b Bits) at(i int) byte {
	if i < 0 || i >= len(b) {
		return 0
	}
	return b[i] & 1
}

// uint reads n bits starting at from as an unsigned MSB-first integer.
// Missing bits read as 0.
func (b Bits) uint(from, n int) int64 {
	var v int64
	for k := 0; k < n; k++ {
		v = v<<1 | int64(b.at(from+k))
	}
	return v
}

// appendUint appends v as a width-bit MSB-first field.
func appendUint(b Bits, v int64, width int) Bits {
	for s := width - 1; s >= 0; s-- {
		b = append(b, byte(v>>uint(s))&1)
	}
	return b
}

// FirstDifference returns the first index at which a and b differ after
// right-padding the shorter one with zeros, or -1 when they match.
func FirstDifference(a, b Bits) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a.at(i) != b.at(i) {
			return i
		}
	}
	return -1
}
