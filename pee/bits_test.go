package pee

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBits(t *testing.T) {
	b, err := ParseBits("10110")
	require.NoError(t, err)
	require.Equal(t, Bits{1, 0, 1, 1, 0}, b)
	require.Equal(t, "10110", b.String())

	_, err = ParseBits("10x1")
	require.ErrorIs(t, err, ErrInvalidBits)

	empty, err := ParseBits("")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestBitsBytes(t *testing.T) {
	b := BitsFromBytes([]byte("Hi"))
	require.Equal(t, "0100100001101001", b.String())
	require.Equal(t, []byte("Hi"), b.Bytes())
	require.Equal(t, []byte{0xa0}, MustParseBits("101").Bytes())
}

func TestBitsUint(t *testing.T) {
	b := MustParseBits("1011")
	require.Equal(t, int64(0b101), b.uint(0, 3))
	require.Equal(t, int64(0b110), b.uint(2, 3)) // past the end reads 0
	require.Equal(t, "0001011", appendUint(nil, 0b1011, 7).String())
}

func TestFirstDifference(t *testing.T) {
	require.Equal(t, -1, FirstDifference(MustParseBits("1011"), MustParseBits("1011")))
	require.Equal(t, -1, FirstDifference(MustParseBits("1011"), MustParseBits("101100")))
	require.Equal(t, 2, FirstDifference(MustParseBits("1011"), MustParseBits("1001")))
	require.Equal(t, 4, FirstDifference(MustParseBits("1011"), MustParseBits("10111")))
}
