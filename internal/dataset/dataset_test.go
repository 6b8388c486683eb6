package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Observe-l/rdh-pee/pee"
)

func TestReadCSV(t *testing.T) {
	in := "time,mlii,v5\n0.000,-0.145,-0.065\n0.003,-0.1459,-0.065\n0.006, 0.5,1\n"
	got, err := ReadCSV(strings.NewReader(in), CSVOptions{Column: 1, HeaderRows: 1})
	require.NoError(t, err)
	// truncated toward zero
	require.Equal(t, []int64{-145, -145, 500}, got)

	got, err = ReadCSV(strings.NewReader("1;2\n3;4\n"), CSVOptions{Column: 1, Scale: 1, Comma: ';'})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 4}, got)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("1\n2,3\n"), CSVOptions{Column: 1})
	require.ErrorContains(t, err, "row 1")
	_, err = ReadCSV(strings.NewReader("x\n"), CSVOptions{})
	require.Error(t, err)
	_, err = ReadCSV(strings.NewReader("NaN\n"), CSVOptions{})
	require.ErrorContains(t, err, "out of range")
	_, err = ReadCSV(strings.NewReader("1\n"), CSVOptions{Column: -1})
	require.Error(t, err)
}

func TestLoadCSVAndList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "101.csv"), []byte("1.5\n2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "100.csv"), []byte("0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	names, err := List(dir, "csv")
	require.NoError(t, err)
	require.Equal(t, []string{"100", "101"}, names)

	got, err := LoadCSV(filepath.Join(dir, "101.csv"), CSVOptions{})
	require.NoError(t, err)
	require.Equal(t, []int64{1500, 2000}, got)

	_, err = LoadCSV(filepath.Join(dir, "missing.csv"), CSVOptions{})
	require.Error(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf strings.Builder
	in := []int64{-3, 0, 1 << 40}
	require.NoError(t, WriteCSV(&buf, in))
	require.Equal(t, "-3\n0\n1099511627776\n", buf.String())
	got, err := ReadCSV(strings.NewReader(buf.String()), CSVOptions{Scale: 1})
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestSlice(t *testing.T) {
	s := []int64{0, 1, 2, 3, 4, 5, 6}
	require.Equal(t, [][]int64{{0, 1, 2}, {3, 4, 5}, {6}}, Slice(s, 3, 0))
	require.Equal(t, [][]int64{{0, 1, 2}, {3, 4, 5}}, Slice(s, 3, 2))
	require.Nil(t, Slice(s, 0, 1))
	require.Empty(t, Slice(nil, 3, 1))

	// batches do not share capacity with their neighbours
	b := Slice(s, 3, 0)
	b[0] = append(b[0], 99)
	require.Equal(t, int64(3), s[3])

	require.Equal(t, 3600, BatchLen(10, 360))
}

func TestReadSecret(t *testing.T) {
	p := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(p, []byte("1011\n"), 0o644))
	b, err := ReadSecret(p)
	require.NoError(t, err)
	require.Equal(t, pee.MustParseBits("1011"), b)

	require.NoError(t, os.WriteFile(p, []byte("10a1"), 0o644))
	_, err = ReadSecret(p)
	require.ErrorIs(t, err, pee.ErrInvalidBits)
}

func TestSynthesize(t *testing.T) {
	a := Synthesize(SynthOptions{Samples: 720, Noise: 0.01, Seed: 3})
	b := Synthesize(SynthOptions{Samples: 720, Noise: 0.01, Seed: 3})
	require.Len(t, a, 720)
	require.Equal(t, a, b)

	var peak int64
	for _, v := range a {
		peak = max(peak, v)
	}
	// R wave dominates
	require.Greater(t, peak, int64(900))
	require.Less(t, peak, int64(1300))

	require.Empty(t, Synthesize(SynthOptions{}))
}

func TestRandomSecret(t *testing.T) {
	s := RandomSecret(256, 1)
	require.Len(t, s, 256)
	require.Equal(t, s, RandomSecret(256, 1))
	ones := 0
	for _, v := range s {
		require.LessOrEqual(t, v, byte(1))
		ones += int(v)
	}
	require.InDelta(t, 128, ones, 40)
}
