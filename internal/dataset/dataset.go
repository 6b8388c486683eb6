// Package dataset loads sample recordings for the command-line tools and cuts
// them into fixed-duration batches.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Observe-l/rdh-pee/pee"
)

// DefaultScale converts millivolt readings to integer microvolt-ish units.
const DefaultScale = 1000

// CSVOptions controls how a recording is read.
type CSVOptions struct {
	Column     int     // zero-based column holding the samples
	Scale      float64 // multiplier applied before truncation; 0 means DefaultScale
	HeaderRows int     // leading rows to skip
	Comma      rune    // field separator; 0 means ','
}

func (o *CSVOptions) setDefaults() {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Comma == 0 {
		o.Comma = ','
	}
}

// ReadCSV reads one column of float samples and converts them to integers
// by scaling and truncating toward zero.
func ReadCSV(r io.Reader, opts CSVOptions) ([]int64, error) {
	opts.setDefaults()
	if opts.Column < 0 {
		return nil, fmt.Errorf("dataset: bad column %d", opts.Column)
	}
	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var out []int64
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if row < opts.HeaderRows {
			continue
		}
		if opts.Column >= len(rec) {
			return nil, fmt.Errorf("dataset: row %d has %d columns, need %d", row+1, len(rec), opts.Column+1)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[opts.Column]), 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: %w", row+1, err)
		}
		s := v * opts.Scale
		if math.IsNaN(s) || math.IsInf(s, 0) || math.Abs(s) >= math.MaxInt64 {
			return nil, fmt.Errorf("dataset: row %d: sample %v out of range", row+1, v)
		}
		out = append(out, int64(s))
	}
	return out, nil
}

// LoadCSV reads a recording from a file.
func LoadCSV(path string, opts CSVOptions) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// WriteCSV writes one integer sample per row.
func WriteCSV(w io.Writer, samples []int64) error {
	cw := csv.NewWriter(w)
	rec := make([]string, 1)
	for _, v := range samples {
		rec[0] = strconv.FormatInt(v, 10)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// BatchLen returns the number of samples in a batch of the given duration.
func BatchLen(seconds, fs float64) int {
	return int(seconds * fs)
}

// Slice cuts samples into consecutive batches of size samples each, producing
// at most maxBatch batches. The final batch may be shorter; empty batches
// are never returned. maxBatch <= 0 means no limit.
func Slice(samples []int64, size, maxBatch int) [][]int64 {
	if size <= 0 {
		return nil
	}
	var out [][]int64
	for off := 0; off < len(samples); off += size {
		if maxBatch > 0 && len(out) == maxBatch {
			break
		}
		end := min(off+size, len(samples))
		out = append(out, samples[off:end:end])
	}
	return out
}

// ReadSecret reads a secret bit string ("0101...") from a file.
func ReadSecret(path string) (pee.Bits, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return pee.ParseBits(strings.TrimSpace(string(b)))
}

// List returns the base names, without extension, of files in dir ending in
// "."+ext, sorted.
func List(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	suffix := "." + strings.TrimPrefix(ext, ".")
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}
