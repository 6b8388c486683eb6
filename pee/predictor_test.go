package pee

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeanPredictorRoundsHalfToEven(t *testing.T) {
	var mp MeanPredictor
	cases := []struct {
		s    [4]int64
		want int64
	}{
		{[4]int64{1, 2, 3, 4}, 2},      // 2.5
		{[4]int64{2, 3, 4, 5}, 4},      // 3.5
		{[4]int64{1, 1, 1, 2}, 1},      // 1.25
		{[4]int64{1, 2, 2, 2}, 2},      // 1.75
		{[4]int64{-1, -2, -3, -4}, -2}, // -2.5
		{[4]int64{-1, -1, -2, -2}, -2}, // -1.5
		{[4]int64{-1, 0, 0, 0}, 0},     // -0.25
		{[4]int64{-1, -1, -1, 0}, -1},  // -0.75
		{[4]int64{12, 11, 15, 14}, 13},
	}
	for _, c := range cases {
		require.Equal(t, c.want, mp.Predict(c.s[0], c.s[1], c.s[2], c.s[3]), "%v", c.s)
	}
}

func TestLinearPredictorTruncates(t *testing.T) {
	lp := LinearPredictor{Weights: [4]float64{0.25, 0.25, 0.25, 0.25}, Bias: 0.1}
	require.Equal(t, int64(2), lp.Predict(1, 2, 3, 4))    // 2.6
	require.Equal(t, int64(-2), lp.Predict(-3, -3, -3, -3)) // -2.9
}

func TestPredictorFunc(t *testing.T) {
	f := PredictorFunc(func(s0, s1, s3, s4 int64) int64 { return s1 })
	require.Equal(t, int64(7), predictAt(f, []int64{1, 7, 100, 3, 4}, 0))
}
