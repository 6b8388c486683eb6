package pee

import "math"

// Predictor estimates the sample at i+2 from its neighbours at i, i+1, i+3
// and i+4. It must return the same value for the same inputs on every call;
// any drift between embedding and extraction breaks invertibility.
type Predictor interface {
	Predict(s0, s1, s3, s4 int64) int64
}

// PredictorFunc adapts an ordinary function to the Predictor interface.
type PredictorFunc func(s0, s1, s3, s4 int64) int64

// Predict calls f(s0, s1, s3, s4).
func (f PredictorFunc) Predict(s0, s1, s3, s4 int64) int64 { return f(s0, s1, s3, s4) }

// MeanPredictor returns the mean of the four neighbours rounded half to even.
type MeanPredictor struct{}

func (MeanPredictor) Predict(s0, s1, s3, s4 int64) int64 {
	sum := s0 + s1 + s3 + s4
	q := sum >> 2 // floor
	switch r := sum - q<<2; {
	case r > 2:
		q++
	case r == 2 && q&1 != 0:
		q++
	}
	return q
}

// LinearPredictor is a fitted linear regression over the four neighbours.
// The estimate is truncated toward zero.
type LinearPredictor struct {
	Weights [4]float64
	Bias    float64
}

func (lp LinearPredictor) Predict(s0, s1, s3, s4 int64) int64 {
	y := lp.Bias +
		lp.Weights[0]*float64(s0) +
		lp.Weights[1]*float64(s1) +
		lp.Weights[2]*float64(s3) +
		lp.Weights[3]*float64(s4)
	return int64(math.Trunc(y))
}

// predictAt evaluates pr on the context window anchored at i.
func predictAt(pr Predictor, s []int64, i int) int64 {
	return pr.Predict(s[i], s[i+1], s[i+3], s[i+4])
}
