package pee

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHeaderWidth(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 12: 4, 16: 4, 17: 5, 36: 6, 3600: 12} {
		require.Equal(t, want, HeaderWidth(n), "n=%d", n)
	}
}

func TestCapacityEngineKeys(t *testing.T) {
	eng, err := NewCapacityEngine(ThresholdOptions{})
	require.NoError(t, err)
	require.Equal(t, "100", eng.key.String())
	require.Equal(t, Phase(2), eng.HeaderPhase())

	eng, err = NewCapacityEngine(ThresholdOptions{Key: MustParseKey("011")})
	require.NoError(t, err)
	require.Equal(t, Phase(1), eng.HeaderPhase())

	_, err = NewCapacityEngine(ThresholdOptions{Key: AllPhases})
	require.ErrorIs(t, err, ErrNoHeaderPhase)
}

func TestCapacityScenario(t *testing.T) {
	sig := repeated(scenario, 3)
	for _, tc := range []struct {
		key    string
		header Phase
	}{
		{"100", 2},
		{"110", 3},
	} {
		eng, err := NewCapacityEngine(ThresholdOptions{Threshold: 4, Key: MustParseKey(tc.key)})
		require.NoError(t, err)
		require.Equal(t, tc.header, eng.HeaderPhase())

		res, err := eng.Embed(sig, MustParseBits("101101"))
		require.NoError(t, err)
		require.Equal(t, 6, res.Embedded)
		require.Equal(t, 18, res.LastIndex)
		require.Equal(t, "010010", res.Header.String())

		last, err := eng.DecodeHeader(res.Watermarked)
		require.NoError(t, err)
		require.Equal(t, res.LastIndex, last)

		orig, secret, err := eng.Extract(res.Watermarked)
		require.NoError(t, err)
		require.Equal(t, sig, orig)
		require.Equal(t, "101101", secret.String())
	}
}

func TestCapacityEmptySecret(t *testing.T) {
	sig := repeated(scenario, 3)
	eng, err := NewCapacityEngine(ThresholdOptions{Threshold: 4})
	require.NoError(t, err)
	res, err := eng.Embed(sig, nil)
	require.NoError(t, err)
	require.Equal(t, -1, res.LastIndex)
	require.Equal(t, "111111", res.Header.String())

	last, err := eng.DecodeHeader(res.Watermarked)
	require.NoError(t, err)
	require.Equal(t, -1, last)

	orig, secret, err := eng.Extract(res.Watermarked)
	require.NoError(t, err)
	require.Equal(t, sig, orig)
	require.Empty(t, secret)
}

func TestCapacityOverflowingSecret(t *testing.T) {
	sig := repeated(scenario, 3)
	eng, err := NewCapacityEngine(ThresholdOptions{Threshold: 4})
	require.NoError(t, err)
	secret := MustParseBits(strings.Repeat("1", 200))
	res, err := eng.Embed(sig, secret)
	require.NoError(t, err)
	require.Equal(t, 9, res.Embedded)
	require.Equal(t, 191, res.Unhidden)
	// the header records the final anchor written, past the last payload bit
	require.Equal(t, 30, res.LastIndex)

	orig, got, err := eng.Extract(res.Watermarked)
	require.NoError(t, err)
	require.Equal(t, sig, orig)
	require.Equal(t, secret[:9], got)
}

func TestCapacityHeaderDoesNotFit(t *testing.T) {
	eng, err := NewCapacityEngine(ThresholdOptions{Threshold: 4})
	require.NoError(t, err)
	_, err = eng.Embed(scenario, MustParseBits("1011"))
	require.ErrorIs(t, err, ErrHeaderCapacity)
}

func TestCapacityRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	fitted := 0
	for trial := 0; trial < 600; trial++ {
		n := 9 + rng.Intn(400)
		sig := randomSignal(rng, n)
		secret := randomBits(rng, rng.Intn(n))
		key := Key(1 + rng.Intn(6))
		eng, err := NewCapacityEngine(ThresholdOptions{Threshold: 1 + rng.Int63n(8), Key: key})
		require.NoError(t, err)

		res, err := eng.Embed(sig, secret)
		if errors.Is(err, ErrHeaderCapacity) {
			continue
		}
		require.NoError(t, err)
		fitted++
		require.Equal(t, len(secret), res.Embedded+res.Unhidden)
		require.True(t, untouchedEnds(sig, res.Watermarked))

		last, err := eng.DecodeHeader(res.Watermarked)
		require.NoError(t, err)
		require.Equal(t, res.LastIndex, last, "trial %d", trial)

		orig, got, err := eng.Extract(res.Watermarked)
		require.NoError(t, err, "trial %d", trial)
		require.Equal(t, sig, orig, "trial %d", trial)
		require.Equal(t, secret[:res.Embedded], got, "trial %d", trial)
	}
	require.Greater(t, fitted, 50)
}

func TestCapacityReportsOncePerEmbed(t *testing.T) {
	ctrl := gomock.NewController(t)
	rep := NewMockReporter(ctrl)
	rep.EXPECT().Report(gomock.Any(), gomock.Any(), gomock.Any()).Times(1)
	eng, err := NewCapacityEngine(ThresholdOptions{Reporter: rep})
	require.NoError(t, err)
	_, err = eng.Embed(repeated(scenario, 3), MustParseBits("1"))
	require.NoError(t, err)
}

func TestCapacityRejectsImpossibleHeader(t *testing.T) {
	sig := repeated(scenario, 3)
	eng, err := NewCapacityEngine(ThresholdOptions{Threshold: 4})
	require.NoError(t, err)
	res, err := eng.Embed(sig, MustParseBits("101101"))
	require.NoError(t, err)

	// read with phase 2 as the secret phase, the header comes out of the
	// payload samples and names anchor 12, a phase 1 position
	other, err := NewCapacityEngine(ThresholdOptions{Threshold: 4, Key: MustParseKey("010")})
	require.NoError(t, err)
	_, _, err = other.Extract(res.Watermarked)
	require.ErrorIs(t, err, ErrInvalidHeader)
}
