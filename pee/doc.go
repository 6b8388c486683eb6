// Package pee implements reversible data hiding over integer sample sequences
// using prediction-error expansion.
//
// Three engines are provided:
//
//   - ThresholdEngine expands prediction errors below a fixed threshold and
//     shifts the rest, one payload bit per expandable sample.
//   - CapacityEngine runs the threshold scheme and additionally hides the
//     index where embedding stopped inside a disabled phase, so extraction
//     needs nothing beyond the threshold and the phase key.
//   - MirrorEngine embeds a variable number of bits per sample using mirrored
//     offsets around the sample value and returns a difference log plus a
//     ResumeHeader that must accompany the watermarked signal.
//
// Every engine walks the signal in three interleaved phases. Embedding visits
// phases 1, 2, 3 with ascending indices; extraction visits them in exactly
// the reverse order so each prediction sees the same context the embedder saw.
package pee
