// Package quality measures how far a watermarked signal drifts from its
// original and publishes the figures.
//
// The measures are the ones used for physiological signals: percentage
// residual difference (PRD), normalized cross-correlation (NCC),
// signal-to-noise ratio (SNR) and peak signal-to-noise ratio (PSNR).
package quality
