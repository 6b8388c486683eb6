package pee

import "errors"

var (
	// ErrInvalidThreshold indicates a threshold below 1 for the threshold engines
	// or below 0 for the mirror engine.
	ErrInvalidThreshold = errors.New("pee: invalid threshold")

	// ErrInvalidKey indicates a phase key that is not a 3-character string of '0' and '1'.
	ErrInvalidKey = errors.New("pee: invalid phase key")

	// ErrInvalidPayloadRate indicates a mirror payload rate below 1, or a
	// payload rate plus threshold that does not fit in a sample offset.
	ErrInvalidPayloadRate = errors.New("pee: invalid payload rate")

	// ErrInvalidBits indicates a secret string containing characters other than '0' and '1'.
	ErrInvalidBits = errors.New("pee: invalid bit string")

	// ErrNoHeaderPhase indicates the capacity engine was given a key that
	// enables every phase, leaving nowhere to hide the resume index.
	ErrNoHeaderPhase = errors.New("pee: key leaves no phase for the capacity header")

	// ErrHeaderCapacity indicates the header phase has fewer expandable samples
	// than the capacity header needs.
	ErrHeaderCapacity = errors.New("pee: header phase cannot hold the capacity header")

	// ErrInvalidHeader indicates a decoded capacity header that does not name
	// a position of an enabled phase.
	ErrInvalidHeader = errors.New("pee: invalid capacity header")

	// ErrInvalidSideInfo indicates a mirror log or resume header inconsistent
	// with the watermarked signal.
	ErrInvalidSideInfo = errors.New("pee: invalid mirror side information")
)
