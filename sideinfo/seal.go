package sideinfo

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/Observe-l/rdh-pee/internal/sidewire"
)

// ErrDigestMismatch indicates a sealed record whose payload does not match its checksum.
var ErrDigestMismatch = errors.New("sideinfo: digest mismatch")

// maxPayload bounds the decompressed payload accepted by Open.
const maxPayload = 1 << 30

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPayload))
	})
	return zstdEnc, zstdDec, zstdErr
}

// Seal frames the proto form of s in an envelope, compressing it when
// compress is set.
func Seal(s *SideInfo, compress bool) ([]byte, error) {
	raw := s.MarshalProto()
	h := sidewire.Envelope{Version: 1, SHA256: sha256.Sum256(raw)}
	payload := raw
	if compress {
		enc, _, err := zstdCodecs()
		if err != nil {
			return nil, fmt.Errorf("zstd encode: %w", err)
		}
		payload = enc.EncodeAll(raw, nil)
		h.Flags |= sidewire.FlagZstd
	}
	if len(payload) > maxPayload {
		return nil, fmt.Errorf("sideinfo: payload of %d bytes too large", len(payload))
	}
	h.Length = uint32(len(payload))
	return append(h.MarshalBinary(), payload...), nil
}

// Open reverses Seal.
func Open(b []byte) (*SideInfo, error) {
	var h sidewire.Envelope
	if err := h.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("sideinfo: %w", err)
	}
	payload := b[sidewire.EnvelopeLen:]
	if uint64(len(payload)) < uint64(h.Length) {
		return nil, fmt.Errorf("sideinfo: truncated payload: %d of %d bytes", len(payload), h.Length)
	}
	payload = payload[:h.Length]
	if h.Flags&sidewire.FlagZstd != 0 {
		_, dec, err := zstdCodecs()
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		if payload, err = dec.DecodeAll(payload, nil); err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
	}
	if sha256.Sum256(payload) != h.SHA256 {
		return nil, ErrDigestMismatch
	}
	return UnmarshalProto(payload)
}
