// Package sidefec protects side-information blobs with erasure codes so that
// a mirror decoder can still run when part of the out-of-band channel is lost.
package sidefec

import (
	"errors"
	"fmt"

	"github.com/Observe-l/rdh-pee/internal/sidewire"
)

var (
	ErrTooFewSymbols = errors.New("sidefec: not enough symbols to recover")
	ErrEmptyBlob     = errors.New("sidefec: empty blob")
	ErrMixedFrames   = errors.New("sidefec: frames from different blobs")
)

// Packet is one erasure-coded symbol.
type Packet struct {
	Index int
	Data  []byte
}

// Params selects the code and its shape.
type Params struct {
	Scheme uint8 // sidewire.SchemeRS or sidewire.SchemeRaptorQ
	K      int   // source symbols
	R      int   // repair symbols
}

func (p Params) validate() error {
	switch p.Scheme {
	case sidewire.SchemeRS:
		if p.K+p.R > 255 {
			return fmt.Errorf("sidefec: RS needs K+R<=255, got %d", p.K+p.R)
		}
	case sidewire.SchemeRaptorQ:
	default:
		return fmt.Errorf("sidefec: unknown scheme %d", p.Scheme)
	}
	if p.K <= 0 || p.R < 0 || p.K+p.R > 0xffff {
		return fmt.Errorf("sidefec: bad K=%d R=%d", p.K, p.R)
	}
	return nil
}

// Protect splits blob into K source symbols, adds R repair symbols and
// returns one self-describing frame per symbol.
func Protect(blob []byte, p Params) ([][]byte, error) {
	if len(blob) == 0 {
		return nil, ErrEmptyBlob
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	l := (len(blob) + p.K - 1) / p.K

	var pkts []Packet
	switch p.Scheme {
	case sidewire.SchemeRS:
		padded := make([]byte, p.K*l)
		copy(padded, blob)
		src := make([][]byte, p.K)
		for k := range src {
			src[k] = padded[k*l : (k+1)*l]
			pkts = append(pkts, Packet{Index: k, Data: src[k]})
		}
		code, err := newRSCode(p.K, p.R)
		if err != nil {
			return nil, err
		}
		pkts = append(pkts, code.encode(src)...)
	case sidewire.SchemeRaptorQ:
		var err error
		if pkts, err = raptorqEncode(blob, p.K+p.R, l); err != nil {
			return nil, err
		}
	}

	frames := make([][]byte, len(pkts))
	for i, pk := range pkts {
		h := sidewire.SymbolHeader{
			Version: 1,
			Scheme:  p.Scheme,
			K:       uint16(p.K),
			R:       uint16(p.R),
			SymID:   uint16(pk.Index),
			SymLen:  uint32(l),
			BlobLen: uint32(len(blob)),
		}
		f := make([]byte, sidewire.SymbolHeaderLen+l)
		h.MarshalBinary(f)
		copy(f[sidewire.SymbolHeaderLen:], pk.Data)
		frames[i] = f
	}
	return frames, nil
}

// Recover rebuilds the blob from any sufficient subset of frames.
// Malformed frames are ignored.
func Recover(frames [][]byte) ([]byte, error) {
	var (
		first *sidewire.SymbolHeader
		pkts  []Packet
	)
	for _, f := range frames {
		var h sidewire.SymbolHeader
		if !h.UnmarshalBinary(f) || h.Version != 1 {
			continue
		}
		data := f[sidewire.SymbolHeaderLen:]
		if len(data) < int(h.SymLen) {
			continue
		}
		if first == nil {
			first = &h
		} else if h.Scheme != first.Scheme || h.K != first.K || h.R != first.R ||
			h.SymLen != first.SymLen || h.BlobLen != first.BlobLen {
			return nil, ErrMixedFrames
		}
		pkts = append(pkts, Packet{Index: int(h.SymID), Data: data[:h.SymLen]})
	}
	if first == nil {
		return nil, ErrTooFewSymbols
	}
	k, r, l, size := int(first.K), int(first.R), int(first.SymLen), int(first.BlobLen)

	switch first.Scheme {
	case sidewire.SchemeRS:
		code, err := newRSCode(k, r)
		if err != nil {
			return nil, err
		}
		src, err := code.decode(pkts)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, k*l)
		for _, s := range src {
			out = append(out, s...)
		}
		if size > len(out) {
			return nil, fmt.Errorf("sidefec: blob length %d exceeds %d decoded bytes", size, len(out))
		}
		return out[:size], nil
	case sidewire.SchemeRaptorQ:
		return raptorqDecode(pkts, size, l)
	default:
		return nil, fmt.Errorf("sidefec: unknown scheme %d", first.Scheme)
	}
}
