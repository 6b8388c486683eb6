package sidefec

import (
	"errors"

	rqq "github.com/xssnick/raptorq"
)

// raptorqEncode generates symbols 0..n-1 for data split into l-byte symbols.
// Ids below the library's source count are the systematic symbols.
func raptorqEncode(data []byte, n, l int) ([]Packet, error) {
	if n <= 0 || l <= 0 {
		return nil, errors.New("bad N or L")
	}
	enc, err := rqq.NewRaptorQ(uint32(l)).CreateEncoder(data)
	if err != nil {
		return nil, err
	}
	if int(enc.BaseSymbolsNum()) > n {
		return nil, errors.New("raptorq needs more source symbols than requested")
	}
	out := make([]Packet, n)
	for i := range out {
		out[i] = Packet{Index: i, Data: enc.GenSymbol(uint32(i))}
	}
	return out, nil
}

// raptorqDecode reconstructs exactly size bytes from received symbols.
func raptorqDecode(recv []Packet, size, l int) ([]byte, error) {
	if size <= 0 || l <= 0 {
		return nil, errors.New("bad dataSize or L")
	}
	dec, err := rqq.NewRaptorQ(uint32(l)).CreateDecoder(uint32(size))
	if err != nil {
		return nil, err
	}
	enough := false
	for _, p := range recv {
		if p.Index < 0 {
			continue
		}
		// a rejected symbol is skipped; the rest may still suffice
		if ok, err := dec.AddSymbol(uint32(p.Index), p.Data); err == nil && ok {
			enough = true
		}
	}
	if !enough {
		return nil, ErrTooFewSymbols
	}
	ok, data, err := dec.Decode()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTooFewSymbols
	}
	return data, nil
}
