package sidewire

import (
	"bytes"
	"testing"
)

func TestEnvelopeRoundtrip(t *testing.T) {
	var sha [32]byte
	for i := range sha {
		sha[i] = byte(i * 3)
	}
	h := Envelope{Version: 1, Flags: FlagZstd, Length: 4242, SHA256: sha}
	b := h.MarshalBinary()
	if len(b) != EnvelopeLen {
		t.Fatalf("len=%d", len(b))
	}
	var h2 Envelope
	if err := h2.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if h2.Flags != FlagZstd || h2.Length != h.Length || !bytes.Equal(h2.SHA256[:], sha[:]) {
		t.Fatalf("mismatch: %+v vs %+v", h2, h)
	}
}

func TestEnvelopeRejects(t *testing.T) {
	h := Envelope{Version: 1}
	b := h.MarshalBinary()
	var h2 Envelope
	if err := h2.UnmarshalBinary(b[:10]); err == nil {
		t.Fatal("short header accepted")
	}
	bad := append([]byte(nil), b...)
	bad[0] = 'X'
	if err := h2.UnmarshalBinary(bad); err == nil {
		t.Fatal("bad magic accepted")
	}
	h.Version = 2
	if err := h2.UnmarshalBinary(h.MarshalBinary()); err == nil {
		t.Fatal("unknown version accepted")
	}
}

func TestSymbolHeaderRoundtrip(t *testing.T) {
	h := SymbolHeader{Version: 1, Scheme: SchemeRaptorQ, K: 12, R: 4, SymID: 15, SymLen: 96, BlobLen: 1100}
	buf := make([]byte, SymbolHeaderLen+8)
	b := h.MarshalBinary(buf)
	if len(b) != SymbolHeaderLen {
		t.Fatalf("len=%d", len(b))
	}
	var h2 SymbolHeader
	if !h2.UnmarshalBinary(b) {
		t.Fatal("unmarshal failed")
	}
	if h2 != h {
		t.Fatalf("mismatch: %+v vs %+v", h2, h)
	}
	if h2.UnmarshalBinary(b[:SymbolHeaderLen-1]) {
		t.Fatal("short symbol header accepted")
	}
}
