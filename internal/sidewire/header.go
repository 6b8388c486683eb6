package sidewire

import (
	"encoding/binary"
	"errors"
)

// Scheme identifiers for erasure-protected side information.
const (
	SchemeRS      uint8 = 1
	SchemeRaptorQ uint8 = 2
)

// SymbolHeader precedes every erasure-coded symbol of a side-information blob.
type SymbolHeader struct {
	Version uint8  // 1
	Scheme  uint8  // 1=RS, 2=RaptorQ
	K       uint16 // source symbols
	R       uint16 // repair symbols
	SymID   uint16 // 0..K+R-1
	SymLen  uint32 // L bytes per symbol
	BlobLen uint32 // exact length of the protected blob
}

const SymbolHeaderLen = 1 + 1 + 2 + 2 + 2 + 4 + 4

func (h *SymbolHeader) MarshalBinary(b []byte) []byte {
	if len(b) < SymbolHeaderLen {
		b = make([]byte, SymbolHeaderLen)
	}
	b[0] = h.Version
	b[1] = h.Scheme
	binary.LittleEndian.PutUint16(b[2:4], h.K)
	binary.LittleEndian.PutUint16(b[4:6], h.R)
	binary.LittleEndian.PutUint16(b[6:8], h.SymID)
	binary.LittleEndian.PutUint32(b[8:12], h.SymLen)
	binary.LittleEndian.PutUint32(b[12:16], h.BlobLen)
	return b[:SymbolHeaderLen]
}

func (h *SymbolHeader) UnmarshalBinary(b []byte) bool {
	if len(b) < SymbolHeaderLen {
		return false
	}
	h.Version = b[0]
	h.Scheme = b[1]
	h.K = binary.LittleEndian.Uint16(b[2:4])
	h.R = binary.LittleEndian.Uint16(b[4:6])
	h.SymID = binary.LittleEndian.Uint16(b[6:8])
	h.SymLen = binary.LittleEndian.Uint32(b[8:12])
	h.BlobLen = binary.LittleEndian.Uint32(b[12:16])
	return true
}

// Envelope frames one encoded side-information record.
// Layout:
//
//	MAGIC    4B   "PEEM"
//	VERSION  u16  0x0001
//	FLAGS    u8   bit0: payload is zstd-compressed
//	RESERVED u8   zero
//	LENGTH   u32  payload bytes following the header
//	SHA256   32B  digest of the uncompressed payload
const (
	envelopeMagic = "PEEM"
	EnvelopeLen   = 4 + 2 + 1 + 1 + 4 + 32
)

// FlagZstd marks a zstd-compressed payload.
const FlagZstd uint8 = 1 << 0

type Envelope struct {
	Version uint16
	Flags   uint8
	Length  uint32
	SHA256  [32]byte
}

func (h *Envelope) MarshalBinary() []byte {
	b := make([]byte, EnvelopeLen)
	copy(b[0:4], envelopeMagic)
	binary.LittleEndian.PutUint16(b[4:6], h.Version)
	b[6] = h.Flags
	binary.LittleEndian.PutUint32(b[8:12], h.Length)
	copy(b[12:44], h.SHA256[:])
	return b
}

func (h *Envelope) UnmarshalBinary(b []byte) error {
	if len(b) < EnvelopeLen {
		return errors.New("short header")
	}
	if string(b[0:4]) != envelopeMagic {
		return errors.New("bad magic")
	}
	h.Version = binary.LittleEndian.Uint16(b[4:6])
	if h.Version != 1 {
		return errors.New("unsupported version")
	}
	h.Flags = b[6]
	h.Length = binary.LittleEndian.Uint32(b[8:12])
	copy(h.SHA256[:], b[12:44])
	return nil
}
