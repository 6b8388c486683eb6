package sideinfo

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/Observe-l/rdh-pee/pee"
)

const (
	fieldPhase    protowire.Number = 1
	fieldIndex    protowire.Number = 2
	fieldBitWidth protowire.Number = 3
	fieldLog      protowire.Number = 4
)

// MarshalProto returns the protobuf wire form of s. Zero scalars are omitted.
func (s *SideInfo) MarshalProto() []byte {
	var b []byte
	if s.Header.Phase != 0 {
		b = protowire.AppendTag(b, fieldPhase, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s.Header.Phase))
	}
	if s.Header.Index != 0 {
		b = protowire.AppendTag(b, fieldIndex, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s.Header.Index))
	}
	if s.Header.BitWidth != 0 {
		b = protowire.AppendTag(b, fieldBitWidth, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s.Header.BitWidth))
	}
	if len(s.Log) > 0 {
		var packed []byte
		for _, d := range s.Log {
			packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(d))
		}
		b = protowire.AppendTag(b, fieldLog, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	return b
}

// UnmarshalProto parses the protobuf wire form. Unknown fields are skipped.
func UnmarshalProto(b []byte) (*SideInfo, error) {
	s := &SideInfo{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case typ == protowire.VarintType && num >= fieldPhase && num <= fieldBitWidth:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			if v > 1<<31 {
				return nil, fmt.Errorf("sideinfo: field %d out of range: %d", num, v)
			}
			switch num {
			case fieldPhase:
				s.Header.Phase = pee.Phase(v)
			case fieldIndex:
				s.Header.Index = int(v)
			case fieldBitWidth:
				s.Header.BitWidth = int(v)
			}
		case num == fieldLog && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			for len(packed) > 0 {
				v, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return nil, protowire.ParseError(m)
				}
				packed = packed[m:]
				s.Log = append(s.Log, protowire.DecodeZigZag(v))
			}
		case num == fieldLog && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			s.Log = append(s.Log, protowire.DecodeZigZag(v))
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	if s.Header.Phase > pee.NumPhases {
		return nil, errors.New("sideinfo: phase out of range")
	}
	return s, nil
}
