// Package sideinfo encodes the out-of-band data a mirror extraction needs:
// the resume header and the difference log.
//
// Three forms are supported. Proto is the protobuf wire encoding of
//
//	message SideInfo {
//	  uint32 last_phase = 1;
//	  uint64 last_index = 2;
//	  uint32 last_bit_width = 3;
//	  repeated sint64 log = 4 [packed = true];
//	}
//
// JSON is an object with the same field names. Seal frames the proto form in
// a checksummed envelope, optionally zstd-compressed.
package sideinfo

import (
	"github.com/Observe-l/rdh-pee/pee"
)

// SideInfo is what must travel with a mirror-watermarked signal.
type SideInfo struct {
	Header pee.ResumeHeader
	Log    pee.DiffLog
}

// FromEmbedding captures the side information of a mirror embed.
func FromEmbedding(m *pee.MirrorEmbedding) *SideInfo {
	return &SideInfo{Header: m.Header, Log: append(pee.DiffLog(nil), m.Log...)}
}
