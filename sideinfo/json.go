package sideinfo

import (
	"github.com/francoispqt/gojay"

	"github.com/Observe-l/rdh-pee/pee"
)

// Int64s is a JSON array of integers.
type Int64s []int64

func (a Int64s) MarshalJSONArray(enc *gojay.Encoder) {
	for _, v := range a {
		enc.Int64(v)
	}
}

func (a Int64s) IsNil() bool { return a == nil }

func (a *Int64s) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var v int64
	if err := dec.Int64(&v); err != nil {
		return err
	}
	*a = append(*a, v)
	return nil
}

func (s *SideInfo) MarshalJSONObject(enc *gojay.Encoder) {
	enc.IntKey("last_phase", int(s.Header.Phase))
	enc.IntKey("last_index", s.Header.Index)
	enc.IntKey("last_bit_width", s.Header.BitWidth)
	enc.ArrayKey("log", Int64s(s.Log))
}

func (s *SideInfo) IsNil() bool { return s == nil }

func (s *SideInfo) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "last_phase":
		var p int
		if err := dec.Int(&p); err != nil {
			return err
		}
		s.Header.Phase = pee.Phase(p)
	case "last_index":
		return dec.Int(&s.Header.Index)
	case "last_bit_width":
		return dec.Int(&s.Header.BitWidth)
	case "log":
		var l Int64s
		if err := dec.Array(&l); err != nil {
			return err
		}
		s.Log = pee.DiffLog(l)
	}
	return nil
}

func (s *SideInfo) NKeys() int { return 4 }

// MarshalJSON implements json.Marshaler on top of gojay.
func (s *SideInfo) MarshalJSON() ([]byte, error) { return gojay.MarshalJSONObject(s) }

// UnmarshalJSON implements json.Unmarshaler on top of gojay.
func (s *SideInfo) UnmarshalJSON(b []byte) error { return gojay.UnmarshalJSONObject(b, s) }
