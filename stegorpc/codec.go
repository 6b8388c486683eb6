package stegorpc

import (
	"fmt"

	"github.com/francoispqt/gojay"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype carried by every call of this service.
const CodecName = "gojay"

// codec marshals messages as JSON with gojay instead of protobuf.
type codec struct{}

func init() { encoding.RegisterCodec(codec{}) }

func (codec) Name() string { return CodecName }

func (codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(gojay.MarshalerJSONObject)
	if !ok {
		return nil, fmt.Errorf("stegorpc: cannot marshal %T", v)
	}
	return gojay.MarshalJSONObject(m)
}

func (codec) Unmarshal(data []byte, v any) error {
	u, ok := v.(gojay.UnmarshalerJSONObject)
	if !ok {
		return fmt.Errorf("stegorpc: cannot unmarshal into %T", v)
	}
	return gojay.UnmarshalJSONObject(data, u)
}
