package stegorpc

import (
	"math"

	"github.com/francoispqt/gojay"

	"github.com/Observe-l/rdh-pee/quality"
	"github.com/Observe-l/rdh-pee/sideinfo"
)

// Scheme names accepted in Params.Scheme.
const (
	SchemeThreshold = "threshold"
	SchemeCapacity  = "capacity"
	SchemeMirror    = "mirror"
)

// Params selects an engine and configures it. Zero values select the engine defaults.
type Params struct {
	Scheme      string
	Threshold   int64  // expansion threshold, or extra bit width for the mirror scheme
	Key         string // phase mask such as "101"
	PayloadRate int    // mirror only
	// Weights and Bias select a linear predictor when Weights is set.
	Weights []float64
	Bias    float64
}

type float64s []float64

func (a float64s) MarshalJSONArray(enc *gojay.Encoder) {
	for _, v := range a {
		enc.Float64(v)
	}
}

func (a float64s) IsNil() bool { return len(a) == 0 }

func (a *float64s) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var v float64
	if err := dec.Float64(&v); err != nil {
		return err
	}
	*a = append(*a, v)
	return nil
}

func (p *Params) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("scheme", p.Scheme)
	enc.Int64KeyOmitEmpty("threshold", p.Threshold)
	enc.StringKeyOmitEmpty("key", p.Key)
	enc.IntKeyOmitEmpty("payload_rate", p.PayloadRate)
	enc.ArrayKeyOmitEmpty("weights", float64s(p.Weights))
	enc.Float64KeyOmitEmpty("bias", p.Bias)
}

func (p *Params) IsNil() bool { return p == nil }

func (p *Params) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "scheme":
		return dec.String(&p.Scheme)
	case "threshold":
		return dec.Int64(&p.Threshold)
	case "key":
		return dec.String(&p.Key)
	case "payload_rate":
		return dec.Int(&p.PayloadRate)
	case "weights":
		var w float64s
		if err := dec.Array(&w); err != nil {
			return err
		}
		p.Weights = w
	case "bias":
		return dec.Float64(&p.Bias)
	}
	return nil
}

func (p *Params) NKeys() int { return 0 }

// EmbedRequest asks for secret to be hidden in Samples.
type EmbedRequest struct {
	Params  Params
	Samples []int64
	Secret  string // "0101..."
}

func (r *EmbedRequest) MarshalJSONObject(enc *gojay.Encoder) {
	enc.ObjectKey("params", &r.Params)
	enc.ArrayKey("samples", sideinfo.Int64s(r.Samples))
	enc.StringKey("secret", r.Secret)
}

func (r *EmbedRequest) IsNil() bool { return r == nil }

func (r *EmbedRequest) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "params":
		return dec.Object(&r.Params)
	case "samples":
		var s sideinfo.Int64s
		if err := dec.Array(&s); err != nil {
			return err
		}
		r.Samples = s
	case "secret":
		return dec.String(&r.Secret)
	}
	return nil
}

func (r *EmbedRequest) NKeys() int { return 3 }

// Quality carries the distortion figures of one embed. Non-finite figures
// are sent as zero.
type Quality struct {
	PRD, NCC, SNR, PSNR float64
}

func qualityOf(r quality.Report) Quality {
	return Quality{PRD: finite(r.PRD), NCC: finite(r.NCC), SNR: finite(r.SNR), PSNR: finite(r.PSNR)}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (q *Quality) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Float64Key("prd", q.PRD)
	enc.Float64Key("ncc", q.NCC)
	enc.Float64Key("snr", q.SNR)
	enc.Float64Key("psnr", q.PSNR)
}

func (q *Quality) IsNil() bool { return q == nil }

func (q *Quality) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "prd":
		return dec.Float64(&q.PRD)
	case "ncc":
		return dec.Float64(&q.NCC)
	case "snr":
		return dec.Float64(&q.SNR)
	case "psnr":
		return dec.Float64(&q.PSNR)
	}
	return nil
}

func (q *Quality) NKeys() int { return 4 }

// EmbedResponse carries the watermarked samples and whatever the matching
// Extract call needs besides them.
type EmbedResponse struct {
	Watermarked []int64
	Embedded    int
	Unhidden    int
	// LastIndex is the final anchor written by the capacity and mirror
	// schemes, -1 for the threshold scheme.
	LastIndex int
	// Header is the capacity scheme's self-embedded header.
	Header string
	// SideInfo is set by the mirror scheme.
	SideInfo      *sideinfo.SideInfo
	ElapsedMicros int64
	Quality       Quality
}

func (r *EmbedResponse) MarshalJSONObject(enc *gojay.Encoder) {
	enc.ArrayKey("watermarked", sideinfo.Int64s(r.Watermarked))
	enc.IntKey("embedded", r.Embedded)
	enc.IntKey("unhidden", r.Unhidden)
	enc.IntKey("last_index", r.LastIndex)
	enc.StringKeyOmitEmpty("header", r.Header)
	if r.SideInfo != nil {
		enc.ObjectKey("side_info", r.SideInfo)
	}
	enc.Int64Key("elapsed_us", r.ElapsedMicros)
	enc.ObjectKey("quality", &r.Quality)
}

func (r *EmbedResponse) IsNil() bool { return r == nil }

func (r *EmbedResponse) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "watermarked":
		var s sideinfo.Int64s
		if err := dec.Array(&s); err != nil {
			return err
		}
		r.Watermarked = s
	case "embedded":
		return dec.Int(&r.Embedded)
	case "unhidden":
		return dec.Int(&r.Unhidden)
	case "last_index":
		return dec.Int(&r.LastIndex)
	case "header":
		return dec.String(&r.Header)
	case "side_info":
		r.SideInfo = &sideinfo.SideInfo{}
		return dec.Object(r.SideInfo)
	case "elapsed_us":
		return dec.Int64(&r.ElapsedMicros)
	case "quality":
		return dec.Object(&r.Quality)
	}
	return nil
}

func (r *EmbedResponse) NKeys() int { return 0 }

// ExtractRequest asks for the original samples and secret back.
type ExtractRequest struct {
	Params      Params
	Watermarked []int64
	// SideInfo is required by the mirror scheme.
	SideInfo *sideinfo.SideInfo
}

func (r *ExtractRequest) MarshalJSONObject(enc *gojay.Encoder) {
	enc.ObjectKey("params", &r.Params)
	enc.ArrayKey("watermarked", sideinfo.Int64s(r.Watermarked))
	if r.SideInfo != nil {
		enc.ObjectKey("side_info", r.SideInfo)
	}
}

func (r *ExtractRequest) IsNil() bool { return r == nil }

func (r *ExtractRequest) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "params":
		return dec.Object(&r.Params)
	case "watermarked":
		var s sideinfo.Int64s
		if err := dec.Array(&s); err != nil {
			return err
		}
		r.Watermarked = s
	case "side_info":
		r.SideInfo = &sideinfo.SideInfo{}
		return dec.Object(r.SideInfo)
	}
	return nil
}

func (r *ExtractRequest) NKeys() int { return 3 }

type ExtractResponse struct {
	Samples []int64
	Secret  string
}

func (r *ExtractResponse) MarshalJSONObject(enc *gojay.Encoder) {
	enc.ArrayKey("samples", sideinfo.Int64s(r.Samples))
	enc.StringKey("secret", r.Secret)
}

func (r *ExtractResponse) IsNil() bool { return r == nil }

func (r *ExtractResponse) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "samples":
		var s sideinfo.Int64s
		if err := dec.Array(&s); err != nil {
			return err
		}
		r.Samples = s
	case "secret":
		return dec.String(&r.Secret)
	}
	return nil
}

func (r *ExtractResponse) NKeys() int { return 2 }

// CapacityRequest probes how many bits a threshold embed could carry.
type CapacityRequest struct {
	Params  Params
	Samples []int64
}

func (r *CapacityRequest) MarshalJSONObject(enc *gojay.Encoder) {
	enc.ObjectKey("params", &r.Params)
	enc.ArrayKey("samples", sideinfo.Int64s(r.Samples))
}

func (r *CapacityRequest) IsNil() bool { return r == nil }

func (r *CapacityRequest) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "params":
		return dec.Object(&r.Params)
	case "samples":
		var s sideinfo.Int64s
		if err := dec.Array(&s); err != nil {
			return err
		}
		r.Samples = s
	}
	return nil
}

func (r *CapacityRequest) NKeys() int { return 2 }

type CapacityResponse struct {
	Capacity int
}

func (r *CapacityResponse) MarshalJSONObject(enc *gojay.Encoder) {
	enc.IntKey("capacity", r.Capacity)
}

func (r *CapacityResponse) IsNil() bool { return r == nil }

func (r *CapacityResponse) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	if key == "capacity" {
		return dec.Int(&r.Capacity)
	}
	return nil
}

func (r *CapacityResponse) NKeys() int { return 1 }
