package stegorpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Observe-l/rdh-pee/pee"
	"github.com/Observe-l/rdh-pee/quality"
	"github.com/Observe-l/rdh-pee/sideinfo"
)

// Server implements StegoServer on top of the pee engines. Engines are
// built per request from its Params, so a Server holds no per-signal state.
type Server struct {
	metrics *quality.PromMetrics
}

// NewServer returns a Server. metrics may be nil.
func NewServer(metrics *quality.PromMetrics) *Server { return &Server{metrics: metrics} }

var _ StegoServer = (*Server)(nil)

func (p *Params) predictor() (pee.Predictor, error) {
	switch len(p.Weights) {
	case 0:
		return nil, nil
	case 4:
		lp := pee.LinearPredictor{Bias: p.Bias}
		copy(lp.Weights[:], p.Weights)
		return lp, nil
	default:
		return nil, fmt.Errorf("predictor needs 4 weights, got %d", len(p.Weights))
	}
}

func (p *Params) thresholdOptions(rep quality.Reporter) (pee.ThresholdOptions, error) {
	opts := pee.ThresholdOptions{Threshold: p.Threshold, Reporter: rep}
	if p.Key != "" {
		k, err := pee.ParseKey(p.Key)
		if err != nil {
			return opts, err
		}
		opts.Key = k
	}
	pr, err := p.predictor()
	opts.Predictor = pr
	return opts, err
}

func (p *Params) mirrorOptions(rep quality.Reporter) (pee.MirrorOptions, error) {
	if p.Key != "" {
		return pee.MirrorOptions{}, errors.New("the mirror scheme has no phase key")
	}
	pr, err := p.predictor()
	return pee.MirrorOptions{
		PayloadRate: p.PayloadRate,
		Threshold:   int(p.Threshold),
		Predictor:   pr,
		Reporter:    rep,
	}, err
}

// reporter collects the quality of the embed in flight and feeds the
// Prometheus metrics when configured.
func (s *Server) reporter(scheme string) (*quality.Collector, quality.Reporter) {
	c := &quality.Collector{}
	if s.metrics == nil {
		return c, c
	}
	return c, quality.Tee(c, s.metrics.Reporter(scheme))
}

func invalid(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

func (s *Server) Embed(_ context.Context, req *EmbedRequest) (*EmbedResponse, error) {
	secret, err := pee.ParseBits(req.Secret)
	if err != nil {
		return nil, invalid(err)
	}
	col, rep := s.reporter(req.Params.Scheme)

	var resp *EmbedResponse
	switch req.Params.Scheme {
	case SchemeThreshold:
		opts, err := req.Params.thresholdOptions(rep)
		if err != nil {
			return nil, invalid(err)
		}
		e, err := pee.NewThresholdEngine(opts)
		if err != nil {
			return nil, invalid(err)
		}
		resp = embedResponse(e.Embed(req.Samples, secret))
		resp.LastIndex = -1
	case SchemeCapacity:
		opts, err := req.Params.thresholdOptions(rep)
		if err != nil {
			return nil, invalid(err)
		}
		e, err := pee.NewCapacityEngine(opts)
		if err != nil {
			return nil, invalid(err)
		}
		out, err := e.Embed(req.Samples, secret)
		if err != nil {
			return nil, invalid(err)
		}
		resp = embedResponse(&out.Embedding)
		resp.LastIndex = out.LastIndex
		resp.Header = out.Header.String()
	case SchemeMirror:
		opts, err := req.Params.mirrorOptions(rep)
		if err != nil {
			return nil, invalid(err)
		}
		e, err := pee.NewMirrorEngine(opts)
		if err != nil {
			return nil, invalid(err)
		}
		out := e.Embed(req.Samples, secret)
		resp = embedResponse(&out.Embedding)
		resp.LastIndex = out.Header.Index
		resp.SideInfo = sideinfo.FromEmbedding(out)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown scheme %q", req.Params.Scheme)
	}
	if r, ok := col.Last(); ok {
		resp.Quality = qualityOf(r)
	}
	return resp, nil
}

func embedResponse(e *pee.Embedding) *EmbedResponse {
	return &EmbedResponse{
		Watermarked:   e.Watermarked,
		Embedded:      e.Embedded,
		Unhidden:      e.Unhidden,
		ElapsedMicros: e.Elapsed.Microseconds(),
	}
}

func (s *Server) Extract(_ context.Context, req *ExtractRequest) (*ExtractResponse, error) {
	var (
		samples []int64
		secret  pee.Bits
	)
	switch req.Params.Scheme {
	case SchemeThreshold:
		opts, err := req.Params.thresholdOptions(nil)
		if err != nil {
			return nil, invalid(err)
		}
		e, err := pee.NewThresholdEngine(opts)
		if err != nil {
			return nil, invalid(err)
		}
		samples, secret = e.Extract(req.Watermarked)
	case SchemeCapacity:
		opts, err := req.Params.thresholdOptions(nil)
		if err != nil {
			return nil, invalid(err)
		}
		e, err := pee.NewCapacityEngine(opts)
		if err != nil {
			return nil, invalid(err)
		}
		if samples, secret, err = e.Extract(req.Watermarked); err != nil {
			return nil, invalid(err)
		}
	case SchemeMirror:
		if req.SideInfo == nil {
			return nil, status.Error(codes.InvalidArgument, "mirror extraction needs side info")
		}
		opts, err := req.Params.mirrorOptions(nil)
		if err != nil {
			return nil, invalid(err)
		}
		e, err := pee.NewMirrorEngine(opts)
		if err != nil {
			return nil, invalid(err)
		}
		if samples, secret, err = e.Extract(req.Watermarked, req.SideInfo.Log, req.SideInfo.Header); err != nil {
			return nil, invalid(err)
		}
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown scheme %q", req.Params.Scheme)
	}
	return &ExtractResponse{Samples: samples, Secret: secret.String()}, nil
}

func (s *Server) Capacity(_ context.Context, req *CapacityRequest) (*CapacityResponse, error) {
	if req.Params.Scheme != SchemeThreshold {
		return nil, status.Errorf(codes.Unimplemented, "capacity probe for scheme %q", req.Params.Scheme)
	}
	opts, err := req.Params.thresholdOptions(nil)
	if err != nil {
		return nil, invalid(err)
	}
	e, err := pee.NewThresholdEngine(opts)
	if err != nil {
		return nil, invalid(err)
	}
	return &CapacityResponse{Capacity: e.Capacity(req.Samples)}, nil
}

func (s *Server) EmbedStream(stream grpc.ServerStream) error {
	recv := func() (*EmbedRequest, error) {
		req := new(EmbedRequest)
		if err := stream.RecvMsg(req); err != nil {
			return nil, err
		}
		return req, nil
	}
	send := func(resp *EmbedResponse) error { return stream.SendMsg(resp) }
	return s.serveStream(stream.Context(), recv, send)
}

func (s *Server) serveStream(ctx context.Context, recv func() (*EmbedRequest, error), send func(*EmbedResponse) error) error {
	for {
		req, err := recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		resp, err := s.Embed(ctx, req)
		if err != nil {
			return err
		}
		if err := send(resp); err != nil {
			return err
		}
	}
}
