// Package stegorpc serves the embedding engines over gRPC. Messages are
// JSON encoded with gojay under the "gojay" content-subtype, so no generated
// protobuf code is involved.
package stegorpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "pee.v1.Stego"

const (
	methodEmbed       = "/" + serviceName + "/Embed"
	methodExtract     = "/" + serviceName + "/Extract"
	methodCapacity    = "/" + serviceName + "/Capacity"
	methodEmbedStream = "/" + serviceName + "/EmbedStream"
)

// StegoServer is the server API of the service.
type StegoServer interface {
	Embed(context.Context, *EmbedRequest) (*EmbedResponse, error)
	Extract(context.Context, *ExtractRequest) (*ExtractResponse, error)
	Capacity(context.Context, *CapacityRequest) (*CapacityResponse, error)
	// EmbedStream answers every EmbedRequest on the stream with an
	// EmbedResponse until the client closes its side.
	EmbedStream(grpc.ServerStream) error
}

func unary[Req, Resp any](name, full string, call func(StegoServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StegoServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(StegoServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*StegoServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Embed", methodEmbed, StegoServer.Embed),
		unary("Extract", methodExtract, StegoServer.Extract),
		unary("Capacity", methodCapacity, StegoServer.Capacity),
	},
	Streams: []grpc.StreamDesc{{
		StreamName: "EmbedStream",
		Handler: func(srv any, stream grpc.ServerStream) error {
			return srv.(StegoServer).EmbedStream(stream)
		},
		ServerStreams: true,
		ClientStreams: true,
	}},
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv StegoServer) {
	s.RegisterService(&ServiceDesc, srv)
}
