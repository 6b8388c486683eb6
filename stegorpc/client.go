package stegorpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a typed client for the service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) Embed(ctx context.Context, req *EmbedRequest, opts ...grpc.CallOption) (*EmbedResponse, error) {
	out := new(EmbedResponse)
	if err := c.cc.Invoke(ctx, methodEmbed, req, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Extract(ctx context.Context, req *ExtractRequest, opts ...grpc.CallOption) (*ExtractResponse, error) {
	out := new(ExtractResponse)
	if err := c.cc.Invoke(ctx, methodExtract, req, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Capacity(ctx context.Context, req *CapacityRequest, opts ...grpc.CallOption) (*CapacityResponse, error) {
	out := new(CapacityResponse)
	if err := c.cc.Invoke(ctx, methodCapacity, req, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// EmbedStream opens a bidirectional embed stream.
func (c *Client) EmbedStream(ctx context.Context, opts ...grpc.CallOption) (*EmbedStreamClient, error) {
	s, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], methodEmbedStream, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return &EmbedStreamClient{s: s}, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

// EmbedStreamClient is the client side of EmbedStream.
type EmbedStreamClient struct {
	s grpc.ClientStream
}

func (c *EmbedStreamClient) Send(req *EmbedRequest) error { return c.s.SendMsg(req) }

func (c *EmbedStreamClient) Recv() (*EmbedResponse, error) {
	out := new(EmbedResponse)
	if err := c.s.RecvMsg(out); err != nil {
		return nil, err
	}
	return out, nil
}

// CloseSend signals that no more requests follow.
func (c *EmbedStreamClient) CloseSend() error { return c.s.CloseSend() }
