package stegorpc

import (
	"context"
	"io"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Observe-l/rdh-pee/pee"
	"github.com/Observe-l/rdh-pee/quality"
	"github.com/Observe-l/rdh-pee/sideinfo"
)

var scenario = []int64{10, 12, 11, 13, 15, 14, 16, 18, 17, 19, 21, 20}

func tripled() []int64 {
	out := make([]int64, 0, 3*len(scenario))
	for i := 0; i < 3; i++ {
		out = append(out, scenario...)
	}
	return out
}

// dial starts a server on an in-memory listener and returns a client for it.
func dial(t *testing.T, reg prometheus.Registerer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	var m *quality.PromMetrics
	if reg != nil {
		m = quality.NewPromMetrics(reg)
	}
	Register(srv, NewServer(m))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

func TestThresholdOverRPC(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := dial(t, reg)
	ctx := context.Background()
	p := Params{Scheme: SchemeThreshold, Threshold: 4, Key: "111"}

	emb, err := c.Embed(ctx, &EmbedRequest{Params: p, Samples: scenario, Secret: "1011"})
	require.NoError(t, err)
	require.Equal(t, []int64{10, 12, 11, 15, 16, 12, 16, 20, 17, 19, 21, 20}, emb.Watermarked)
	require.Equal(t, 4, emb.Embedded)
	require.Zero(t, emb.Unhidden)
	require.Equal(t, -1, emb.LastIndex)
	require.Nil(t, emb.SideInfo)
	require.InDelta(t, quality.PRD(scenario, emb.Watermarked), emb.Quality.PRD, 1e-9)

	ext, err := c.Extract(ctx, &ExtractRequest{Params: p, Watermarked: emb.Watermarked})
	require.NoError(t, err)
	require.Equal(t, scenario, ext.Samples)
	require.Equal(t, "10110000", ext.Secret)

	capResp, err := c.Capacity(ctx, &CapacityRequest{Params: p, Samples: scenario})
	require.NoError(t, err)
	require.Equal(t, 8, capResp.Capacity)

	n, err := testutil.GatherAndCount(reg, "pee_embeds_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCapacityOverRPC(t *testing.T) {
	c := dial(t, nil)
	ctx := context.Background()
	p := Params{Scheme: SchemeCapacity, Threshold: 4, Key: "100"}

	emb, err := c.Embed(ctx, &EmbedRequest{Params: p, Samples: tripled(), Secret: "101101"})
	require.NoError(t, err)
	require.Equal(t, 18, emb.LastIndex)
	require.Equal(t, "010010", emb.Header)

	ext, err := c.Extract(ctx, &ExtractRequest{Params: p, Watermarked: emb.Watermarked})
	require.NoError(t, err)
	require.Equal(t, tripled(), ext.Samples)
	require.Equal(t, "101101", ext.Secret)

	_, err = c.Embed(ctx, &EmbedRequest{Params: p, Samples: scenario, Secret: "1011"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestMirrorOverRPC(t *testing.T) {
	c := dial(t, nil)
	ctx := context.Background()
	p := Params{Scheme: SchemeMirror, PayloadRate: 1, Threshold: 1}

	emb, err := c.Embed(ctx, &EmbedRequest{Params: p, Samples: tripled(), Secret: "101101"})
	require.NoError(t, err)
	require.NotNil(t, emb.SideInfo)
	require.Equal(t, pee.DiffLog{-1, 0, -1, 0}, emb.SideInfo.Log)
	require.Equal(t, pee.ResumeHeader{Phase: 1, Index: 21, BitWidth: 2}, emb.SideInfo.Header)
	require.Equal(t, 21, emb.LastIndex)

	ext, err := c.Extract(ctx, &ExtractRequest{Params: p, Watermarked: emb.Watermarked, SideInfo: emb.SideInfo})
	require.NoError(t, err)
	require.Equal(t, tripled(), ext.Samples)
	require.Equal(t, "101101", ext.Secret)

	_, err = c.Extract(ctx, &ExtractRequest{Params: p, Watermarked: emb.Watermarked})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	bad := &sideinfo.SideInfo{Header: pee.ResumeHeader{Phase: 1, Index: 21, BitWidth: 2}, Log: pee.DiffLog{-1, 0, -1, 0, 7}}
	_, err = c.Extract(ctx, &ExtractRequest{Params: p, Watermarked: emb.Watermarked, SideInfo: bad})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRejectsBadParams(t *testing.T) {
	c := dial(t, nil)
	ctx := context.Background()
	for _, req := range []*EmbedRequest{
		{Params: Params{Scheme: "nope"}, Samples: scenario},
		{Params: Params{Scheme: SchemeThreshold}, Samples: scenario, Secret: "10x"},
		{Params: Params{Scheme: SchemeThreshold, Key: "1111"}, Samples: scenario},
		{Params: Params{Scheme: SchemeThreshold, Weights: []float64{1, 2}}, Samples: scenario},
		{Params: Params{Scheme: SchemeMirror, Key: "100"}, Samples: scenario},
		{Params: Params{Scheme: SchemeMirror, PayloadRate: -2}, Samples: scenario},
	} {
		_, err := c.Embed(ctx, req)
		require.Equal(t, codes.InvalidArgument, status.Code(err), "%+v", req.Params)
	}
	_, err := c.Capacity(ctx, &CapacityRequest{Params: Params{Scheme: SchemeMirror}})
	require.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestLinearPredictorParams(t *testing.T) {
	c := dial(t, nil)
	ctx := context.Background()
	p := Params{Scheme: SchemeThreshold, Weights: []float64{0.25, 0.25, 0.25, 0.25}, Bias: 0.5}

	emb, err := c.Embed(ctx, &EmbedRequest{Params: p, Samples: tripled(), Secret: "110011"})
	require.NoError(t, err)
	ext, err := c.Extract(ctx, &ExtractRequest{Params: p, Watermarked: emb.Watermarked})
	require.NoError(t, err)
	require.Equal(t, tripled(), ext.Samples)
	require.Positive(t, emb.Embedded)
	require.Equal(t, "110011"[:emb.Embedded], ext.Secret[:emb.Embedded])
}

func TestEmbedStream(t *testing.T) {
	c := dial(t, nil)
	s, err := c.EmbedStream(context.Background())
	require.NoError(t, err)

	secrets := []string{"1", "10", "101"}
	for _, sec := range secrets {
		require.NoError(t, s.Send(&EmbedRequest{Params: Params{Scheme: SchemeThreshold}, Samples: scenario, Secret: sec}))
	}
	require.NoError(t, s.CloseSend())
	for _, sec := range secrets {
		resp, err := s.Recv()
		require.NoError(t, err)
		require.Equal(t, len(sec), resp.Embedded)
	}
	_, err = s.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestCodecRejectsForeignTypes(t *testing.T) {
	_, err := codec{}.Marshal(42)
	require.Error(t, err)
	require.Error(t, codec{}.Unmarshal([]byte("{}"), new(int)))

	b, err := codec{}.Marshal(&EmbedRequest{Params: Params{Scheme: SchemeMirror, PayloadRate: 2}, Samples: []int64{1, -2}, Secret: "01"})
	require.NoError(t, err)
	var got EmbedRequest
	require.NoError(t, codec{}.Unmarshal(b, &got))
	require.Equal(t, SchemeMirror, got.Params.Scheme)
	require.Equal(t, 2, got.Params.PayloadRate)
	require.Equal(t, []int64{1, -2}, got.Samples)
	require.Equal(t, "01", got.Secret)
}
