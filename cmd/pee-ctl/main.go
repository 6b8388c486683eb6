package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Observe-l/rdh-pee/internal/dataset"
	"github.com/Observe-l/rdh-pee/sideinfo"
	"github.com/Observe-l/rdh-pee/stegorpc"
)

func main() {
	var (
		addr        = flag.String("addr", "127.0.0.1:50051", "pee gRPC address")
		cmd         = flag.String("cmd", "embed", "command: embed|extract|capacity")
		scheme      = flag.String("scheme", stegorpc.SchemeThreshold, "threshold|capacity|mirror")
		threshold   = flag.Int64("threshold", 0, "expansion threshold, or mirror extra bit width (0 = default)")
		key         = flag.String("key", "", "phase key such as 101")
		payloadRate = flag.Int("payload-rate", 0, "mirror base bits per sample (0 = default)")
		in          = flag.String("in", "", "input CSV: the cover signal for embed/capacity, the watermarked signal for extract")
		column      = flag.Int("column", 0, "zero-based CSV column")
		scale       = flag.Float64("scale", 1, "multiplier applied to input samples")
		secret      = flag.String("secret", "", "secret bit string")
		secretFile  = flag.String("secret-file", "", "file holding the secret bit string")
		out         = flag.String("out", "", "output CSV (empty = stdout)")
		sidePath    = flag.String("side", "side.bin", "sealed side-info file for the mirror scheme")
		compress    = flag.Bool("compress", true, "zstd-compress sealed side info")
		timeout     = flag.Duration("timeout", 30*time.Second, "call timeout")
	)
	flag.Parse()

	if *in == "" {
		fatalf("-in is required")
	}
	samples, err := dataset.LoadCSV(*in, dataset.CSVOptions{Column: *column, Scale: *scale})
	if err != nil {
		fatalf("read %s: %v", *in, err)
	}

	conn, err := grpc.Dial(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := stegorpc.NewClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	params := stegorpc.Params{Scheme: *scheme, Threshold: *threshold, Key: *key, PayloadRate: *payloadRate}

	switch *cmd {
	case "embed":
		bits := *secret
		if *secretFile != "" {
			b, err := dataset.ReadSecret(*secretFile)
			if err != nil {
				fatalf("secret: %v", err)
			}
			bits = b.String()
		}
		resp, err := client.Embed(ctx, &stegorpc.EmbedRequest{Params: params, Samples: samples, Secret: bits})
		if err != nil {
			fatalf("embed: %v", err)
		}
		if err := writeSamples(*out, resp.Watermarked); err != nil {
			fatalf("write: %v", err)
		}
		if resp.SideInfo != nil {
			sealed, err := sideinfo.Seal(resp.SideInfo, *compress)
			if err != nil {
				fatalf("seal: %v", err)
			}
			if err := os.WriteFile(*sidePath, sealed, 0o644); err != nil {
				fatalf("write side info: %v", err)
			}
			fmt.Fprintf(os.Stderr, "side info: %s (%d bytes)\n", *sidePath, len(sealed))
		}
		fmt.Fprintf(os.Stderr, "embedded=%d unhidden=%d last_index=%d header=%q PRD=%.4f%% SNR=%.2fdB PSNR=%.2fdB took=%dus\n",
			resp.Embedded, resp.Unhidden, resp.LastIndex, resp.Header,
			resp.Quality.PRD, resp.Quality.SNR, resp.Quality.PSNR, resp.ElapsedMicros)
	case "extract":
		req := &stegorpc.ExtractRequest{Params: params, Watermarked: samples}
		if *scheme == stegorpc.SchemeMirror {
			b, err := os.ReadFile(*sidePath)
			if err != nil {
				fatalf("read side info: %v", err)
			}
			if req.SideInfo, err = sideinfo.Open(b); err != nil {
				fatalf("open side info: %v", err)
			}
		}
		resp, err := client.Extract(ctx, req)
		if err != nil {
			fatalf("extract: %v", err)
		}
		if err := writeSamples(*out, resp.Samples); err != nil {
			fatalf("write: %v", err)
		}
		fmt.Fprintln(os.Stderr, "secret:", resp.Secret)
	case "capacity":
		resp, err := client.Capacity(ctx, &stegorpc.CapacityRequest{Params: params, Samples: samples})
		if err != nil {
			fatalf("capacity: %v", err)
		}
		fmt.Println(resp.Capacity)
	default:
		fatalf("unknown cmd %q", *cmd)
	}
}

func writeSamples(path string, s []int64) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return dataset.WriteCSV(w, s)
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}
