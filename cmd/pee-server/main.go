package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/Observe-l/rdh-pee/quality"
	"github.com/Observe-l/rdh-pee/stegorpc"
)

func main() {
	var (
		addr        = flag.String("addr", ":50051", "gRPC listen address")
		metricsAddr = flag.String("metrics-addr", ":9090", "Prometheus /metrics address (empty = disabled)")
		maxMsgMB    = flag.Int("max-msg-mb", 64, "largest request accepted, in MiB")
	)
	flag.Parse()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := quality.NewPromMetrics(reg)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		fatalf("listen: %v", err)
	}
	grpcSrv := grpc.NewServer(
		grpc.MaxRecvMsgSize(*maxMsgMB<<20),
		grpc.MaxSendMsgSize(*maxMsgMB<<20),
	)
	stegorpc.Register(grpcSrv, stegorpc.NewServer(metrics))

	var httpSrv *http.Server
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		httpSrv = &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintln(os.Stderr, "metrics:", err)
			}
		}()
		fmt.Printf("metrics on %s/metrics\n", *metricsAddr)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		if httpSrv != nil {
			_ = httpSrv.Close()
		}
		grpcSrv.GracefulStop()
	}()

	fmt.Printf("pee gRPC listening on %s\n", *addr)
	if err := grpcSrv.Serve(ln); err != nil {
		fatalf("grpc serve: %v", err)
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}
