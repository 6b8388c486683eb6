package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Observe-l/rdh-pee/internal/dataset"
	"github.com/Observe-l/rdh-pee/internal/sidewire"
	"github.com/Observe-l/rdh-pee/pee"
	"github.com/Observe-l/rdh-pee/quality"
)

func main() {
	var (
		dataPath    = flag.String("data", "", "CSV recording or directory of *.csv recordings (empty = synthetic ECG)")
		column      = flag.Int("column", 0, "zero-based CSV column holding the samples")
		headerRows  = flag.Int("header-rows", 0, "leading CSV rows to skip")
		scale       = flag.Float64("scale", dataset.DefaultScale, "multiplier applied to CSV samples")
		fs          = flag.Float64("fs", 360, "sampling frequency in Hz")
		seconds     = flag.Float64("seconds", 10, "batch duration in seconds")
		maxBatch    = flag.Int("max-batch", 10, "batches per recording (0 = all)")
		secretPath  = flag.String("secret", "", "file holding the secret bit string (empty = random)")
		secretBits  = flag.Int("secret-bits", 4000, "random secret length when -secret is empty")
		schemeList  = flag.String("schemes", "threshold,capacity,mirror", "comma-separated schemes to evaluate")
		threshold   = flag.Int64("threshold", pee.DefaultThreshold, "expansion threshold of the threshold schemes")
		key         = flag.String("key", "", "phase key such as 101 (empty = scheme default)")
		payloadRate = flag.Int("payload-rate", 1, "mirror base bits per sample")
		mirrorExtra = flag.Int("mirror-threshold", 0, "mirror extra bit width")
		workers     = flag.Int("workers", 4, "batches evaluated in parallel")
		fecScheme   = flag.String("sidefec", "raptorq", "side-info protection for mirror runs: rs|raptorq|none")
		fecK        = flag.Int("fec-k", 8, "side-info source symbols")
		fecR        = flag.Int("fec-r", 4, "side-info repair symbols")
		lossStr     = flag.String("loss", "0,0.05,0.1,0.2", "comma-separated side-info frame loss probabilities")
		trials      = flag.Int("trials", 200, "loss trials per probability")
		compress    = flag.Bool("compress", true, "zstd-compress sealed side info")
		outPath     = flag.String("out", "docs/reports/pee_eval_report.md", "output markdown report path")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus /metrics on this address while running")
		seed        = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	schemes, err := parseSchemes(*schemeList)
	if err != nil {
		fatalf("%v", err)
	}
	losses, err := parseLosses(*lossStr)
	if err != nil {
		fatalf("%v", err)
	}
	var k pee.Key
	if *key != "" {
		if k, err = pee.ParseKey(*key); err != nil {
			fatalf("%v", err)
		}
	}
	cfg := config{
		Schemes:     schemes,
		Threshold:   *threshold,
		Key:         k,
		PayloadRate: *payloadRate,
		MirrorExtra: *mirrorExtra,
		Losses:      losses,
		Trials:      *trials,
		Compress:    *compress,
		Seed:        *seed,
	}
	switch *fecScheme {
	case "rs":
		cfg.FEC = sidewire.SchemeRS
	case "raptorq":
		cfg.FEC = sidewire.SchemeRaptorQ
	case "none", "":
	default:
		fatalf("unknown side-info protection %q", *fecScheme)
	}
	cfg.FECK, cfg.FECR = *fecK, *fecR

	reg := prometheus.NewRegistry()
	cfg.Metrics = quality.NewPromMetrics(reg)
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintln(os.Stderr, "metrics:", err)
			}
		}()
		defer srv.Close()
	}

	recs, err := loadRecordings(*dataPath, dataset.CSVOptions{Column: *column, Scale: *scale, HeaderRows: *headerRows}, *fs, *seed)
	if err != nil {
		fatalf("load: %v", err)
	}
	var secret pee.Bits
	if *secretPath != "" {
		if secret, err = dataset.ReadSecret(*secretPath); err != nil {
			fatalf("secret: %v", err)
		}
	} else {
		secret = dataset.RandomSecret(*secretBits, *seed)
	}

	size := dataset.BatchLen(*seconds, *fs)
	var jobs []job
	for _, r := range recs {
		for b, batch := range dataset.Slice(r.samples, size, *maxBatch) {
			for _, s := range schemes {
				jobs = append(jobs, job{Record: r.name, Batch: b, Scheme: s, Samples: batch, Secret: secret})
			}
		}
	}
	if len(jobs) == 0 {
		fatalf("no batches to evaluate")
	}
	fmt.Printf("evaluating %d batches of %d samples (%d jobs)\n", len(jobs)/len(schemes), size, len(jobs))

	start := time.Now()
	results, err := evaluate(context.Background(), cfg, jobs, *workers)
	if err != nil {
		fatalf("%v", err)
	}

	if err := ensureDir(*outPath); err != nil {
		fatalf("%v", err)
	}
	ts := time.Now().Format("20060102_150405")
	base := strings.TrimSuffix(*outPath, ".md") + "_" + ts
	if err := writeJSON(base+".json", results); err != nil {
		fatalf("write json: %v", err)
	}
	if err := writeMarkdown(base+".md", cfg, results); err != nil {
		fatalf("write md: %v", err)
	}
	fmt.Printf("done in %v\nReport written: %s.md\nJSON: %s.json\n", time.Since(start).Round(time.Millisecond), base, base)

	for _, r := range results {
		if !r.OK {
			fatalf("round trip failed for %s batch %d (%s)", r.Record, r.Batch, r.Scheme)
		}
	}
}

type recording struct {
	name    string
	samples []int64
}

func loadRecordings(path string, opts dataset.CSVOptions, fs float64, seed int64) ([]recording, error) {
	if path == "" {
		return []recording{{
			name:    "synthetic",
			samples: dataset.Synthesize(dataset.SynthOptions{Samples: 650000, FS: fs, Noise: 0.01, Seed: seed}),
		}}, nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		s, err := dataset.LoadCSV(path, opts)
		if err != nil {
			return nil, err
		}
		return []recording{{name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), samples: s}}, nil
	}
	names, err := dataset.List(path, "csv")
	if err != nil {
		return nil, err
	}
	out := make([]recording, 0, len(names))
	for _, n := range names {
		s, err := dataset.LoadCSV(filepath.Join(path, n+".csv"), opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n, err)
		}
		out = append(out, recording{name: n, samples: s})
	}
	return out, nil
}

func parseSchemes(s string) ([]string, error) {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		switch p {
		case "":
			continue
		case schemeThreshold, schemeCapacity, schemeMirror:
			out = append(out, p)
		default:
			return nil, fmt.Errorf("unknown scheme %q", p)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no schemes selected")
	}
	return out, nil
}

func parseLosses(s string) ([]float64, error) {
	var out []float64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		var v float64
		if _, err := fmt.Sscanf(p, "%f", &v); err != nil {
			return nil, fmt.Errorf("bad loss %q: %w", p, err)
		}
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("invalid loss %.4f", v)
		}
		out = append(out, v)
	}
	return out, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}
