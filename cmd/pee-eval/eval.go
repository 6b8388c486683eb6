package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Observe-l/rdh-pee/internal/sidefec"
	"github.com/Observe-l/rdh-pee/pee"
	"github.com/Observe-l/rdh-pee/quality"
	"github.com/Observe-l/rdh-pee/sideinfo"
)

const (
	schemeThreshold = "threshold"
	schemeCapacity  = "capacity"
	schemeMirror    = "mirror"
)

type config struct {
	Schemes     []string
	Threshold   int64
	Key         pee.Key // zero selects each engine's default
	PayloadRate int
	MirrorExtra int

	// FEC is the side-info protection scheme; zero disables the loss runs.
	FEC        uint8
	FECK, FECR int
	Losses     []float64
	Trials     int
	Compress   bool

	Metrics *quality.PromMetrics
	Seed    int64
}

type job struct {
	Record  string
	Batch   int
	Scheme  string
	Samples []int64
	Secret  pee.Bits
}

type lossResult struct {
	Loss      float64 `json:"loss"`
	Trials    int     `json:"trials"`
	Recovered int     `json:"recovered"`
}

type result struct {
	Record    string  `json:"record"`
	Batch     int     `json:"batch"`
	Scheme    string  `json:"scheme"`
	Samples   int     `json:"samples"`
	Embedded  int     `json:"embedded"`
	Unhidden  int     `json:"unhidden"`
	BPS       float64 `json:"bits_per_sample"`
	PRD       float64 `json:"prd"`
	NCC       float64 `json:"ncc"`
	SNR       float64 `json:"snr"`
	PSNR      float64 `json:"psnr"`
	EmbedUS   int64   `json:"embed_us"`
	ExtractUS int64   `json:"extract_us"`
	// Outliers counts errors left unexpanded: |e| >= T for the threshold
	// schemes, |e| <= 1 for mirror.
	Outliers int  `json:"outliers"`
	OK       bool `json:"ok"`
	// SideInfoBytes is the sealed side-info size of a mirror run.
	SideInfoBytes int          `json:"side_info_bytes,omitempty"`
	Loss          []lossResult `json:"loss,omitempty"`
}

// evaluate runs every job, at most workers at a time, and returns results in
// job order.
func evaluate(ctx context.Context, cfg config, jobs []job, workers int) ([]result, error) {
	out := make([]result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range jobs {
		i := i // per-iteration copy (go directive is 1.21)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := runJob(cfg, jobs[i], int64(i))
			if err != nil {
				return fmt.Errorf("%s batch %d (%s): %w", jobs[i].Record, jobs[i].Batch, jobs[i].Scheme, err)
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (cfg config) reporter(scheme string) (*quality.Collector, quality.Reporter) {
	c := &quality.Collector{}
	if cfg.Metrics == nil {
		return c, c
	}
	return c, quality.Tee(c, cfg.Metrics.Reporter(scheme))
}

func runJob(cfg config, j job, salt int64) (result, error) {
	col, rep := cfg.reporter(j.Scheme)
	r := result{Record: j.Record, Batch: j.Batch, Scheme: j.Scheme, Samples: len(j.Samples)}

	var (
		emb     *pee.Embedding
		orig    []int64
		secret  pee.Bits
		extract time.Duration
	)
	switch j.Scheme {
	case schemeThreshold, schemeCapacity:
		opts := pee.ThresholdOptions{Threshold: cfg.Threshold, Key: cfg.Key, Reporter: rep}
		if j.Scheme == schemeThreshold {
			e, err := pee.NewThresholdEngine(opts)
			if err != nil {
				return r, err
			}
			emb = e.Embed(j.Samples, j.Secret)
			t0 := time.Now()
			orig, secret = e.Extract(emb.Watermarked)
			extract = time.Since(t0)
		} else {
			e, err := pee.NewCapacityEngine(opts)
			if err != nil {
				return r, err
			}
			ce, err := e.Embed(j.Samples, j.Secret)
			if err != nil {
				return r, err
			}
			emb = &ce.Embedding
			t0 := time.Now()
			if orig, secret, err = e.Extract(emb.Watermarked); err != nil {
				return r, err
			}
			extract = time.Since(t0)
		}
		r.Outliers = quality.CountAbove(emb.Errors, cfg.Threshold-1)
	case schemeMirror:
		e, err := pee.NewMirrorEngine(pee.MirrorOptions{PayloadRate: cfg.PayloadRate, Threshold: cfg.MirrorExtra, Reporter: rep})
		if err != nil {
			return r, err
		}
		me := e.Embed(j.Samples, j.Secret)
		emb = &me.Embedding
		t0 := time.Now()
		if orig, secret, err = e.Extract(me.Watermarked, me.Log, me.Header); err != nil {
			return r, err
		}
		extract = time.Since(t0)
		r.Outliers = quality.CountAtMost(emb.Errors, 1)
		if err := lossRuns(cfg, sideinfo.FromEmbedding(me), &r, salt); err != nil {
			return r, err
		}
	default:
		return r, fmt.Errorf("unknown scheme %q", j.Scheme)
	}

	r.Embedded, r.Unhidden = emb.Embedded, emb.Unhidden
	if r.Samples > 0 {
		r.BPS = float64(r.Embedded) / float64(r.Samples)
	}
	if q, ok := col.Last(); ok {
		r.PRD, r.NCC, r.SNR, r.PSNR = q.PRD, q.NCC, q.SNR, q.PSNR
	}
	r.EmbedUS = emb.Elapsed.Microseconds()
	r.ExtractUS = extract.Microseconds()
	r.OK = slices.Equal(orig, j.Samples) &&
		len(secret) >= r.Embedded &&
		pee.FirstDifference(j.Secret[:r.Embedded], secret[:r.Embedded]) == -1
	return r, nil
}

// lossRuns seals and protects the side info, then measures how often it
// survives a lossy channel.
func lossRuns(cfg config, si *sideinfo.SideInfo, r *result, salt int64) error {
	sealed, err := sideinfo.Seal(si, cfg.Compress)
	if err != nil {
		return err
	}
	r.SideInfoBytes = len(sealed)
	if cfg.FEC == 0 {
		return nil
	}
	frames, err := sidefec.Protect(sealed, sidefec.Params{Scheme: cfg.FEC, K: cfg.FECK, R: cfg.FECR})
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(cfg.Seed + salt))
	for _, p := range cfg.Losses {
		lr := lossResult{Loss: p, Trials: cfg.Trials}
		ch := sidefec.NewBernoulli(p, rng)
		for t := 0; t < cfg.Trials; t++ {
			blob, err := sidefec.Recover(ch.Filter(frames))
			if err != nil || !bytes.Equal(blob, sealed) {
				continue
			}
			got, err := sideinfo.Open(blob)
			if err != nil || got.Header != si.Header || !slices.Equal(got.Log, si.Log) {
				continue
			}
			lr.Recovered++
		}
		r.Loss = append(r.Loss, lr)
	}
	return nil
}
