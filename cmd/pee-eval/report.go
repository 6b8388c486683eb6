package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Observe-l/rdh-pee/internal/sidewire"
)

func writeJSON(path string, results []result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Records []result `json:"records"`
	}{Records: sanitize(results)})
}

// sanitize replaces non-finite figures, which encoding/json rejects.
func sanitize(results []result) []result {
	out := make([]result, len(results))
	for i, r := range results {
		for _, v := range []*float64{&r.PRD, &r.NCC, &r.SNR, &r.PSNR} {
			if math.IsNaN(*v) || math.IsInf(*v, 0) {
				*v = 0
			}
		}
		out[i] = r
	}
	return out
}

type summary struct {
	Batches  int
	OK       int
	Embedded int
	Unhidden int
	BPS      float64
	PRD      float64
	NCC      float64
	SNR      float64
	PSNR     float64
	EmbedUS  int64
}

func summarize(results []result) map[string]*summary {
	out := make(map[string]*summary)
	finite := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}
	for _, r := range results {
		s := out[r.Scheme]
		if s == nil {
			s = &summary{}
			out[r.Scheme] = s
		}
		s.Batches++
		if r.OK {
			s.OK++
		}
		s.Embedded += r.Embedded
		s.Unhidden += r.Unhidden
		s.BPS += r.BPS
		s.PRD += finite(r.PRD)
		s.NCC += finite(r.NCC)
		s.SNR += finite(r.SNR)
		s.PSNR += finite(r.PSNR)
		s.EmbedUS += r.EmbedUS
	}
	for _, s := range out {
		n := float64(s.Batches)
		s.BPS /= n
		s.PRD /= n
		s.NCC /= n
		s.SNR /= n
		s.PSNR /= n
	}
	return out
}

func writeMarkdown(path string, cfg config, results []result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return renderMarkdown(f, cfg, results)
}

func renderMarkdown(w io.Writer, cfg config, results []result) error {
	fmt.Fprintf(w, "# PEE Evaluation Report\n\n")
	fmt.Fprintf(w, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Threshold T=%d, key=%s, payload rate=%d, mirror extra width=%d\n\n",
		cfg.Threshold, keyLabel(cfg), cfg.PayloadRate, cfg.MirrorExtra)

	sums := summarize(results)
	schemes := make([]string, 0, len(sums))
	for s := range sums {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Scheme | Batches | Restored | Embedded | Unhidden | bps | PRD (%%) | NCC | SNR (dB) | PSNR (dB) | Embed (ms) |\n")
	fmt.Fprintf(w, "|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, name := range schemes {
		s := sums[name]
		fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %.4f | %.4f | %.6f | %.2f | %.2f | %.3f |\n",
			strings.ToUpper(name), s.Batches, s.OK, s.Embedded, s.Unhidden, s.BPS,
			s.PRD, s.NCC, s.SNR, s.PSNR, float64(s.EmbedUS)/1000)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "## Batches\n\n")
	fmt.Fprintf(w, "| Record | Batch | Scheme | Samples | Embedded | Unhidden | Outliers | PRD (%%) | SNR (dB) | OK |\n")
	fmt.Fprintf(w, "|---|---:|---|---:|---:|---:|---:|---:|---:|---|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %d | %s | %d | %d | %d | %d | %.4f | %.2f | %v |\n",
			r.Record, r.Batch, r.Scheme, r.Samples, r.Embedded, r.Unhidden, r.Outliers, r.PRD, r.SNR, r.OK)
	}
	fmt.Fprintf(w, "\n")

	if cfg.FEC == 0 || len(cfg.Losses) == 0 {
		return nil
	}
	name := "RS"
	if cfg.FEC == sidewire.SchemeRaptorQ {
		name = "RaptorQ"
	}
	fmt.Fprintf(w, "## Side-info recovery (%s, K=%d, R=%d)\n\n", name, cfg.FECK, cfg.FECR)
	fmt.Fprintf(w, "| Loss | Trials | Recovered (%%) |\n")
	fmt.Fprintf(w, "|---:|---:|---:|\n")
	for i, p := range cfg.Losses {
		var trials, ok int
		for _, r := range results {
			if i < len(r.Loss) {
				trials += r.Loss[i].Trials
				ok += r.Loss[i].Recovered
			}
		}
		if trials == 0 {
			continue
		}
		fmt.Fprintf(w, "| %.3f | %d | %.2f |\n", p, trials, 100*float64(ok)/float64(trials))
	}
	_, err := fmt.Fprintf(w, "\n")
	return err
}

func keyLabel(cfg config) string {
	if cfg.Key == 0 {
		return "default"
	}
	return cfg.Key.String()
}
