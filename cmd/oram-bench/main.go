package main

// cmd/oram-bench drives a sqrtoram instance through a synthetic workload and
// reports timing and maintenance-cycle statistics, either as pretty text or
// JSON. An ORAM instance is an embedded library with no network surface, so
// this tool drives it in-process rather than polling a remote debug
// endpoint.
//
// Build-time flag: `-ldflags "-X main.version=vX.Y.Z"`.
//
// © 2025 sqrtoram authors. MIT License.

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	oram "github.com/Voskan/sqrtoram"
)

var version = "dev"

type options struct {
	n         int
	blockSize int
	ops       int
	seed      int64
	json      bool
	showVer   bool
}

func parseFlags() *options {
	o := &options{}
	flag.IntVar(&o.n, "n", 1024, "number of logical blocks")
	flag.IntVar(&o.blockSize, "block-size", 256, "payload bytes per block")
	flag.IntVar(&o.ops, "ops", 10000, "number of get/put operations to run")
	flag.Int64Var(&o.seed, "seed", 1, "PRNG seed for the workload's key sequence")
	flag.BoolVar(&o.json, "json", false, "emit JSON instead of text")
	flag.BoolVar(&o.showVer, "version", false, "print version and exit")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()
	if opts.showVer {
		fmt.Println(version)
		return
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "oram-bench:", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	reg := prometheus.NewRegistry()
	o, err := oram.New(opts.n, opts.blockSize, oram.WithMetrics(reg))
	if err != nil {
		return fmt.Errorf("oram.New: %w", err)
	}

	rng := rand.New(rand.NewSource(opts.seed))
	payload := make([]byte, opts.blockSize)

	start := time.Now()
	for i := 0; i < opts.ops; i++ {
		k := uint32(rng.Intn(opts.n))
		if i%3 == 0 {
			rng.Read(payload)
			if err := o.Put(k, payload); err != nil {
				return fmt.Errorf("Put(%d): %w", k, err)
			}
		} else if _, err := o.Get(k); err != nil {
			return fmt.Errorf("Get(%d): %w", k, err)
		}
	}
	elapsed := time.Since(start)

	result := summarize(reg, opts, elapsed)
	result.ShelterSize = o.ShelterSize()
	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printResult(result)
}

type summary struct {
	N                 int     `json:"n"`
	ShelterSize       int     `json:"shelter_size"`
	BlockSize         int     `json:"block_size"`
	Ops               int     `json:"ops"`
	ElapsedSeconds    float64 `json:"elapsed_seconds"`
	OpsPerSecond      float64 `json:"ops_per_second"`
	Accesses          float64 `json:"oram_accesses_total"`
	MaintenanceCycles float64 `json:"oram_maintenance_cycles_total"`
}

func summarize(reg *prometheus.Registry, opts *options, elapsed time.Duration) summary {
	families, _ := reg.Gather()
	lookup := make(map[string]float64, len(families))
	for _, fam := range families {
		lookup[fam.GetName()] = counterValue(fam)
	}
	return summary{
		N:                 opts.n,
		BlockSize:         opts.blockSize,
		Ops:               opts.ops,
		ElapsedSeconds:    elapsed.Seconds(),
		OpsPerSecond:      float64(opts.ops) / elapsed.Seconds(),
		Accesses:          lookup["oram_accesses_total"],
		MaintenanceCycles: lookup["oram_maintenance_cycles_total"],
	}
}

func counterValue(fam *dto.MetricFamily) float64 {
	var total float64
	for _, m := range fam.GetMetric() {
		if c := m.GetCounter(); c != nil {
			total += c.GetValue()
		}
	}
	return total
}

func printResult(s summary) error {
	fmt.Printf("n:                  %d\n", s.N)
	fmt.Printf("block size:         %d\n", s.BlockSize)
	fmt.Printf("ops:                %d\n", s.Ops)
	fmt.Printf("elapsed:            %.3fs\n", s.ElapsedSeconds)
	fmt.Printf("ops/sec:            %.1f\n", s.OpsPerSecond)
	fmt.Printf("accesses_total:     %.0f\n", s.Accesses)
	fmt.Printf("maintenance_cycles: %.0f\n", s.MaintenanceCycles)
	return nil
}
