package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/23skdu/longbow-bodkin/internal/arrowio"
	"github.com/23skdu/longbow-bodkin/internal/config"
	"github.com/23skdu/longbow-bodkin/internal/flightio"
	"github.com/23skdu/longbow-bodkin/internal/logger"
	"github.com/23skdu/longbow-bodkin/internal/op"
	"github.com/23skdu/longbow-bodkin/internal/parallel"
	"github.com/23skdu/longbow-bodkin/internal/tensor"
)

var (
	inputPath   = flag.String("input", "", "Path to an Arrow IPC stream holding the float32 input tensor")
	ticket      = flag.String("ticket", "", "Arrow Flight ticket to fetch the input tensor instead of -input")
	outputPath  = flag.String("output", "", "Path to write the quantized Arrow IPC stream (default stdout)")
	workers     = flag.Int("workers", 0, "Worker goroutines for the quantize pass (0 = config/NumCPU)")
	metricsAddr = flag.String("metrics", "", "Address to serve Prometheus metrics (default from config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logger.Log.With("bodkin")

	if *inputPath == "" && *ticket == "" {
		fmt.Println("Error: one of -input or -ticket is required")
		flag.Usage()
		os.Exit(1)
	}
	if *workers == 0 {
		*workers = cfg.Workers
	}
	addr := cfg.MetricsAddr
	if *metricsAddr != "" {
		addr = *metricsAddr
	}

	// Start metrics server
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Info("metrics serving", "addr", addr+"/metrics")
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Warn("metrics server error", "error", err)
		}
	}()

	x, err := loadInput(cfg, log)
	if err != nil {
		log.Error("failed to load input tensor", "error", err)
		os.Exit(1)
	}
	log.Info("input tensor loaded", "name", x.Name(), "shape", x.Dims(), "elements", x.NumElements())

	kernel, err := op.Lookup("DynamicQuantizeLinear", 11)
	if err != nil {
		log.Error("kernel lookup failed", "error", err)
		os.Exit(1)
	}

	alloc := tensor.NewContext()
	pool := parallel.NewWithGrain(*workers, cfg.MinCostPerTask)

	start := time.Now()
	outs, err := kernel.Compute(op.NewKernelContext(alloc, pool, x))
	if err != nil {
		log.Error("quantization failed", "error", err)
		os.Exit(1)
	}
	y, yScale, yZeroPoint := outs[0], outs[1], outs[2]
	log.Info("quantized",
		"elements", y.NumElements(),
		"scale", yScale.Float32s()[0],
		"zero_point", yZeroPoint.Uint8s()[0],
		"duration", time.Since(start),
		"workers", pool.Workers())

	out := os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			log.Error("failed to create output file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := arrowio.WriteQuantized(out, y, yScale, yZeroPoint); err != nil {
		log.Error("failed to write output", "error", err)
		os.Exit(1)
	}
	if *outputPath != "" {
		log.Info("output written", "path", *outputPath)
	}
}

func loadInput(cfg config.Config, log *logger.Logger) (*tensor.Tensor, error) {
	if *ticket != "" {
		client, err := flightio.Dial(cfg.FlightAddr, cfg.FlightTimeout)
		if err != nil {
			return nil, err
		}
		defer client.Close()
		log.Info("fetching tensor over flight", "addr", cfg.FlightAddr, "ticket", *ticket)
		return client.Fetch(context.Background(), *ticket)
	}

	f, err := os.Open(*inputPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return arrowio.ReadFloat32(f, "X")
}
