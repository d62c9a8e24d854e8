package main

import (
	"flag"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/23skdu/longbow-bodkin/internal/parallel"
	"github.com/23skdu/longbow-bodkin/internal/quant"
)

var (
	numElements = flag.Int("n", 1<<22, "Number of float32 elements to quantize")
	iterations  = flag.Int("iters", 20, "Iterations per worker count")
	seed        = flag.Int64("seed", 42, "RNG seed for the synthetic buffer")
)

func main() {
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	src := make([]float32, *numElements)
	for i := range src {
		src[i] = rng.Float32()*20 - 10
	}
	dst := make([]uint8, *numElements)

	dom := quant.Uint8Domain()
	params := quant.DeriveParams(src, dom)
	fmt.Printf("Buffer: %d elements, scale=%g zero_point=%d\n", *numElements, params.Scale, params.ZeroPoint)

	for _, workers := range []int{1, runtime.NumCPU()} {
		pool := parallel.New(workers)
		start := time.Now()
		for i := 0; i < *iterations; i++ {
			quant.Quantize(pool, src, dst, params, dom)
		}
		elapsed := time.Since(start)
		perIter := elapsed / time.Duration(*iterations)
		melems := float64(*numElements) / perIter.Seconds() / 1e6
		fmt.Printf("workers=%-3d %v/iter (%.2f Melem/s)\n", workers, perIter, melems)
	}
}
