package quant

import (
	"github.com/23skdu/longbow-bodkin/internal/parallel"
)

// CostPerElement is the work estimate handed to the pool for one quantized
// element: one float32 load, one divide+add+round, one uint8 store.
const CostPerElement = 4.0

// Params holds the derived quantization parameters for one tensor.
type Params struct {
	Scale     float32
	ZeroPoint uint8
}

// DeriveParams scans data once for its minimum and maximum, widens the
// range to include 0 so that 0.0 always maps to a representable integer,
// and derives the scale and zero-point for the target domain.
//
// Degenerate inputs are defined, not incidental: an empty buffer or one
// whose widened range collapses to a point (all zeros) yields Scale == 0
// and ZeroPoint == dom.Min, and Quantize emits ZeroPoint for every element.
func DeriveParams(data []float32, dom Domain) Params {
	if len(data) == 0 {
		return Params{Scale: 0, ZeroPoint: uint8(dom.Clamp(dom.Min))}
	}

	min, max := data[0], data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	// The observed range must always contain zero.
	if min > 0 {
		min = 0
	}
	if max < 0 {
		max = 0
	}

	scale := (max - min) / dom.Width()
	if scale == 0 {
		return Params{Scale: 0, ZeroPoint: uint8(dom.Clamp(dom.Min))}
	}

	zp := RoundHalfToEven(dom.Clamp(dom.Min - min/scale))
	return Params{Scale: scale, ZeroPoint: uint8(zp)}
}

// Quantize writes dst[i] = round_half_to_even(clamp(src[i]/scale + zp))
// for every i, fanning the index range out over the pool in contiguous
// disjoint chunks. The params are frozen before any chunk is dispatched,
// so partitioning cannot affect the output. The call returns only after
// every chunk has completed.
func Quantize(pool *parallel.Pool, src []float32, dst []uint8, p Params, dom Domain) {
	if len(src) != len(dst) {
		panic("quant: src and dst length mismatch")
	}
	if p.Scale == 0 {
		pool.For(len(src), CostPerElement, func(begin, end int) {
			for i := begin; i < end; i++ {
				dst[i] = p.ZeroPoint
			}
		})
		return
	}
	scale := p.Scale
	zp := float32(p.ZeroPoint)
	pool.For(len(src), CostPerElement, func(begin, end int) {
		for i := begin; i < end; i++ {
			dst[i] = uint8(RoundHalfToEven(dom.Clamp(src[i]/scale + zp)))
		}
	})
}

// Dequantize reconstructs the approximate original value of one element.
func Dequantize(q uint8, p Params) float32 {
	return (float32(q) - float32(p.ZeroPoint)) * p.Scale
}
