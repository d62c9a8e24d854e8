package op

import (
	"errors"
	"fmt"
	"time"

	"github.com/23skdu/longbow-bodkin/internal/metrics"
	"github.com/23skdu/longbow-bodkin/internal/quant"
	"github.com/23skdu/longbow-bodkin/internal/tensor"
)

func init() {
	Register("DynamicQuantizeLinear", 11, func() Kernel {
		return &DynamicQuantizeLinear{dom: quant.Uint8Domain()}
	})
}

// DynamicQuantizeLinear quantizes a float32 tensor X to uint8, deriving
// the scale and zero-point from X's own value range. Outputs:
//
//	Y            same shape as X, uint8
//	Y_scale      rank-0 float32
//	Y_zero_point rank-0 uint8
//
// Scale and zero-point are frozen before the first output element is
// written; every element is quantized with the same pair.
type DynamicQuantizeLinear struct {
	dom quant.Domain
}

func (k *DynamicQuantizeLinear) Compute(ctx *KernelContext) ([]*tensor.Tensor, error) {
	x := ctx.Input(0)
	if x == nil {
		metrics.RecordValidationError("DynamicQuantizeLinear", "missing_input")
		return nil, errors.New("DynamicQuantizeLinear: input tensor X is nil")
	}
	if x.DType() != tensor.Float32 {
		metrics.RecordValidationError("DynamicQuantizeLinear", "dtype_mismatch")
		return nil, fmt.Errorf("DynamicQuantizeLinear: input X must be float32, got %s", x.DType())
	}

	start := time.Now()
	data := x.Float32s()
	params := quant.DeriveParams(data, k.dom)

	y := ctx.Alloc().NewTensor("Y", x.Dims(), tensor.Uint8)
	yScale := ctx.Alloc().NewTensor("Y_scale", nil, tensor.Float32)
	yZeroPoint := ctx.Alloc().NewTensor("Y_zero_point", nil, tensor.Uint8)
	yScale.Float32s()[0] = params.Scale
	yZeroPoint.Uint8s()[0] = params.ZeroPoint

	quant.Quantize(ctx.Pool(), data, y.Uint8s(), params, k.dom)

	metrics.RecordQuantize(len(data), params.Scale, time.Since(start))
	return []*tensor.Tensor{y, yScale, yZeroPoint}, nil
}
