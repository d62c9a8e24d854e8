package op

import (
	"testing"

	"github.com/23skdu/longbow-bodkin/internal/parallel"
	"github.com/23skdu/longbow-bodkin/internal/tensor"
)

func newTestContext(inputs ...*tensor.Tensor) *KernelContext {
	return NewKernelContext(tensor.NewContext(), parallel.New(4), inputs...)
}

func mustKernel(t *testing.T) Kernel {
	t.Helper()
	k, err := Lookup("DynamicQuantizeLinear", 11)
	if err != nil {
		t.Fatalf("kernel lookup failed: %v", err)
	}
	return k
}

func TestDynamicQuantizeLinearKnownRange(t *testing.T) {
	x, err := tensor.NewFloat32("X", []int{2, 2}, []float32{0.0, 2.0, -1.0, 1.0})
	if err != nil {
		t.Fatal(err)
	}

	outs, err := mustKernel(t).Compute(newTestContext(x))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(outs) != 3 {
		t.Fatalf("got %d outputs, want 3", len(outs))
	}
	y, yScale, yZeroPoint := outs[0], outs[1], outs[2]

	if dims := y.Dims(); len(dims) != 2 || dims[0] != 2 || dims[1] != 2 {
		t.Errorf("Y dims = %v, want [2 2]", dims)
	}
	if y.DType() != tensor.Uint8 {
		t.Errorf("Y dtype = %s, want uint8", y.DType())
	}
	if len(yScale.Dims()) != 0 || yScale.NumElements() != 1 {
		t.Errorf("Y_scale must be rank-0 scalar, got dims %v", yScale.Dims())
	}
	if len(yZeroPoint.Dims()) != 0 || yZeroPoint.NumElements() != 1 {
		t.Errorf("Y_zero_point must be rank-0 scalar, got dims %v", yZeroPoint.Dims())
	}

	if scale := yScale.Float32s()[0]; scale != float32(3.0)/255.0 {
		t.Errorf("Y_scale = %v, want %v", scale, float32(3.0)/255.0)
	}
	if zp := yZeroPoint.Uint8s()[0]; zp != 85 {
		t.Errorf("Y_zero_point = %d, want 85", zp)
	}
	want := []uint8{85, 255, 0, 170}
	for i, w := range want {
		if got := y.Uint8s()[i]; got != w {
			t.Errorf("Y[%d] = %d, want %d", i, got, w)
		}
	}
}

func TestDynamicQuantizeLinearNilInput(t *testing.T) {
	if _, err := mustKernel(t).Compute(newTestContext()); err == nil {
		t.Fatal("expected error for missing input tensor")
	}
}

func TestDynamicQuantizeLinearWrongDType(t *testing.T) {
	x, err := tensor.NewUint8("X", []int{2}, []uint8{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mustKernel(t).Compute(newTestContext(x)); err == nil {
		t.Fatal("expected error for non-float32 input")
	}
}

func TestDynamicQuantizeLinearAllZeros(t *testing.T) {
	x, err := tensor.NewFloat32("X", []int{3}, []float32{0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}

	outs, err := mustKernel(t).Compute(newTestContext(x))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if scale := outs[1].Float32s()[0]; scale != 0 {
		t.Errorf("Y_scale = %v, want 0", scale)
	}
	zp := outs[2].Uint8s()[0]
	for i, v := range outs[0].Uint8s() {
		if v != zp {
			t.Errorf("Y[%d] = %d, want zero point %d", i, v, zp)
		}
	}
}

func TestDynamicQuantizeLinearDeterministicAcrossPools(t *testing.T) {
	const n = 200000
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i%4099)*0.013 - 26.0
	}
	x, err := tensor.NewFloat32("X", []int{n}, data)
	if err != nil {
		t.Fatal(err)
	}
	k := mustKernel(t)

	single, err := k.Compute(NewKernelContext(tensor.NewContext(), parallel.New(1), x))
	if err != nil {
		t.Fatal(err)
	}
	fanned, err := k.Compute(NewKernelContext(tensor.NewContext(), parallel.NewWithGrain(8, 1), x))
	if err != nil {
		t.Fatal(err)
	}

	if single[1].Float32s()[0] != fanned[1].Float32s()[0] {
		t.Fatalf("scale differs: %v vs %v", single[1].Float32s()[0], fanned[1].Float32s()[0])
	}
	if single[2].Uint8s()[0] != fanned[2].Uint8s()[0] {
		t.Fatalf("zero point differs: %d vs %d", single[2].Uint8s()[0], fanned[2].Uint8s()[0])
	}
	a, b := single[0].Uint8s(), fanned[0].Uint8s()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Y[%d] differs across partitionings: %d vs %d", i, a[i], b[i])
		}
	}
}
