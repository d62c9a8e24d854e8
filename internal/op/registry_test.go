package op

import (
	"strings"
	"testing"

	"github.com/23skdu/longbow-bodkin/internal/tensor"
)

type fakeKernel struct {
	since int
}

func (f *fakeKernel) Compute(ctx *KernelContext) ([]*tensor.Tensor, error) {
	return nil, nil
}

func TestLookupPicksHighestVersionAtOrBelowOpset(t *testing.T) {
	Register("FakeOp", 1, func() Kernel { return &fakeKernel{since: 1} })
	Register("FakeOp", 13, func() Kernel { return &fakeKernel{since: 13} })

	tests := []struct {
		opset     int
		wantSince int
	}{
		{1, 1},
		{11, 1},
		{12, 1},
		{13, 13},
		{20, 13},
	}
	for _, tt := range tests {
		k, err := Lookup("FakeOp", tt.opset)
		if err != nil {
			t.Fatalf("Lookup(FakeOp, %d) failed: %v", tt.opset, err)
		}
		if got := k.(*fakeKernel).since; got != tt.wantSince {
			t.Errorf("Lookup(FakeOp, %d) resolved since=%d, want %d", tt.opset, got, tt.wantSince)
		}
	}
}

func TestLookupUnknownOperator(t *testing.T) {
	_, err := Lookup("NoSuchOp", 11)
	if err == nil {
		t.Fatal("expected error for unregistered operator")
	}
	if !strings.Contains(err.Error(), "NoSuchOp") {
		t.Errorf("error should name the operator, got: %v", err)
	}
}

func TestLookupOpsetBelowEveryVersion(t *testing.T) {
	Register("LateOp", 7, func() Kernel { return &fakeKernel{since: 7} })
	if _, err := Lookup("LateOp", 6); err == nil {
		t.Fatal("expected error when opset predates every registration")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("DupOp", 2, func() Kernel { return &fakeKernel{} })
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("DupOp", 2, func() Kernel { return &fakeKernel{} })
}

func TestKernelContextInputBounds(t *testing.T) {
	ctx := NewKernelContext(tensor.NewContext(), nil)
	if ctx.Input(0) != nil {
		t.Error("Input(0) on empty context should be nil")
	}
	if ctx.Input(-1) != nil {
		t.Error("Input(-1) should be nil")
	}
}
