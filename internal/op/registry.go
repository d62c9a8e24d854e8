package op

import (
	"fmt"
	"sort"
	"sync"

	"github.com/23skdu/longbow-bodkin/internal/parallel"
	"github.com/23skdu/longbow-bodkin/internal/tensor"
)

// Kernel is one operator implementation. Compute either returns every
// output fully populated or an error with no outputs; partial results are
// never exposed.
type Kernel interface {
	Compute(ctx *KernelContext) ([]*tensor.Tensor, error)
}

// KernelContext carries a kernel's inputs and its collaborators: the
// output-buffer allocator and the parallel work dispatcher.
type KernelContext struct {
	alloc  *tensor.Context
	pool   *parallel.Pool
	inputs []*tensor.Tensor
}

func NewKernelContext(alloc *tensor.Context, pool *parallel.Pool, inputs ...*tensor.Tensor) *KernelContext {
	return &KernelContext{alloc: alloc, pool: pool, inputs: inputs}
}

// Input returns the i-th input tensor, or nil when absent.
func (c *KernelContext) Input(i int) *tensor.Tensor {
	if i < 0 || i >= len(c.inputs) {
		return nil
	}
	return c.inputs[i]
}

// Alloc is the output-buffer allocator.
func (c *KernelContext) Alloc() *tensor.Context { return c.alloc }

// Pool is the parallel work dispatcher.
func (c *KernelContext) Pool() *parallel.Pool { return c.pool }

var (
	regMu    sync.RWMutex
	registry = make(map[string]map[int]func() Kernel)
)

// Register adds a kernel constructor for an operator type, effective from
// sinceVersion onward. Registering the same (opType, sinceVersion) twice
// panics; registration happens in init functions where a duplicate is a
// programming error.
func Register(opType string, sinceVersion int, ctor func() Kernel) {
	regMu.Lock()
	defer regMu.Unlock()
	versions, ok := registry[opType]
	if !ok {
		versions = make(map[int]func() Kernel)
		registry[opType] = versions
	}
	if _, dup := versions[sinceVersion]; dup {
		panic(fmt.Sprintf("op: duplicate registration for %s since version %d", opType, sinceVersion))
	}
	versions[sinceVersion] = ctor
}

// Lookup resolves an operator type at a given opset version to the kernel
// registered with the highest since-version not exceeding it.
func Lookup(opType string, opset int) (Kernel, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	versions, ok := registry[opType]
	if !ok {
		return nil, fmt.Errorf("op: no kernel registered for %q", opType)
	}
	candidates := make([]int, 0, len(versions))
	for since := range versions {
		if since <= opset {
			candidates = append(candidates, since)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("op: %q has no kernel for opset %d", opType, opset)
	}
	sort.Ints(candidates)
	return versions[candidates[len(candidates)-1]](), nil
}
