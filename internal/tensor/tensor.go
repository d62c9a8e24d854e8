package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/23skdu/longbow-bodkin/internal/metrics"
)

// DType identifies the element type of a tensor buffer.
type DType int

const (
	Float32 DType = iota
	Uint8
)

// Size returns the element size in bytes.
func (d DType) Size() int {
	switch d {
	case Float32:
		return 4
	case Uint8:
		return 1
	default:
		return 0
	}
}

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Uint8:
		return "uint8"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// Tensor is a dense contiguous buffer with a shape. A rank-0 tensor
// (nil/empty dims) is a scalar holding exactly one element.
type Tensor struct {
	name  string
	dims  []int
	dtype DType
	f32   []float32
	u8    []uint8
}

// NewFloat32 wraps caller-owned data as a float32 tensor. The element
// count must equal the product of dims.
func NewFloat32(name string, dims []int, data []float32) (*Tensor, error) {
	if n := NumElementsOf(dims); n != len(data) {
		return nil, fmt.Errorf("tensor %q: shape %v wants %d elements, have %d", name, dims, n, len(data))
	}
	return &Tensor{name: name, dims: dims, dtype: Float32, f32: data}, nil
}

// NewUint8 wraps caller-owned data as a uint8 tensor.
func NewUint8(name string, dims []int, data []uint8) (*Tensor, error) {
	if n := NumElementsOf(dims); n != len(data) {
		return nil, fmt.Errorf("tensor %q: shape %v wants %d elements, have %d", name, dims, n, len(data))
	}
	return &Tensor{name: name, dims: dims, dtype: Uint8, u8: data}, nil
}

// NumElementsOf is the product of dims; 1 for a rank-0 shape.
func NumElementsOf(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

func (t *Tensor) Name() string { return t.name }

func (t *Tensor) DType() DType { return t.dtype }

// Dims returns the shape. Callers must not mutate it.
func (t *Tensor) Dims() []int { return t.dims }

func (t *Tensor) NumElements() int { return NumElementsOf(t.dims) }

func (t *Tensor) SizeBytes() int { return t.NumElements() * t.dtype.Size() }

// Float32s returns the backing float32 slice. Panics on dtype mismatch;
// kernels validate dtypes before touching data.
func (t *Tensor) Float32s() []float32 {
	if t.dtype != Float32 {
		panic(fmt.Sprintf("tensor %q: Float32s on %s tensor", t.name, t.dtype))
	}
	return t.f32
}

// Uint8s returns the backing uint8 slice.
func (t *Tensor) Uint8s() []uint8 {
	if t.dtype != Uint8 {
		panic(fmt.Sprintf("tensor %q: Uint8s on %s tensor", t.name, t.dtype))
	}
	return t.u8
}

var allocatedBytes int64

func traceAlloc(delta int64) {
	newVal := atomic.AddInt64(&allocatedBytes, delta)
	metrics.RecordTensorMemory(newVal)
}

// AllocatedBytes reports the bytes currently attributed to live tensor
// buffers across all contexts.
func AllocatedBytes() int64 {
	return atomic.LoadInt64(&allocatedBytes)
}

type poolKey struct {
	dtype DType
	n     int
}

// Context allocates output tensors, recycling buffers through a free
// list keyed by dtype and element count.
type Context struct {
	mu   sync.Mutex
	pool map[poolKey][]*Tensor
}

func NewContext() *Context {
	return &Context{pool: make(map[poolKey][]*Tensor)}
}

// NewTensor returns a writable tensor of the given shape and dtype,
// reusing a pooled buffer when one fits. Pooled buffers are not zeroed;
// callers write every element.
func (c *Context) NewTensor(name string, dims []int, dtype DType) *Tensor {
	n := NumElementsOf(dims)
	key := poolKey{dtype: dtype, n: n}

	c.mu.Lock()
	if free := c.pool[key]; len(free) > 0 {
		t := free[len(free)-1]
		c.pool[key] = free[:len(free)-1]
		c.mu.Unlock()
		t.name = name
		t.dims = dims
		return t
	}
	c.mu.Unlock()

	t := &Tensor{name: name, dims: dims, dtype: dtype}
	switch dtype {
	case Float32:
		t.f32 = make([]float32, n)
	case Uint8:
		t.u8 = make([]uint8, n)
	}
	traceAlloc(int64(t.SizeBytes()))
	return t
}

// Put returns a tensor's buffer to the free list.
func (c *Context) Put(t *Tensor) {
	if t == nil {
		return
	}
	key := poolKey{dtype: t.dtype, n: t.NumElements()}
	c.mu.Lock()
	c.pool[key] = append(c.pool[key], t)
	c.mu.Unlock()
}

// Free drops all pooled buffers and their byte accounting.
func (c *Context) Free() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tensors := range c.pool {
		for _, t := range tensors {
			traceAlloc(-int64(t.SizeBytes()))
		}
	}
	c.pool = make(map[poolKey][]*Tensor)
}
