package flightio

import (
	"context"
	"fmt"
	"sync"

	"github.com/23skdu/longbow-bodkin/internal/tensor"
)

// MockSource is an in-memory TensorSource for testing.
type MockSource struct {
	mu     sync.RWMutex
	closed bool
	data   map[string]*tensor.Tensor
}

// NewMockSource creates an empty mock source.
func NewMockSource() *MockSource {
	return &MockSource{data: make(map[string]*tensor.Tensor)}
}

// Put registers a tensor under a ticket.
func (m *MockSource) Put(ticket string, t *tensor.Tensor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[ticket] = t
}

// Fetch returns the tensor registered under ticket.
func (m *MockSource) Fetch(ctx context.Context, ticket string) (*tensor.Tensor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("flightio: client not connected")
	}
	t, ok := m.data[ticket]
	if !ok {
		return nil, fmt.Errorf("flightio: no tensor for ticket %q", ticket)
	}
	return t, nil
}

// Close marks the source as disconnected.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
