// Package flightio fetches input tensors from a longbow-style Arrow
// Flight server, as an alternative to reading IPC streams from disk.
package flightio

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/23skdu/longbow-bodkin/internal/metrics"
	"github.com/23skdu/longbow-bodkin/internal/tensor"
)

// DefaultPort is the longbow data-plane Flight port.
const DefaultPort = 3000

// TensorSource retrieves float32 tensors by ticket.
type TensorSource interface {
	Fetch(ctx context.Context, ticket string) (*tensor.Tensor, error)
	Close() error
}

// Client is a TensorSource backed by an Arrow Flight connection.
type Client struct {
	client  flight.Client
	addr    string
	timeout time.Duration
}

// Dial connects to a Flight server over an insecure channel.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	fc, err := flight.NewClientWithMiddleware(addr, nil, nil, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("flightio: connect %s: %w", addr, err)
	}
	return &Client{client: fc, addr: addr, timeout: timeout}, nil
}

// Fetch retrieves the float32 tensor identified by ticket. Multi-batch
// streams are concatenated in arrival order; the resulting tensor is
// 1-D with one element per row.
func (c *Client) Fetch(ctx context.Context, ticket string) (t *tensor.Tensor, err error) {
	if c.client == nil {
		return nil, fmt.Errorf("flightio: client not connected")
	}
	start := time.Now()
	defer func() { metrics.RecordFlightFetch(time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream, err := c.client.DoGet(ctx, &flight.Ticket{Ticket: []byte(ticket)})
	if err != nil {
		return nil, fmt.Errorf("flightio: DoGet %q: %w", ticket, err)
	}
	rdr, err := flight.NewRecordReader(stream)
	if err != nil {
		return nil, fmt.Errorf("flightio: open record stream: %w", err)
	}
	defer rdr.Release()

	var vals []float32
	for rdr.Next() {
		rec := rdr.Record()
		col, ok := rec.Column(0).(*array.Float32)
		if !ok {
			return nil, fmt.Errorf("flightio: ticket %q column 0 is %s, want float32",
				ticket, rec.Column(0).DataType())
		}
		vals = append(vals, col.Float32Values()...)
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("flightio: read stream: %w", err)
	}

	return tensor.NewFloat32(ticket, []int{len(vals)}, vals)
}

// Close disconnects from the Flight server.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
