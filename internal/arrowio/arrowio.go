// Package arrowio reads and writes tensors as Arrow IPC streams, the
// wire and storage format shared across the longbow family. A tensor is
// a single-column record batch; the shape and the quantization scalars
// travel in the schema metadata so the column stays a flat buffer.
package arrowio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/23skdu/longbow-bodkin/internal/tensor"
)

const (
	shapeKey     = "tensor_shape"
	scaleKey     = "scale"
	zeroPointKey = "zero_point"
)

func formatShape(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func parseShape(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	dims := make([]int, len(parts))
	for i, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("arrowio: bad shape %q: %w", s, err)
		}
		dims[i] = d
	}
	return dims, nil
}

// WriteFloat32 writes a float32 tensor as a one-column IPC stream.
func WriteFloat32(w io.Writer, t *tensor.Tensor) error {
	if t.DType() != tensor.Float32 {
		return fmt.Errorf("arrowio: WriteFloat32 on %s tensor %q", t.DType(), t.Name())
	}
	mem := memory.NewGoAllocator()
	md := arrow.NewMetadata([]string{shapeKey}, []string{formatShape(t.Dims())})
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "values", Type: arrow.PrimitiveTypes.Float32},
	}, &md)

	b := array.NewFloat32Builder(mem)
	defer b.Release()
	b.AppendValues(t.Float32s(), nil)
	arr := b.NewFloat32Array()
	defer arr.Release()

	rec := array.NewRecord(schema, []arrow.Array{arr}, int64(t.NumElements()))
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		wr.Close()
		return fmt.Errorf("arrowio: write record: %w", err)
	}
	return wr.Close()
}

// ReadFloat32 reads a float32 tensor from an IPC stream. When the stream
// carries no shape metadata the tensor is treated as 1-D.
func ReadFloat32(r io.Reader, name string) (*tensor.Tensor, error) {
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("arrowio: open stream: %w", err)
	}
	defer rdr.Release()

	var vals []float32
	for rdr.Next() {
		rec := rdr.Record()
		col, ok := rec.Column(0).(*array.Float32)
		if !ok {
			return nil, fmt.Errorf("arrowio: column 0 is %s, want float32", rec.Column(0).DataType())
		}
		vals = append(vals, col.Float32Values()...)
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("arrowio: read stream: %w", err)
	}

	dims := []int{len(vals)}
	md := rdr.Schema().Metadata()
	if idx := md.FindKey(shapeKey); idx >= 0 {
		parsed, err := parseShape(md.Values()[idx])
		if err != nil {
			return nil, err
		}
		dims = parsed
	}
	if tensor.NumElementsOf(dims) != len(vals) {
		return nil, fmt.Errorf("arrowio: shape %v does not match %d values", dims, len(vals))
	}
	return tensor.NewFloat32(name, dims, vals)
}

// WriteQuantized writes the three outputs of a dynamic quantization call:
// the uint8 tensor as the column, scale and zero-point in the metadata.
// The scale uses the shortest decimal form that parses back bit-exact.
func WriteQuantized(w io.Writer, y, yScale, yZeroPoint *tensor.Tensor) error {
	if y.DType() != tensor.Uint8 {
		return fmt.Errorf("arrowio: WriteQuantized on %s tensor %q", y.DType(), y.Name())
	}
	scale := yScale.Float32s()[0]
	zp := yZeroPoint.Uint8s()[0]

	mem := memory.NewGoAllocator()
	md := arrow.NewMetadata(
		[]string{shapeKey, scaleKey, zeroPointKey},
		[]string{
			formatShape(y.Dims()),
			strconv.FormatFloat(float64(scale), 'g', -1, 32),
			strconv.Itoa(int(zp)),
		},
	)
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "values", Type: arrow.PrimitiveTypes.Uint8},
	}, &md)

	b := array.NewUint8Builder(mem)
	defer b.Release()
	b.AppendValues(y.Uint8s(), nil)
	arr := b.NewUint8Array()
	defer arr.Release()

	rec := array.NewRecord(schema, []arrow.Array{arr}, int64(y.NumElements()))
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		wr.Close()
		return fmt.Errorf("arrowio: write record: %w", err)
	}
	return wr.Close()
}

// ReadQuantized reads back a stream produced by WriteQuantized.
func ReadQuantized(r io.Reader, name string) (y *tensor.Tensor, scale float32, zeroPoint uint8, err error) {
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("arrowio: open stream: %w", err)
	}
	defer rdr.Release()

	var vals []uint8
	for rdr.Next() {
		rec := rdr.Record()
		col, ok := rec.Column(0).(*array.Uint8)
		if !ok {
			return nil, 0, 0, fmt.Errorf("arrowio: column 0 is %s, want uint8", rec.Column(0).DataType())
		}
		vals = append(vals, col.Uint8Values()...)
	}
	if err := rdr.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("arrowio: read stream: %w", err)
	}

	md := rdr.Schema().Metadata()
	dims := []int{len(vals)}
	if idx := md.FindKey(shapeKey); idx >= 0 {
		dims, err = parseShape(md.Values()[idx])
		if err != nil {
			return nil, 0, 0, err
		}
	}
	if idx := md.FindKey(scaleKey); idx >= 0 {
		f, perr := strconv.ParseFloat(md.Values()[idx], 32)
		if perr != nil {
			return nil, 0, 0, fmt.Errorf("arrowio: bad scale metadata: %w", perr)
		}
		scale = float32(f)
	}
	if idx := md.FindKey(zeroPointKey); idx >= 0 {
		z, perr := strconv.Atoi(md.Values()[idx])
		if perr != nil || z < 0 || z > 255 {
			return nil, 0, 0, fmt.Errorf("arrowio: bad zero_point metadata %q", md.Values()[idx])
		}
		zeroPoint = uint8(z)
	}

	y, err = tensor.NewUint8(name, dims, vals)
	if err != nil {
		return nil, 0, 0, err
	}
	return y, scale, zeroPoint, nil
}
