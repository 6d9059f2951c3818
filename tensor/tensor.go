// Package tensor contains the dense int64 arrays that sequence examples and
// batches are made of, along with reshaping and dynamic padding.
package tensor

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShapeMismatch is returned when the number of elements does not match
	// the product of a shape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidShape is returned for shapes with negative dimensions or more
	// than one inferred (-1) dimension.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrRankMismatch is returned by Stack when the inputs have different ranks.
	ErrRankMismatch = errors.New("rank mismatch")
)

// Tensor is a dense, row-major array of int64 values.
//
// The zero value is an empty rank-1 tensor.
type Tensor struct {
	Shape []int
	Data  []int64
}

// New creates a tensor with the given shape and data. It fails with
// ErrShapeMismatch if len(data) is not the product of shape.
func New(shape []int, data []int64) (*Tensor, error) {
	if err := checkDims(shape); err != nil {
		return nil, err
	}
	n, ok := product(shape)
	if !ok {
		return nil, fmt.Errorf("%w: %v has too many elements", ErrShapeMismatch, shape)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d elements cannot have shape %v (%d elements)",
			ErrShapeMismatch, len(data), shape, n)
	}
	return &Tensor{Shape: copyInts(shape), Data: data}, nil
}

// Vector returns a rank-1 tensor holding data.
func Vector(data []int64) *Tensor {
	return &Tensor{Shape: []int{len(data)}, Data: data}
}

// Scalar returns a rank-0 tensor holding v.
func Scalar(v int64) *Tensor {
	return &Tensor{Shape: []int{}, Data: []int64{v}}
}

// Zeros returns a tensor of the given shape filled with fill.
func Zeros(shape []int, fill int64) *Tensor {
	data := make([]int64, NumElements(shape))
	if fill != 0 {
		for i := range data {
			data[i] = fill
		}
	}
	return &Tensor{Shape: copyInts(shape), Data: data}
}

// NumElements returns the product of shape. The empty shape has one element.
// Shapes are expected to be valid; use New or Reshape for untrusted ones.
func NumElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// product is NumElements for untrusted shapes. It reports false when the
// product does not fit in an int.
func product(shape []int) (int, bool) {
	n := 1
	for _, d := range shape {
		if d != 0 && n > math.MaxInt/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// Rank returns the number of dimensions of t.
func (t *Tensor) Rank() int {
	return len(t.Shape)
}

// Len returns the number of elements in t.
func (t *Tensor) Len() int {
	return len(t.Data)
}

// Dim returns the size of dimension i.
func (t *Tensor) Dim(i int) int {
	return t.Shape[i]
}

// Reshape returns a tensor sharing t's data with a new shape. At most one
// dimension may be -1, in which case it is inferred from the element count.
func (t *Tensor) Reshape(shape []int) (*Tensor, error) {
	resolved, err := resolveShape(shape, len(t.Data))
	if err != nil {
		return nil, err
	}
	return &Tensor{Shape: resolved, Data: t.Data}, nil
}

// Flatten returns a rank-1 tensor sharing t's data.
func (t *Tensor) Flatten() *Tensor {
	return Vector(t.Data)
}

// At returns the element at the given index.
func (t *Tensor) At(index ...int) int64 {
	return t.Data[t.offset(index)]
}

// Row returns the sub-tensor at position i of the first dimension.
func (t *Tensor) Row(i int) *Tensor {
	if len(t.Shape) == 0 {
		panic("tensor: Row called on a scalar")
	}
	stride := NumElements(t.Shape[1:])
	return &Tensor{
		Shape: copyInts(t.Shape[1:]),
		Data:  t.Data[i*stride : (i+1)*stride],
	}
}

// Equal reports whether t and o have the same shape and elements.
func (t *Tensor) Equal(o *Tensor) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Shape) != len(o.Shape) || len(t.Data) != len(o.Data) {
		return false
	}
	for i := range t.Shape {
		if t.Shape[i] != o.Shape[i] {
			return false
		}
	}
	for i := range t.Data {
		if t.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v%v", t.Shape, t.Data)
}

func (t *Tensor) offset(index []int) int {
	if len(index) != len(t.Shape) {
		panic(fmt.Sprintf("tensor: index %v has wrong rank for shape %v", index, t.Shape))
	}
	off := 0
	for i, idx := range index {
		if idx < 0 || idx >= t.Shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", index, t.Shape))
		}
		off = off*t.Shape[i] + idx
	}
	return off
}

func resolveShape(shape []int, n int) ([]int, error) {
	resolved := copyInts(shape)
	infer := -1
	var dims []int
	for i, d := range resolved {
		switch {
		case d == -1:
			if infer >= 0 {
				return nil, fmt.Errorf("%w: %v has more than one -1 dimension", ErrInvalidShape, shape)
			}
			infer = i
		case d < 0:
			return nil, fmt.Errorf("%w: %v has a negative dimension", ErrInvalidShape, shape)
		default:
			dims = append(dims, d)
		}
	}

	size, ok := product(dims)
	if !ok {
		return nil, fmt.Errorf("%w: cannot reshape %d elements into %v", ErrShapeMismatch, n, shape)
	}

	if infer >= 0 {
		if size == 0 || n%size != 0 {
			return nil, fmt.Errorf("%w: cannot reshape %d elements into %v", ErrShapeMismatch, n, shape)
		}
		resolved[infer] = n / size
		return resolved, nil
	}

	if size != n {
		return nil, fmt.Errorf("%w: cannot reshape %d elements into %v (%d elements)",
			ErrShapeMismatch, n, shape, size)
	}
	return resolved, nil
}

func checkDims(shape []int) error {
	for _, d := range shape {
		if d < 0 {
			return fmt.Errorf("%w: %v has a negative dimension", ErrInvalidShape, shape)
		}
	}
	return nil
}

func copyInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
