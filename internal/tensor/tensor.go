package tensor

import "fmt"

// Tensor is an N-dimensional array of T stored in a flat row-major buffer.
//
// Invariant: len(data) == shape.NumElements() and strides are derived from
// shape (strides[last] == 1). A tensor is owned by exactly one layer or by the
// training loop for the duration of one sample; tensors are never aliased.
//
// Example:
//
//	a, _ := tensor.With[float64](tensor.Shape{2, 2}, []float64{1, 2, 3, 4})
//	b, _ := tensor.With[float64](tensor.Shape{2, 2}, []float64{5, 6, 7, 8})
//	c, _ := a.Dot(b) // [[19 22] [43 50]]
type Tensor[T Float] struct {
	shape   Shape
	strides []int
	data    []T
}

// newTensor wraps data without copying. Callers guarantee the length.
func newTensor[T Float](shape Shape, data []T) *Tensor[T] {
	return &Tensor[T]{
		shape:   shape,
		strides: shape.ComputeStrides(),
		data:    data,
	}
}

// Empty returns the zero-rank, zero-length tensor.
func Empty[T Float]() *Tensor[T] {
	return &Tensor[T]{shape: Shape{}, strides: []int{}, data: []T{}}
}

// Shape returns the tensor's shape.
func (t *Tensor[T]) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's row-major strides.
func (t *Tensor[T]) Strides() []int {
	return t.strides
}

// Rank returns the number of axes.
func (t *Tensor[T]) Rank() int {
	return len(t.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor[T]) NumElements() int {
	return len(t.data)
}

// IsEmpty reports whether t is the zero-rank empty tensor.
func (t *Tensor[T]) IsEmpty() bool {
	return len(t.shape) == 0
}

// DType returns the runtime data type of T.
func (t *Tensor[T]) DType() DataType {
	return DTypeOf[T]()
}

// Data returns the flat buffer.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor[T]) Data() []T {
	return t.data
}

// offset resolves a multi-index to a flat position.
func (t *Tensor[T]) offset(indices []int) (int, error) {
	if len(indices) != len(t.shape) {
		return 0, fmt.Errorf("expected %d indices, got %d: %w", len(t.shape), len(indices), ErrOutOfRange)
	}
	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			return 0, fmt.Errorf("index %d out of bounds for dimension %d (size %d): %w", idx, i, t.shape[i], ErrOutOfRange)
		}
		off += idx * t.strides[i]
	}
	return off, nil
}

// Index returns the element at the given multi-index.
func (t *Tensor[T]) Index(indices ...int) (T, error) {
	off, err := t.offset(indices)
	if err != nil {
		return 0, err
	}
	return t.data[off], nil
}

// SetIndex stores value at the given multi-index.
func (t *Tensor[T]) SetIndex(value T, indices ...int) error {
	off, err := t.offset(indices)
	if err != nil {
		return err
	}
	t.data[off] = value
	return nil
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
//
// Example:
//
//	t := tensor.Zeros[float32](tensor.Shape{3, 4})
//	value := t.At(1, 2) // Row 1, column 2
func (t *Tensor[T]) At(indices ...int) T {
	v, err := t.Index(indices...)
	if err != nil {
		panic(err)
	}
	return v
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) Set(value T, indices ...int) {
	if err := t.SetIndex(value, indices...); err != nil {
		panic(err)
	}
}

// Clone creates a deep copy of the tensor.
func (t *Tensor[T]) Clone() *Tensor[T] {
	data := make([]T, len(t.data))
	copy(data, t.data)
	return newTensor(t.shape.Clone(), data)
}

// Reshape returns a copy of t viewed with a new shape of the same size.
func (t *Tensor[T]) Reshape(shape Shape) (*Tensor[T], error) {
	shape = NewShape(shape...)
	if shape.NumElements() != len(t.data) {
		return nil, &ShapeError{
			Op: "reshape", Left: t.shape, Right: shape, AxisL: -1, AxisR: -1,
			Details: fmt.Sprintf("cannot reshape %v (%d elements) to %v (%d elements)",
				t.shape, len(t.data), shape, shape.NumElements()),
		}
	}
	data := make([]T, len(t.data))
	copy(data, t.data)
	return newTensor(shape, data), nil
}

// Equal reports whether both tensors have the same shape and elements.
func (t *Tensor[T]) Equal(other *Tensor[T]) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		if t.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the tensor.
func (t *Tensor[T]) String() string {
	return fmt.Sprintf("Tensor[%s]%v", t.DType(), t.shape)
}
