package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NewShape copies dims into a Shape, normalizing a rank-1 shape [n] to [n, 1].
//
// Every constructor goes through NewShape, so tensors are always rank >= 2
// (or rank 0 for the empty tensor).
func NewShape(dims ...int) Shape {
	if len(dims) == 1 {
		return Shape{dims[0], 1}
	}
	s := make(Shape, len(dims))
	copy(s, dims)
	return s
}

// NumElements returns the total number of elements in the tensor.
// A zero-rank shape describes the empty tensor and has no elements.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape. A nil shape stays nil.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Last returns the extent of the final axis, or 0 for the empty shape.
func (s Shape) Last() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Rows returns the product of every axis but the last one.
//
// It is the row count of the shape viewed as a matrix [Rows, Last].
func (s Shape) Rows() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, dim := range s[:len(s)-1] {
		n *= dim
	}
	return n
}

// WithLast returns a copy of s whose final axis is replaced by n.
func (s Shape) WithLast(n int) Shape {
	out := s.Clone()
	if len(out) > 0 {
		out[len(out)-1] = n
	}
	return out
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape as [d0 d1 ...].
func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}
