// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for seqnet tensors.
//
// A Tensor[T] is an N-dimensional array of float32 or float64 stored in a
// flat row-major buffer. Rank-1 shapes are normalized to column vectors
// [n, 1].
//
// Example:
//
//	a := tensor.MustWith[float64](tensor.Shape{2, 2}, []float64{1, 2, 3, 4})
//	b := tensor.MustWith[float64](tensor.Shape{2, 2}, []float64{5, 6, 7, 8})
//	c, err := a.Dot(b) // [[19 22] [43 50]]
package tensor

import (
	"math/rand"

	"github.com/born-ml/seqnet/internal/tensor"
)

// Float is the constraint for tensor element types (float32, float64).
type Float = tensor.Float

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is an N-dimensional array of T.
type Tensor[T Float] = tensor.Tensor[T]

// ShapeError describes a shape disagreement; it wraps ErrShapeMismatch.
type ShapeError = tensor.ShapeError

// Errors returned by tensor operations.
var (
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrOutOfRange    = tensor.ErrOutOfRange
	ErrUnsupported   = tensor.ErrUnsupported
)

// NewShape builds a shape, normalizing a single extent n to [n, 1].
func NewShape(dims ...int) Shape {
	return tensor.NewShape(dims...)
}

// DTypeOf returns the DataType of T.
func DTypeOf[T Float]() DataType {
	return tensor.DTypeOf[T]()
}

// Zeros creates a tensor filled with zeros.
func Zeros[T Float](shape Shape) *Tensor[T] {
	return tensor.Zeros[T](shape)
}

// Ones creates a tensor filled with ones.
func Ones[T Float](shape Shape) *Tensor[T] {
	return tensor.Ones[T](shape)
}

// Full creates a tensor filled with value.
func Full[T Float](shape Shape, value T) *Tensor[T] {
	return tensor.Full(shape, value)
}

// Random creates a tensor of values drawn uniformly from [low, high).
func Random[T Float](shape Shape, low, high T, rng *rand.Rand) *Tensor[T] {
	return tensor.Random(shape, low, high, rng)
}

// With creates a tensor holding a copy of data. len(data) must equal the
// number of elements of shape.
func With[T Float](shape Shape, data []T) (*Tensor[T], error) {
	return tensor.With(shape, data)
}

// MustWith is like With but panics on error.
func MustWith[T Float](shape Shape, data []T) *Tensor[T] {
	return tensor.MustWith(shape, data)
}

// Eye creates an n×n identity matrix.
func Eye[T Float](n int) *Tensor[T] {
	return tensor.Eye[T](n)
}

// Empty returns the zero-rank, zero-length tensor.
func Empty[T Float]() *Tensor[T] {
	return tensor.Empty[T]()
}
